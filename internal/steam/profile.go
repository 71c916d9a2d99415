package steam

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/leighmacdonald/steamid/v4/steamid"

	"github.com/banssharp/banssharp/internal/httphelper"
)

// PlayerSummary is the subset of the GetPlayerSummaries response we use.
type PlayerSummary struct {
	SteamID      string `json:"steamid"`
	PersonaName  string `json:"personaname"`
	ProfileURL   string `json:"profileurl"`
	Avatar       string `json:"avatar"`
	AvatarMedium string `json:"avatarmedium"`
	AvatarFull   string `json:"avatarfull"`
	PersonaState int    `json:"personastate"`
	RealName     string `json:"realname"`
	CountryCode  string `json:"loccountrycode"`
}

// DisplayName falls back to the SteamID when the profile carries no persona name.
func (p *PlayerSummary) DisplayName(sid steamid.SteamID) string {
	if p == nil || p.PersonaName == "" {
		return sid.String()
	}

	return p.PersonaName
}

func (p *PlayerSummary) AvatarURL() string {
	if p == nil {
		return ""
	}

	if p.AvatarFull != "" {
		return p.AvatarFull
	}

	return p.Avatar
}

// Profiles fetches player summaries from the Steam web api. A missing key or a
// failed request is reported as an error but callers treat it as non-fatal and
// proceed with an unknown profile.
type Profiles struct {
	apiKey string
	apiURL string
	client *http.Client
}

func NewProfiles(conf Config) Profiles {
	return Profiles{apiKey: conf.APIKey, apiURL: conf.apiURL(), client: conf.client()}
}

type playerSummariesResponse struct {
	Response struct {
		Players []PlayerSummary `json:"players"`
	} `json:"response"`
}

func (p Profiles) Summary(ctx context.Context, sid steamid.SteamID) (*PlayerSummary, error) {
	if p.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	reqURL, errURL := url.Parse(p.apiURL + "/ISteamUser/GetPlayerSummaries/v0002/")
	if errURL != nil {
		return nil, errors.Join(errURL, httphelper.ErrRequestCreate)
	}

	values := reqURL.Query()
	values.Set("key", p.apiKey)
	values.Set("steamids", sid.String())
	reqURL.RawQuery = values.Encode()

	req, errReq := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if errReq != nil {
		return nil, errors.Join(errReq, httphelper.ErrRequestCreate)
	}

	resp, errResp := p.client.Do(req)
	if errResp != nil {
		return nil, errors.Join(errResp, httphelper.ErrRequestPerform)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, httphelper.ErrRequestInvalidCode
	}

	var parsed playerSummariesResponse
	if errDecode := json.NewDecoder(resp.Body).Decode(&parsed); errDecode != nil {
		return nil, errors.Join(errDecode, httphelper.ErrRequestDecode)
	}

	if len(parsed.Response.Players) == 0 {
		return nil, httphelper.ErrNotFound
	}

	return &parsed.Response.Players[0], nil
}
