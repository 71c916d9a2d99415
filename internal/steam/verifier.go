package steam

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/leighmacdonald/steamid/v4/steamid"

	"github.com/banssharp/banssharp/internal/httphelper"
)

// Verifier performs stateless OpenID 2.0 verification by echoing the providers
// assertion back with mode check_authentication. The provider only confirms
// assertions it actually signed, so no association or nonce state is kept here.
type Verifier struct {
	loginURL string
	client   *http.Client
}

func NewVerifier(conf Config) Verifier {
	return Verifier{loginURL: conf.loginURL(), client: conf.client()}
}

// Verify confirms the assertion with the provider and extracts the SteamID64
// from the identity claim. No retries, a single round trip either confirms or
// rejects.
func (v Verifier) Verify(ctx context.Context, query url.Values) (steamid.SteamID, error) {
	identity := query.Get("openid.claimed_id")
	if identity == "" {
		identity = query.Get("openid.identity")
	}

	if identity == "" {
		return steamid.SteamID{}, ErrMissingIdentity
	}

	form := url.Values{}

	for key, values := range query {
		if strings.HasPrefix(key, "openid.") {
			form[key] = values
		}
	}

	form.Set("openid.mode", "check_authentication")

	req, errReq := http.NewRequestWithContext(ctx, http.MethodPost, v.loginURL, strings.NewReader(form.Encode()))
	if errReq != nil {
		return steamid.SteamID{}, errors.Join(errReq, httphelper.ErrRequestCreate)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, errResp := v.client.Do(req)
	if errResp != nil {
		return steamid.SteamID{}, errors.Join(errResp, ErrVerifyRequest)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	body, errBody := io.ReadAll(resp.Body)
	if errBody != nil {
		return steamid.SteamID{}, errors.Join(errBody, ErrVerifyRequest)
	}

	if !strings.Contains(string(body), "is_valid:true") {
		return steamid.SteamID{}, ErrAssertionRejected
	}

	// Identity format: https://steamcommunity.com/openid/id/76561198XXXXXXXXX
	idStr := identity
	if idx := strings.LastIndex(identity, "/"); idx >= 0 {
		idStr = identity[idx+1:]
	}

	sid := steamid.New(idStr)
	if !sid.Valid() {
		return steamid.SteamID{}, ErrInvalidSteamID
	}

	return sid, nil
}
