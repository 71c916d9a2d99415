package steam

import (
	"context"
	"errors"
	"net/http"

	"github.com/leighmacdonald/steamid/v4/steamid"

	"github.com/banssharp/banssharp/internal/user"
)

var (
	ErrMissingIdentity   = errors.New("missing openid identity claim")
	ErrVerifyRequest     = errors.New("could not perform verification request")
	ErrAssertionRejected = errors.New("provider rejected assertion")
	ErrInvalidSteamID    = errors.New("identity does not contain a valid steam id")
	ErrMissingAPIKey     = errors.New("steam api key is not set")
	ErrUserCreation      = errors.New("failed to create user")
	ErrNoSessionNoSignup = errors.New("no session and signup disabled")
	ErrStateMismatch     = errors.New("link state cookie mismatch")
)

const (
	defaultLoginURL = "https://steamcommunity.com/openid/login"
	defaultAPIURL   = "https://api.steampowered.com"
)

// Config holds everything the steam auth flows need injected. LoginURL and
// APIURL exist so tests can point both at a local httptest server.
type Config struct {
	// APIKey is the Steam web api key, get one from https://steamcommunity.com/dev/apikey
	APIKey string
	// LoginURL is the OpenID provider endpoint.
	LoginURL string
	// APIURL is the Steam web api base url.
	APIURL string
	// RedirectURL is the absolute callback url registered with the provider realm.
	RedirectURL string
	// Prefix is the route prefix the auth endpoints mount under.
	Prefix string
	// SignupEnabled permits creating a fresh local account from a verified assertion.
	SignupEnabled bool
	// GetTempEmail generates the placeholder email for signup-on-verification.
	GetTempEmail func(steamID string) string
	// GetTempName generates the placeholder name for signup-on-verification.
	GetTempName func(steamID string) string
	// OnVerification runs after a successful resolution, before session issuance.
	OnVerification func(ctx context.Context, steamID steamid.SteamID, account user.User) error

	Client *http.Client
}

func (c Config) loginURL() string {
	if c.LoginURL != "" {
		return c.LoginURL
	}

	return defaultLoginURL
}

func (c Config) apiURL() string {
	if c.APIURL != "" {
		return c.APIURL
	}

	return defaultAPIURL
}

func (c Config) prefix() string {
	if c.Prefix != "" {
		return c.Prefix
	}

	return "/auth"
}

func (c Config) tempEmail(steamID string) string {
	if c.GetTempEmail != nil {
		return c.GetTempEmail(steamID)
	}

	return steamID
}

func (c Config) tempName(steamID string) string {
	if c.GetTempName != nil {
		return c.GetTempName(steamID)
	}

	return steamID
}

func (c Config) client() *http.Client {
	if c.Client != nil {
		return c.Client
	}

	return http.DefaultClient
}
