package steam

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid/v5"

	"github.com/banssharp/banssharp/internal/auth"
	"github.com/banssharp/banssharp/internal/httphelper"
	"github.com/banssharp/banssharp/internal/metrics"
	"github.com/banssharp/banssharp/internal/role"
	"github.com/banssharp/banssharp/internal/session"
	"github.com/banssharp/banssharp/internal/user"
	"github.com/banssharp/banssharp/pkg/log"
	"github.com/banssharp/banssharp/pkg/stringutil"
)

// StateCookieName is the single use CSRF state set by the link flow only. The
// callback clears it unconditionally before acting on it.
const StateCookieName = "steam_auth_state"

const stateCookieMaxAge = 60 * 10

type steamHandler struct {
	conf     Config
	verifier Verifier
	profiles Profiles
	resolver Resolver
	sessions session.Sessions
	users    user.Store
	cookies  *auth.Auth
	metrics  *metrics.Metrics
}

func NewSteamHandler(engine *gin.Engine, conf Config, verifier Verifier, profiles Profiles, resolver Resolver,
	sessions session.Sessions, users user.Store, cookies *auth.Auth, counters *metrics.Metrics,
) {
	handler := steamHandler{
		conf:     conf,
		verifier: verifier,
		profiles: profiles,
		resolver: resolver,
		sessions: sessions,
		users:    users,
		cookies:  cookies,
		metrics:  counters,
	}

	prefix := conf.prefix()

	engine.GET(prefix+"/sign-in/steam", handler.onSignIn())

	callbackGrp := engine.Group("/")
	{
		// Guest level so a live session is visible to the link branch without
		// requiring one for plain sign-in.
		callback := callbackGrp.Use(cookies.Middleware(role.Guest))
		callback.GET(prefix+"/steam/callback", handler.onCallback())
	}

	authedGrp := engine.Group("/")
	{
		authed := authedGrp.Use(cookies.Middleware(role.User))
		authed.GET(prefix+"/steam/link", handler.onLink())
		authed.POST(prefix+"/steam/unlink", handler.onUnlink())
	}

	adminGrp := engine.Group("/")
	{
		admin := adminGrp.Use(cookies.Middleware(role.Admin))
		admin.GET("/api/steam/players/:steam_id", handler.onAPIPlayerSummary())
	}
}

// providerURL builds the checkid_setup redirect target.
func (h steamHandler) providerURL(state string) (string, error) {
	loginURL, errLogin := url.Parse(h.conf.loginURL())
	if errLogin != nil {
		return "", errors.Join(errLogin, httphelper.ErrRequestCreate)
	}

	returnTo, errReturn := url.Parse(h.conf.RedirectURL)
	if errReturn != nil {
		return "", errors.Join(errReturn, httphelper.ErrRequestCreate)
	}

	if state != "" {
		returnQuery := returnTo.Query()
		returnQuery.Set("state", state)
		returnTo.RawQuery = returnQuery.Encode()
	}

	values := url.Values{}
	values.Set("openid.ns", "http://specs.openid.net/auth/2.0")
	values.Set("openid.mode", "checkid_setup")
	values.Set("openid.return_to", returnTo.String())
	values.Set("openid.realm", returnTo.Scheme+"://"+returnTo.Host)
	values.Set("openid.identity", "http://specs.openid.net/auth/2.0/identifier_select")
	values.Set("openid.claimed_id", "http://specs.openid.net/auth/2.0/identifier_select")
	loginURL.RawQuery = values.Encode()

	return loginURL.String(), nil
}

func (h steamHandler) onSignIn() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		target, errTarget := h.providerURL("")
		if errTarget != nil {
			httphelper.SetError(ctx, httphelper.NewAPIError(http.StatusInternalServerError, errTarget))

			return
		}

		ctx.Redirect(http.StatusFound, target)
	}
}

func (h steamHandler) onLink() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		state := stringutil.SecureRandomString(16)

		ctx.SetSameSite(http.SameSiteLaxMode)
		ctx.SetCookie(StateCookieName, state, stateCookieMaxAge, "/", "", false, true)

		target, errTarget := h.providerURL(state)
		if errTarget != nil {
			httphelper.SetError(ctx, httphelper.NewAPIError(http.StatusInternalServerError, errTarget))

			return
		}

		ctx.Redirect(http.StatusFound, target)
	}
}

type outcomeKind int

const (
	outcomeOK outcomeKind = iota
	outcomeBadRequest
	outcomeForbidden
	outcomeInternal
)

// callbackOutcome is the tagged result of the callback pipeline. Only the
// boundary translation in onCallback turns it into an HTTP response.
type callbackOutcome struct {
	kind    outcomeKind
	reason  string
	err     error
	linked  bool
	account user.User
	session session.Session
}

func (h steamHandler) runCallback(ctx *gin.Context) (out callbackOutcome) {
	defer func() {
		if recovered := recover(); recovered != nil {
			out = callbackOutcome{kind: outcomeForbidden, reason: "panic", err: fmt.Errorf("recovered: %v", recovered)} //nolint:err113
		}
	}()

	// Consume the one-time link state before anything else.
	if state, errState := ctx.Cookie(StateCookieName); errState == nil && state != "" {
		ctx.SetSameSite(http.SameSiteLaxMode)
		ctx.SetCookie(StateCookieName, "", -1, "/", "", false, true)

		if ctx.Query("state") != state {
			return callbackOutcome{kind: outcomeBadRequest, reason: "state_mismatch", err: ErrStateMismatch}
		}
	}

	sid, errVerify := h.verifier.Verify(ctx, ctx.Request.URL.Query())
	if errVerify != nil {
		reason := "assertion_rejected"
		if errors.Is(errVerify, ErrMissingIdentity) {
			reason = "missing_identity"
		}

		return callbackOutcome{kind: outcomeBadRequest, reason: reason, err: errVerify}
	}

	summary, errSummary := h.profiles.Summary(ctx, sid)
	if errSummary != nil {
		// Non fatal, the flow proceeds with an unknown name and avatar.
		slog.Warn("Failed to fetch player summary", log.ErrAttr(errSummary), slog.String("steam_id", sid.String()))
	}

	var current *user.User

	if profile, errProfile := session.CurrentUser(ctx); errProfile == nil && profile.ID != uuid.Nil {
		current = &profile
	}

	account, errResolve := h.resolver.Resolve(ctx, sid, summary, current)
	if errResolve != nil {
		if errors.Is(errResolve, ErrNoSessionNoSignup) {
			return callbackOutcome{kind: outcomeBadRequest, reason: "no_session_no_signup", err: errResolve}
		}

		return callbackOutcome{kind: outcomeInternal, reason: "store_failure", err: errResolve}
	}

	if h.conf.OnVerification != nil {
		if errHook := h.conf.OnVerification(ctx, sid, account); errHook != nil {
			return callbackOutcome{kind: outcomeForbidden, reason: "verification_hook", err: errHook}
		}
	}

	sess, errIssue := h.sessions.Issue(ctx, account.ID)
	if errIssue != nil {
		return callbackOutcome{kind: outcomeInternal, reason: "session_failure", err: errIssue}
	}

	return callbackOutcome{
		kind:    outcomeOK,
		linked:  current != nil && current.ID == account.ID,
		account: account,
		session: sess,
	}
}

func (h steamHandler) onCallback() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		out := h.runCallback(ctx)

		switch out.kind {
		case outcomeOK:
			h.cookies.SetCookies(ctx, out.session, out.account)
			h.metrics.LoginSuccess()

			if out.linked {
				h.metrics.AccountLink()
			}

			slog.Info("User signed in",
				slog.String("user_id", out.account.ID.String()),
				slog.String("name", out.account.Name),
				slog.Bool("linked", out.linked))

			ctx.Redirect(http.StatusFound, "/")
		case outcomeBadRequest:
			h.metrics.LoginFailure(out.reason)
			slog.Error("Steam callback rejected", log.ErrAttr(out.err), slog.String("reason", out.reason))
			ctx.Redirect(http.StatusFound, "/400")
		case outcomeInternal:
			h.metrics.LoginFailure(out.reason)
			slog.Error("Steam callback store failure", log.ErrAttr(out.err), slog.String("reason", out.reason))
			ctx.Redirect(http.StatusFound, "/500")
		case outcomeForbidden:
			fallthrough
		default:
			h.metrics.LoginFailure(out.reason)
			slog.Error("Steam callback unexpected failure", log.ErrAttr(out.err), slog.String("reason", out.reason))
			ctx.Redirect(http.StatusFound, "/403")
		}
	}
}

type unlinkResponse struct {
	Status bool      `json:"status"`
	User   user.User `json:"user"`
}

func (h steamHandler) onUnlink() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		profile, errProfile := session.CurrentUser(ctx)
		if errProfile != nil {
			httphelper.SetError(ctx, httphelper.NewAPIError(http.StatusUnauthorized, auth.ErrAuthentication))

			return
		}

		patch := user.Patch{
			SteamID:       user.FieldNull[string](),
			SteamVerified: user.FieldValue(false),
		}

		updated, errUpdate := h.users.SavePatch(ctx, profile.ID, patch)
		if errUpdate != nil {
			httphelper.SetError(ctx, httphelper.NewAPIError(http.StatusInternalServerError, errors.Join(errUpdate, httphelper.ErrInternal)))

			return
		}

		h.metrics.AccountUnlink()

		ctx.JSON(http.StatusOK, unlinkResponse{Status: true, User: updated.Redacted()})
	}
}

func (h steamHandler) onAPIPlayerSummary() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		sid, found := httphelper.GetSID64Param(ctx, "steam_id")
		if !found {
			return
		}

		summary, errSummary := h.profiles.Summary(ctx, sid)
		if errSummary != nil {
			if errors.Is(errSummary, httphelper.ErrNotFound) {
				httphelper.SetError(ctx, httphelper.NewAPIError(http.StatusNotFound, httphelper.ErrNotFound))

				return
			}

			httphelper.SetError(ctx, httphelper.NewAPIError(http.StatusInternalServerError, errors.Join(errSummary, httphelper.ErrInternal)))

			return
		}

		ctx.JSON(http.StatusOK, summary)
	}
}
