package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v5"

	"github.com/banssharp/banssharp/internal/httphelper"
	"github.com/banssharp/banssharp/internal/role"
	"github.com/banssharp/banssharp/internal/session"
	"github.com/banssharp/banssharp/internal/user"
	"github.com/banssharp/banssharp/pkg/log"
)

const (
	// SessionCookieName carries the session row id.
	SessionCookieName = "session_id"
	// CacheCookieName carries a short lived signed snapshot of the profile so
	// most requests skip the session store entirely.
	CacheCookieName = "session_data"

	// CacheDuration bounds how stale the cached profile may get.
	CacheDuration = time.Minute * 5
)

var (
	ErrCookieKeyMissing = errors.New("cookie signing key is not set")
	ErrSignToken        = errors.New("failed to sign cache token")
	ErrAuthentication   = errors.New("authentication required")
)

// CacheClaims is the JWT payload of the session_data cookie.
type CacheClaims struct {
	SessionID string `json:"session_id"`
	UserID    string `json:"user_id"`
	Role      string `json:"role"`
	Name      string `json:"name"`
	Avatar    string `json:"avatar,omitempty"`
	jwt.RegisteredClaims
}

type Auth struct {
	cookieKey     string
	siteName      string
	secureCookies bool
	sessions      session.Sessions
	users         user.Store
}

func NewAuth(cookieKey string, siteName string, secureCookies bool, sessions session.Sessions, users user.Store) *Auth {
	return &Auth{
		cookieKey:     cookieKey,
		siteName:      siteName,
		secureCookies: secureCookies,
		sessions:      sessions,
		users:         users,
	}
}

// Middleware resolves the caller from the cookie cache or the session store and
// enforces the minimum privilege level. Guest level routes pass through without
// a session.
func (a *Auth) Middleware(level role.Privilege) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		profile, loggedIn := a.resolveProfile(ctx)

		if !loggedIn {
			if level <= role.Guest {
				session.SetCurrentUser(ctx, user.User{Role: role.Guest.String(), Name: "Guest"})
				ctx.Next()

				return
			}

			httphelper.SetError(ctx, httphelper.NewAPIError(http.StatusUnauthorized, ErrAuthentication))
			ctx.Abort()

			return
		}

		if !profile.HasPermission(level) {
			httphelper.SetError(ctx, httphelper.NewAPIError(http.StatusForbidden, role.ErrDenied))
			ctx.Abort()

			return
		}

		session.SetCurrentUser(ctx, profile)

		if hub := sentrygin.GetHubFromContext(ctx); hub != nil {
			hub.WithScope(func(scope *sentry.Scope) {
				scope.SetUser(sentry.User{
					ID:        profile.ID.String(),
					IPAddress: ctx.ClientIP(),
					Username:  profile.Name,
				})
			})
		}

		ctx.Next()
	}
}

func (a *Auth) resolveProfile(ctx *gin.Context) (user.User, bool) {
	if cached, okCache := a.profileFromCache(ctx); okCache {
		return cached, true
	}

	cookieValue, errCookie := ctx.Cookie(SessionCookieName)
	if errCookie != nil || cookieValue == "" {
		return user.User{}, false
	}

	sessionID, errParse := uuid.FromString(cookieValue)
	if errParse != nil {
		return user.User{}, false
	}

	sess, errSession := a.sessions.Get(ctx, sessionID)
	if errSession != nil {
		return user.User{}, false
	}

	profile, errUser := a.users.GetByID(ctx, sess.UserID)
	if errUser != nil {
		slog.Error("Failed to load user for live session", log.ErrAttr(errUser),
			slog.String("session_id", sess.ID.String()))

		return user.User{}, false
	}

	a.SetCookies(ctx, sess, profile)

	return profile, true
}

func (a *Auth) profileFromCache(ctx *gin.Context) (user.User, bool) {
	tokenValue, errCookie := ctx.Cookie(CacheCookieName)
	if errCookie != nil || tokenValue == "" {
		return user.User{}, false
	}

	claims := &CacheClaims{}

	token, errParse := jwt.ParseWithClaims(tokenValue, claims, func(_ *jwt.Token) (any, error) {
		return []byte(a.cookieKey), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if errParse != nil || !token.Valid {
		return user.User{}, false
	}

	userID, errUserID := uuid.FromString(claims.UserID)
	if errUserID != nil {
		return user.User{}, false
	}

	profile := user.User{
		ID:   userID,
		Name: claims.Name,
		Role: claims.Role,
	}

	if claims.Avatar != "" {
		avatar := claims.Avatar
		profile.Image = &avatar
	}

	return profile, true
}

func (a *Auth) makeCacheToken(sess session.Session, profile user.User) (string, error) {
	if a.cookieKey == "" {
		return "", ErrCookieKeyMissing
	}

	now := time.Now()

	claims := CacheClaims{
		SessionID: sess.ID.String(),
		UserID:    profile.ID.String(),
		Role:      profile.Role,
		Name:      profile.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    a.siteName,
			Subject:   profile.ID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(CacheDuration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	if profile.Image != nil {
		claims.Avatar = *profile.Image
	}

	signed, errSign := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(a.cookieKey))
	if errSign != nil {
		return "", errors.Join(errSign, ErrSignToken)
	}

	return signed, nil
}

// SetCookies writes both the session id cookie and the short lived cache cookie.
func (a *Auth) SetCookies(ctx *gin.Context, sess session.Session, profile user.User) {
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(SessionCookieName, sess.ID.String(), int(session.Lifetime.Seconds()), "/", "", a.secureCookies, true)

	cacheToken, errToken := a.makeCacheToken(sess, profile)
	if errToken != nil {
		slog.Error("Failed to sign session cache cookie", log.ErrAttr(errToken))

		return
	}

	ctx.SetCookie(CacheCookieName, cacheToken, int(CacheDuration.Seconds()), "/", "", a.secureCookies, true)
}

func (a *Auth) ClearCookies(ctx *gin.Context) {
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(SessionCookieName, "", -1, "/", "", a.secureCookies, true)
	ctx.SetCookie(CacheCookieName, "", -1, "/", "", a.secureCookies, true)
}
