package auth_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/require"

	"github.com/banssharp/banssharp/internal/auth"
	"github.com/banssharp/banssharp/internal/httphelper"
	"github.com/banssharp/banssharp/internal/role"
	"github.com/banssharp/banssharp/internal/session"
	"github.com/banssharp/banssharp/internal/user"
	"github.com/banssharp/banssharp/pkg/log"
	"github.com/banssharp/banssharp/pkg/stringutil"
)

type cookieHarness struct {
	router   *gin.Engine
	users    user.Store
	sessions session.Sessions
	cookies  *auth.Auth
}

func newCookieHarness(t *testing.T, sessionStore session.Store) *cookieHarness {
	return newKeyedHarness(t, stringutil.SecureRandomString(32), user.NewMemoryRepository(), sessionStore)
}

func newKeyedHarness(t *testing.T, cookieKey string, users user.Store, sessionStore session.Store) *cookieHarness {
	t.Helper()

	router, errRouter := httphelper.CreateRouter(httphelper.RouterOpts{Mode: gin.TestMode, LogLevel: log.Error})
	require.NoError(t, errRouter)

	if sessionStore == nil {
		sessionStore = session.NewMemoryRepository()
	}

	sessions := session.NewSessions(sessionStore)
	cookies := auth.NewAuth(cookieKey, "BansSharp", false, sessions, users)

	whoami := func(ctx *gin.Context) {
		profile, errProfile := session.CurrentUser(ctx)
		require.NoError(t, errProfile)
		ctx.JSON(http.StatusOK, profile.Redacted())
	}

	userGrp := router.Group("/")
	userGrp.Use(cookies.Middleware(role.User)).GET("/whoami", whoami)

	guestGrp := router.Group("/")
	guestGrp.Use(cookies.Middleware(role.Guest)).GET("/public", whoami)

	adminGrp := router.Group("/")
	adminGrp.Use(cookies.Middleware(role.Admin)).GET("/restricted", whoami)

	return &cookieHarness{router: router, users: users, sessions: sessions, cookies: cookies}
}

func (h *cookieHarness) signIn(t *testing.T) (user.User, session.Session) {
	t.Helper()

	account := user.New(stringutil.SecureRandomString(10)+"@example.com", "someone")
	require.NoError(t, h.users.Create(context.Background(), &account))

	sess, errIssue := h.sessions.Issue(context.Background(), account.ID)
	require.NoError(t, errIssue)

	return account, sess
}

func (h *cookieHarness) get(t *testing.T, path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	request, errRequest := http.NewRequestWithContext(context.Background(), http.MethodGet, path, nil)
	require.NoError(t, errRequest)

	for _, cookie := range cookies {
		request.AddCookie(cookie)
	}

	recorder := httptest.NewRecorder()
	h.router.ServeHTTP(recorder, request)

	return recorder
}

func responseCookie(recorder *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, cookie := range recorder.Result().Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}

	return nil
}

func TestMiddlewareNoSession(t *testing.T) {
	harness := newCookieHarness(t, nil)

	require.Equal(t, http.StatusUnauthorized, harness.get(t, "/whoami").Code)
}

func TestMiddlewareGuestPassthrough(t *testing.T) {
	harness := newCookieHarness(t, nil)

	recorder := harness.get(t, "/public")
	require.Equal(t, http.StatusOK, recorder.Code)

	var profile user.User
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &profile))
	require.Equal(t, role.Guest.String(), profile.Role)
}

func TestMiddlewareSessionCookie(t *testing.T) {
	harness := newCookieHarness(t, nil)
	account, sess := harness.signIn(t)

	recorder := harness.get(t, "/whoami", &http.Cookie{Name: auth.SessionCookieName, Value: sess.ID.String()})
	require.Equal(t, http.StatusOK, recorder.Code)

	var profile user.User
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &profile))
	require.Equal(t, account.ID, profile.ID)
	require.Empty(t, profile.Email)

	// A cache cookie is refreshed on the store backed path.
	require.NotNil(t, responseCookie(recorder, auth.CacheCookieName))
}

// unavailableSessionStore simulates the session backend being down.
type unavailableSessionStore struct {
	session.Store
}

func (f unavailableSessionStore) GetByID(_ context.Context, _ uuid.UUID) (session.Session, error) {
	return session.Session{}, errors.New("store down") //nolint:err113
}

func TestMiddlewareCacheCookieSkipsStore(t *testing.T) {
	cookieKey := stringutil.SecureRandomString(32)
	users := user.NewMemoryRepository()
	sessionStore := session.NewMemoryRepository()

	harness := newKeyedHarness(t, cookieKey, users, sessionStore)
	_, sess := harness.signIn(t)

	first := harness.get(t, "/whoami", &http.Cookie{Name: auth.SessionCookieName, Value: sess.ID.String()})
	require.Equal(t, http.StatusOK, first.Code)

	cache := responseCookie(first, auth.CacheCookieName)
	require.NotNil(t, cache)

	// Same key, dead store. The signed cache cookie alone must be enough.
	downstream := newKeyedHarness(t, cookieKey, users, unavailableSessionStore{Store: sessionStore})

	second := downstream.get(t, "/whoami", &http.Cookie{Name: auth.CacheCookieName, Value: cache.Value})
	require.Equal(t, http.StatusOK, second.Code)
}

func TestMiddlewareTamperedCacheCookie(t *testing.T) {
	harness := newCookieHarness(t, nil)

	recorder := harness.get(t, "/whoami", &http.Cookie{Name: auth.CacheCookieName, Value: "not.a.jwt"})
	require.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestMiddlewareInsufficientRole(t *testing.T) {
	harness := newCookieHarness(t, nil)
	_, sess := harness.signIn(t)

	recorder := harness.get(t, "/restricted", &http.Cookie{Name: auth.SessionCookieName, Value: sess.ID.String()})
	require.Equal(t, http.StatusForbidden, recorder.Code)
}

func TestMiddlewareExpiredSession(t *testing.T) {
	store := session.NewMemoryRepository()
	harness := newCookieHarness(t, store)
	account, _ := harness.signIn(t)

	expired := session.Session{
		ID:     uuid.Must(uuid.NewV4()),
		UserID: account.ID,
	}
	require.NoError(t, store.Save(context.Background(), &expired))

	recorder := harness.get(t, "/whoami", &http.Cookie{Name: auth.SessionCookieName, Value: expired.ID.String()})
	require.Equal(t, http.StatusUnauthorized, recorder.Code)
}
