package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid/v5"

	"github.com/banssharp/banssharp/internal/httphelper"
	"github.com/banssharp/banssharp/internal/role"
	"github.com/banssharp/banssharp/internal/session"
)

type authHandler struct {
	auth     *Auth
	sessions session.Sessions
}

func NewAuthHandler(engine *gin.Engine, auth *Auth, sessions session.Sessions) {
	handler := authHandler{auth: auth, sessions: sessions}

	authed := engine.Group("/")
	{
		grp := authed.Use(auth.Middleware(role.User))
		grp.GET("/api/auth/profile", handler.onAPIProfile())
		grp.GET("/api/auth/logout", handler.onAPILogout())
	}
}

func (h authHandler) onAPIProfile() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		profile, errProfile := session.CurrentUser(ctx)
		if errProfile != nil {
			httphelper.SetError(ctx, httphelper.NewAPIError(http.StatusUnauthorized, ErrAuthentication))

			return
		}

		ctx.JSON(http.StatusOK, profile.Redacted())
	}
}

func (h authHandler) onAPILogout() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		defer h.auth.ClearCookies(ctx)

		cookieValue, errCookie := ctx.Cookie(SessionCookieName)
		if errCookie == nil && cookieValue != "" {
			if sessionID, errParse := uuid.FromString(cookieValue); errParse == nil {
				if errRevoke := h.sessions.Revoke(ctx, sessionID); errRevoke != nil {
					httphelper.SetError(ctx, httphelper.NewAPIError(http.StatusInternalServerError, errRevoke))

					return
				}
			}
		}

		ctx.JSON(http.StatusOK, gin.H{})
	}
}
