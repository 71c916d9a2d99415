package servers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/banssharp/banssharp/internal/database"
	"github.com/banssharp/banssharp/internal/httphelper"
	"github.com/banssharp/banssharp/internal/role"
)

type serversHandler struct {
	Servers
}

func NewServersHandler(engine *gin.Engine, servers Servers, auth httphelper.Authenticator) {
	handler := serversHandler{Servers: servers}

	adminGrp := engine.Group("/")
	{
		admin := adminGrp.Use(auth.Middleware(role.Admin))
		admin.GET("/api/servers", handler.onAPIGetServers())
	}

	rootGrp := engine.Group("/")
	{
		root := rootGrp.Use(auth.Middleware(role.Root))
		root.POST("/api/servers", handler.onAPIPostServerCreate())
		root.POST("/api/servers/:server_id", handler.onAPIPostServerUpdate())
		root.DELETE("/api/servers/:server_id", handler.onAPIDeleteServer())
	}
}

func (h serversHandler) onAPIGetServers() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		options, errOptions := h.Options(ctx)
		if errOptions != nil {
			httphelper.SetError(ctx, httphelper.NewAPIError(http.StatusInternalServerError, errors.Join(errOptions, httphelper.ErrInternal)))

			return
		}

		ctx.JSON(http.StatusOK, options)
	}
}

type serverRequest struct {
	Hostname     *string `json:"hostname"`
	RCONPassword *string `json:"rcon_password"`
	Address      string  `json:"address" binding:"required"`
}

func (h serversHandler) onAPIPostServerCreate() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		req, ok := httphelper.BindJSON[serverRequest](ctx)
		if !ok {
			return
		}

		server := Server{
			Hostname:     req.Hostname,
			RCONPassword: req.RCONPassword,
			Address:      req.Address,
		}

		if errSave := h.Save(ctx, &server); errSave != nil {
			if errors.Is(errSave, ErrAddressMissing) {
				httphelper.SetError(ctx, httphelper.NewAPIError(http.StatusBadRequest, errSave))

				return
			}

			httphelper.SetError(ctx, httphelper.NewAPIError(http.StatusInternalServerError, errors.Join(errSave, httphelper.ErrInternal)))

			return
		}

		ctx.JSON(http.StatusCreated, server)
	}
}

func (h serversHandler) onAPIPostServerUpdate() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		serverID, idFound := httphelper.GetIntParam(ctx, "server_id")
		if !idFound {
			return
		}

		server, errGet := h.GetByID(ctx, serverID)
		if errGet != nil {
			if errors.Is(errGet, database.ErrNoResult) {
				httphelper.SetError(ctx, httphelper.NewAPIError(http.StatusNotFound, httphelper.ErrNotFound))

				return
			}

			httphelper.SetError(ctx, httphelper.NewAPIError(http.StatusInternalServerError, errors.Join(errGet, httphelper.ErrInternal)))

			return
		}

		req, ok := httphelper.BindJSON[serverRequest](ctx)
		if !ok {
			return
		}

		server.Hostname = req.Hostname
		server.RCONPassword = req.RCONPassword
		server.Address = req.Address

		if errSave := h.Save(ctx, &server); errSave != nil {
			httphelper.SetError(ctx, httphelper.NewAPIError(http.StatusInternalServerError, errors.Join(errSave, httphelper.ErrInternal)))

			return
		}

		ctx.JSON(http.StatusOK, server)
	}
}

func (h serversHandler) onAPIDeleteServer() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		serverID, idFound := httphelper.GetIntParam(ctx, "server_id")
		if !idFound {
			return
		}

		if _, errGet := h.GetByID(ctx, serverID); errGet != nil {
			if errors.Is(errGet, database.ErrNoResult) {
				httphelper.SetError(ctx, httphelper.NewAPIError(http.StatusNotFound, httphelper.ErrNotFound))

				return
			}

			httphelper.SetError(ctx, httphelper.NewAPIError(http.StatusInternalServerError, errors.Join(errGet, httphelper.ErrInternal)))

			return
		}

		if errDelete := h.Delete(ctx, serverID); errDelete != nil {
			httphelper.SetError(ctx, httphelper.NewAPIError(http.StatusInternalServerError, errors.Join(errDelete, httphelper.ErrInternal)))

			return
		}

		ctx.JSON(http.StatusOK, gin.H{"server_id": serverID})
	}
}
