package admin

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/banssharp/banssharp/internal/httphelper"
	"github.com/banssharp/banssharp/internal/role"
)

type adminHandler struct {
	Admins
}

func NewAdminHandler(engine *gin.Engine, admins Admins, auth httphelper.Authenticator) {
	handler := adminHandler{Admins: admins}

	rootGrp := engine.Group("/")
	{
		root := rootGrp.Use(auth.Middleware(role.Root))
		root.GET("/api/admins", handler.onAPIGetAdmins())
		root.POST("/api/admins", handler.onAPIPostAdminCreate())
		root.POST("/api/admins/:admin_id", handler.onAPIPostAdminUpdate())
		root.DELETE("/api/admins/:admin_id", handler.onAPIDeleteAdmin())
		root.GET("/api/groups", handler.onAPIGetGroups())
		root.POST("/api/groups", handler.onAPIPostGroupCreate())
		root.POST("/api/groups/:group_id", handler.onAPIPostGroupUpdate())
		root.DELETE("/api/groups/:group_id", handler.onAPIDeleteGroup())
	}
}

func setStoreError(ctx *gin.Context, err error) {
	for _, missing := range []error{ErrAdminNotFound, ErrGroupNotFound, ErrServerNotFound} {
		if errors.Is(err, missing) {
			httphelper.SetError(ctx, httphelper.NewAPIError(http.StatusNotFound, err))

			return
		}
	}

	httphelper.SetError(ctx, httphelper.NewAPIError(http.StatusInternalServerError, errors.Join(err, httphelper.ErrInternal)))
}

func (h adminHandler) onAPIGetAdmins() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		admins, errAdmins := h.Admins.Admins(ctx)
		if errAdmins != nil {
			setStoreError(ctx, errAdmins)

			return
		}

		ctx.JSON(http.StatusOK, admins)
	}
}

type adminRequest struct {
	PlayerName    *string `json:"player_name"`
	PlayerSteamID string  `json:"player_steamid" binding:"required"`
	Flags         *string `json:"flags"`
	Immunity      int     `json:"immunity"`
	ServerID      *int    `json:"server_id"`
	GroupID       *int    `json:"group_id"`
	Duration      int     `json:"duration"`
}

func (h adminHandler) onAPIPostAdminCreate() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		req, ok := httphelper.BindJSON[adminRequest](ctx)
		if !ok {
			return
		}

		admin := Admin{
			PlayerName:    req.PlayerName,
			PlayerSteamID: req.PlayerSteamID,
			Flags:         req.Flags,
			Immunity:      req.Immunity,
			ServerID:      req.ServerID,
			GroupID:       req.GroupID,
		}

		if errAdd := h.AddAdmin(ctx, &admin, req.Duration); errAdd != nil {
			setStoreError(ctx, errAdd)

			return
		}

		ctx.JSON(http.StatusCreated, admin)
	}
}

func (h adminHandler) onAPIPostAdminUpdate() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		adminID, idFound := httphelper.GetIntParam(ctx, "admin_id")
		if !idFound {
			return
		}

		req, ok := httphelper.BindJSON[adminRequest](ctx)
		if !ok {
			return
		}

		admin := Admin{
			AdminID:       adminID,
			PlayerName:    req.PlayerName,
			PlayerSteamID: req.PlayerSteamID,
			Flags:         req.Flags,
			Immunity:      req.Immunity,
			ServerID:      req.ServerID,
			GroupID:       req.GroupID,
		}

		if errEdit := h.EditAdmin(ctx, &admin, req.Duration); errEdit != nil {
			setStoreError(ctx, errEdit)

			return
		}

		ctx.JSON(http.StatusOK, gin.H{"id": adminID})
	}
}

func (h adminHandler) onAPIDeleteAdmin() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		adminID, idFound := httphelper.GetIntParam(ctx, "admin_id")
		if !idFound {
			return
		}

		if errDelete := h.DeleteAdmin(ctx, adminID); errDelete != nil {
			setStoreError(ctx, errDelete)

			return
		}

		ctx.JSON(http.StatusOK, gin.H{"id": adminID})
	}
}

func (h adminHandler) onAPIGetGroups() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		groups, errGroups := h.Groups(ctx)
		if errGroups != nil {
			setStoreError(ctx, errGroups)

			return
		}

		ctx.JSON(http.StatusOK, groups)
	}
}

type groupRequest struct {
	Name      string   `json:"name" binding:"required"`
	Immunity  int      `json:"immunity"`
	Flags     []string `json:"flags"`
	ServerIDs []int    `json:"serverIds"`
}

func (h adminHandler) onAPIPostGroupCreate() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		req, ok := httphelper.BindJSON[groupRequest](ctx)
		if !ok {
			return
		}

		group := Group{
			Name:      req.Name,
			Immunity:  req.Immunity,
			Flags:     req.Flags,
			ServerIDs: req.ServerIDs,
		}

		if errAdd := h.AddGroup(ctx, &group); errAdd != nil {
			setStoreError(ctx, errAdd)

			return
		}

		ctx.JSON(http.StatusCreated, group)
	}
}

func (h adminHandler) onAPIPostGroupUpdate() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		groupID, idFound := httphelper.GetIntParam(ctx, "group_id")
		if !idFound {
			return
		}

		req, ok := httphelper.BindJSON[groupRequest](ctx)
		if !ok {
			return
		}

		group := Group{
			GroupID:  groupID,
			Name:     req.Name,
			Immunity: req.Immunity,
		}

		if errEdit := h.EditGroup(ctx, &group, req.Flags, req.ServerIDs); errEdit != nil {
			setStoreError(ctx, errEdit)

			return
		}

		ctx.JSON(http.StatusOK, gin.H{"id": groupID})
	}
}

func (h adminHandler) onAPIDeleteGroup() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		groupID, idFound := httphelper.GetIntParam(ctx, "group_id")
		if !idFound {
			return
		}

		if errDelete := h.DeleteGroup(ctx, groupID); errDelete != nil {
			setStoreError(ctx, errDelete)

			return
		}

		ctx.JSON(http.StatusOK, gin.H{"id": groupID})
	}
}
