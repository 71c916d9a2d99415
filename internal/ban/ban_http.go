package ban

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/banssharp/banssharp/internal/httphelper"
	"github.com/banssharp/banssharp/internal/role"
)

type banHandler struct {
	Bans
}

func NewBanHandler(engine *gin.Engine, bans Bans, auth httphelper.Authenticator) {
	handler := banHandler{Bans: bans}

	adminGrp := engine.Group("/")
	{
		admin := adminGrp.Use(auth.Middleware(role.Admin))
		admin.GET("/api/bans", handler.onAPIGetBans())
		admin.POST("/api/bans", handler.onAPIPostBanCreate())
		admin.POST("/api/bans/:ban_id", handler.onAPIPostBanUpdate())
		admin.POST("/api/bans/:ban_id/unban", handler.onAPIPostUnban())
		admin.GET("/api/mutes", handler.onAPIGetMutes())
		admin.POST("/api/mutes", handler.onAPIPostMuteCreate())
		admin.POST("/api/mutes/:mute_id", handler.onAPIPostMuteUpdate())
		admin.POST("/api/mutes/:mute_id/unmute", handler.onAPIPostUnmute())
		admin.GET("/api/warns", handler.onAPIGetWarns())
		admin.POST("/api/warns", handler.onAPIPostWarnCreate())
		admin.POST("/api/warns/:warn_id", handler.onAPIPostWarnUpdate())
		admin.DELETE("/api/warns/:warn_id", handler.onAPIDeleteWarn())
	}
}

// setStoreError maps the repository sentinels onto problem responses. The
// existence checks run inside the write transaction, so a missing admin,
// server or target row surfaces here rather than as a constraint violation.
func setStoreError(ctx *gin.Context, err error) {
	for _, missing := range []error{ErrAdminNotFound, ErrServerNotFound, ErrBanNotFound, ErrMuteNotFound, ErrWarnNotFound} {
		if errors.Is(err, missing) {
			httphelper.SetError(ctx, httphelper.NewAPIError(http.StatusNotFound, err))

			return
		}
	}

	httphelper.SetError(ctx, httphelper.NewAPIError(http.StatusInternalServerError, errors.Join(err, httphelper.ErrInternal)))
}

func (h banHandler) onAPIGetBans() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		var filter Filter
		if !httphelper.BindQuery(ctx, &filter) {
			return
		}

		bans, errBans := h.Bans.Bans(ctx, filter)
		if errBans != nil {
			setStoreError(ctx, errBans)

			return
		}

		ctx.JSON(http.StatusOK, bans)
	}
}

type banRequest struct {
	PlayerName    *string `json:"player_name"`
	PlayerSteamID string  `json:"player_steamid" binding:"required"`
	PlayerIP      *string `json:"player_ip"`
	AdminSteamID  string  `json:"admin_steamid"`
	AdminName     string  `json:"admin_name"`
	Reason        string  `json:"reason" binding:"required"`
	Duration      int     `json:"duration"`
	ServerID      *int    `json:"server_id"`
}

func (h banHandler) onAPIPostBanCreate() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		req, ok := httphelper.BindJSON[banRequest](ctx)
		if !ok {
			return
		}

		ban := Ban{
			PlayerName:    req.PlayerName,
			PlayerSteamID: req.PlayerSteamID,
			PlayerIP:      req.PlayerIP,
			AdminSteamID:  req.AdminSteamID,
			AdminName:     req.AdminName,
			Reason:        req.Reason,
			Duration:      req.Duration,
			ServerID:      req.ServerID,
		}

		if errAdd := h.AddBan(ctx, &ban); errAdd != nil {
			setStoreError(ctx, errAdd)

			return
		}

		ctx.JSON(http.StatusCreated, ban)
	}
}

func (h banHandler) onAPIPostBanUpdate() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		banID, idFound := httphelper.GetIntParam(ctx, "ban_id")
		if !idFound {
			return
		}

		req, ok := httphelper.BindJSON[banRequest](ctx)
		if !ok {
			return
		}

		ban := Ban{
			BanID:         banID,
			PlayerName:    req.PlayerName,
			PlayerSteamID: req.PlayerSteamID,
			PlayerIP:      req.PlayerIP,
			Reason:        req.Reason,
			Duration:      req.Duration,
			ServerID:      req.ServerID,
		}

		if errEdit := h.EditBan(ctx, &ban); errEdit != nil {
			setStoreError(ctx, errEdit)

			return
		}

		ctx.JSON(http.StatusOK, gin.H{"id": banID})
	}
}

type liftRequest struct {
	AdminID int    `json:"admin_id"`
	Reason  string `json:"reason" binding:"required"`
}

func (h banHandler) onAPIPostUnban() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		banID, idFound := httphelper.GetIntParam(ctx, "ban_id")
		if !idFound {
			return
		}

		req, ok := httphelper.BindJSON[liftRequest](ctx)
		if !ok {
			return
		}

		if errUnban := h.Unban(ctx, banID, req.AdminID, req.Reason); errUnban != nil {
			setStoreError(ctx, errUnban)

			return
		}

		ctx.JSON(http.StatusOK, gin.H{"id": banID})
	}
}

func (h banHandler) onAPIGetMutes() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		var filter Filter
		if !httphelper.BindQuery(ctx, &filter) {
			return
		}

		mutes, errMutes := h.Mutes(ctx, filter)
		if errMutes != nil {
			setStoreError(ctx, errMutes)

			return
		}

		ctx.JSON(http.StatusOK, mutes)
	}
}

type muteRequest struct {
	PlayerName    *string `json:"player_name"`
	PlayerSteamID string  `json:"player_steamid" binding:"required"`
	AdminSteamID  string  `json:"admin_steamid"`
	AdminName     string  `json:"admin_name"`
	Reason        string  `json:"reason" binding:"required"`
	Duration      int     `json:"duration"`
	Type          string  `json:"type" binding:"required"`
	ServerID      *int    `json:"server_id"`
}

func (h banHandler) onAPIPostMuteCreate() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		req, ok := httphelper.BindJSON[muteRequest](ctx)
		if !ok {
			return
		}

		muteType, errType := ParseMuteType(req.Type)
		if errType != nil {
			httphelper.SetError(ctx, httphelper.NewAPIError(http.StatusBadRequest, errType))

			return
		}

		mute := Mute{
			PlayerName:    req.PlayerName,
			PlayerSteamID: req.PlayerSteamID,
			AdminSteamID:  req.AdminSteamID,
			AdminName:     req.AdminName,
			Reason:        req.Reason,
			Duration:      req.Duration,
			Type:          muteType,
			ServerID:      req.ServerID,
		}

		if errAdd := h.AddMute(ctx, &mute); errAdd != nil {
			setStoreError(ctx, errAdd)

			return
		}

		ctx.JSON(http.StatusCreated, mute)
	}
}

func (h banHandler) onAPIPostMuteUpdate() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		muteID, idFound := httphelper.GetIntParam(ctx, "mute_id")
		if !idFound {
			return
		}

		req, ok := httphelper.BindJSON[muteRequest](ctx)
		if !ok {
			return
		}

		muteType, errType := ParseMuteType(req.Type)
		if errType != nil {
			httphelper.SetError(ctx, httphelper.NewAPIError(http.StatusBadRequest, errType))

			return
		}

		mute := Mute{
			MuteID:        muteID,
			PlayerName:    req.PlayerName,
			PlayerSteamID: req.PlayerSteamID,
			Reason:        req.Reason,
			Duration:      req.Duration,
			Type:          muteType,
			ServerID:      req.ServerID,
		}

		if errEdit := h.EditMute(ctx, &mute); errEdit != nil {
			setStoreError(ctx, errEdit)

			return
		}

		ctx.JSON(http.StatusOK, gin.H{"id": muteID})
	}
}

func (h banHandler) onAPIPostUnmute() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		muteID, idFound := httphelper.GetIntParam(ctx, "mute_id")
		if !idFound {
			return
		}

		req, ok := httphelper.BindJSON[liftRequest](ctx)
		if !ok {
			return
		}

		if errUnmute := h.Unmute(ctx, muteID, req.AdminID, req.Reason); errUnmute != nil {
			setStoreError(ctx, errUnmute)

			return
		}

		ctx.JSON(http.StatusOK, gin.H{"id": muteID})
	}
}

func (h banHandler) onAPIGetWarns() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		var filter Filter
		if !httphelper.BindQuery(ctx, &filter) {
			return
		}

		warns, errWarns := h.Warns(ctx, filter)
		if errWarns != nil {
			setStoreError(ctx, errWarns)

			return
		}

		ctx.JSON(http.StatusOK, warns)
	}
}

type warnRequest struct {
	PlayerName    *string `json:"player_name"`
	PlayerSteamID string  `json:"player_steamid" binding:"required"`
	AdminSteamID  string  `json:"admin_steamid"`
	AdminName     string  `json:"admin_name"`
	Reason        string  `json:"reason" binding:"required"`
	Duration      int     `json:"duration"`
	ServerID      *int    `json:"server_id"`
}

func (h banHandler) onAPIPostWarnCreate() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		req, ok := httphelper.BindJSON[warnRequest](ctx)
		if !ok {
			return
		}

		warn := Warn{
			PlayerName:    req.PlayerName,
			PlayerSteamID: req.PlayerSteamID,
			AdminSteamID:  req.AdminSteamID,
			AdminName:     req.AdminName,
			Reason:        req.Reason,
			Duration:      req.Duration,
			ServerID:      req.ServerID,
		}

		if errAdd := h.AddWarn(ctx, &warn); errAdd != nil {
			setStoreError(ctx, errAdd)

			return
		}

		ctx.JSON(http.StatusCreated, warn)
	}
}

func (h banHandler) onAPIPostWarnUpdate() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		warnID, idFound := httphelper.GetIntParam(ctx, "warn_id")
		if !idFound {
			return
		}

		req, ok := httphelper.BindJSON[warnRequest](ctx)
		if !ok {
			return
		}

		warn := Warn{
			WarnID:        warnID,
			PlayerName:    req.PlayerName,
			PlayerSteamID: req.PlayerSteamID,
			Reason:        req.Reason,
			Duration:      req.Duration,
			ServerID:      req.ServerID,
		}

		if errEdit := h.EditWarn(ctx, &warn); errEdit != nil {
			setStoreError(ctx, errEdit)

			return
		}

		ctx.JSON(http.StatusOK, gin.H{"id": warnID})
	}
}

func (h banHandler) onAPIDeleteWarn() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		warnID, idFound := httphelper.GetIntParam(ctx, "warn_id")
		if !idFound {
			return
		}

		if errDelete := h.DeleteWarn(ctx, warnID); errDelete != nil {
			setStoreError(ctx, errDelete)

			return
		}

		ctx.JSON(http.StatusOK, gin.H{"id": warnID})
	}
}
