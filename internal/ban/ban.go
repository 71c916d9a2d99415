// Package ban holds the moderation records shared with the game servers:
// bans, communication mutes and warnings, plus the unban/unmute audit rows.
package ban

import (
	"context"
	"errors"
	"time"
)

var (
	ErrAdminNotFound  = errors.New("admin does not exist")
	ErrServerNotFound = errors.New("server does not exist")
	ErrBanNotFound    = errors.New("ban does not exist")
	ErrMuteNotFound   = errors.New("mute does not exist")
	ErrWarnNotFound   = errors.New("warn does not exist")
	ErrInvalidMute    = errors.New("invalid mute type")
)

type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusUnbanned Status = "UNBANNED"
	StatusUnmuted  Status = "UNMUTED"
	StatusExpired  Status = "EXPIRED"
)

type MuteType string

const (
	MuteTypeGag     MuteType = "GAG"
	MuteTypeMute    MuteType = "MUTE"
	MuteTypeSilence MuteType = "SILENCE"
)

func ParseMuteType(value string) (MuteType, error) {
	switch MuteType(value) {
	case MuteTypeGag, MuteTypeMute, MuteTypeSilence:
		return MuteType(value), nil
	default:
		return "", ErrInvalidMute
	}
}

type Ban struct {
	BanID         int        `json:"id"`
	PlayerName    *string    `json:"player_name"`
	PlayerSteamID string     `json:"player_steamid"`
	PlayerIP      *string    `json:"player_ip"`
	AdminSteamID  string     `json:"admin_steamid"`
	AdminName     string     `json:"admin_name"`
	Reason        string     `json:"reason"`
	Duration      int        `json:"duration"`
	Ends          *time.Time `json:"ends"`
	Created       time.Time  `json:"created"`
	ServerID      *int       `json:"server_id"`
	UnbanID       *int       `json:"unban_id"`
	Status        Status     `json:"status"`
}

type Mute struct {
	MuteID        int        `json:"id"`
	PlayerName    *string    `json:"player_name"`
	PlayerSteamID string     `json:"player_steamid"`
	AdminSteamID  string     `json:"admin_steamid"`
	AdminName     string     `json:"admin_name"`
	Reason        string     `json:"reason"`
	Duration      int        `json:"duration"`
	Passed        *int       `json:"passed"`
	Ends          *time.Time `json:"ends"`
	Created       time.Time  `json:"created"`
	Type          MuteType   `json:"type"`
	ServerID      *int       `json:"server_id"`
	UnmuteID      *int       `json:"unmute_id"`
	Status        Status     `json:"status"`
}

type Warn struct {
	WarnID        int       `json:"id"`
	PlayerName    *string   `json:"player_name"`
	PlayerSteamID string    `json:"player_steamid"`
	AdminSteamID  string    `json:"admin_steamid"`
	AdminName     string    `json:"admin_name"`
	Reason        string    `json:"reason"`
	Duration      int       `json:"duration"`
	Ends          time.Time `json:"ends"`
	Created       time.Time `json:"created"`
	ServerID      *int      `json:"server_id"`
	Status        Status    `json:"status"`
}

// Filter narrows the list endpoints. Zero values match everything.
type Filter struct {
	PlayerSteamID string `schema:"steam_id"`
	ServerID      int    `schema:"server_id"`
}

type Store interface {
	Bans(ctx context.Context, filter Filter) ([]Ban, error)
	AddBan(ctx context.Context, ban *Ban) error
	EditBan(ctx context.Context, ban *Ban) error
	Unban(ctx context.Context, banID int, adminID int, reason string) error
	Mutes(ctx context.Context, filter Filter) ([]Mute, error)
	AddMute(ctx context.Context, mute *Mute) error
	EditMute(ctx context.Context, mute *Mute) error
	Unmute(ctx context.Context, muteID int, adminID int, reason string) error
	Warns(ctx context.Context, filter Filter) ([]Warn, error)
	AddWarn(ctx context.Context, warn *Warn) error
	EditWarn(ctx context.Context, warn *Warn) error
	DeleteWarn(ctx context.Context, warnID int) error
}

type Bans struct {
	repository Store
}

func NewBans(repository Store) Bans {
	return Bans{repository: repository}
}

// punishmentEnds returns the expiry for a timed punishment. A zero duration
// means permanent.
func punishmentEnds(created time.Time, durationSecs int) *time.Time {
	if durationSecs == 0 {
		return nil
	}

	ends := created.Add(time.Duration(durationSecs) * time.Second)

	return &ends
}

func (b Bans) Bans(ctx context.Context, filter Filter) ([]Ban, error) {
	return b.repository.Bans(ctx, filter)
}

func (b Bans) AddBan(ctx context.Context, ban *Ban) error {
	ban.Created = time.Now()
	ban.Ends = punishmentEnds(ban.Created, ban.Duration)
	ban.Status = StatusActive

	return b.repository.AddBan(ctx, ban)
}

func (b Bans) EditBan(ctx context.Context, ban *Ban) error {
	ban.Ends = punishmentEnds(time.Now(), ban.Duration)

	return b.repository.EditBan(ctx, ban)
}

func (b Bans) Unban(ctx context.Context, banID int, adminID int, reason string) error {
	return b.repository.Unban(ctx, banID, adminID, reason)
}

func (b Bans) Mutes(ctx context.Context, filter Filter) ([]Mute, error) {
	return b.repository.Mutes(ctx, filter)
}

func (b Bans) AddMute(ctx context.Context, mute *Mute) error {
	mute.Created = time.Now()
	mute.Ends = punishmentEnds(mute.Created, mute.Duration)
	mute.Status = StatusActive

	return b.repository.AddMute(ctx, mute)
}

func (b Bans) EditMute(ctx context.Context, mute *Mute) error {
	mute.Ends = punishmentEnds(time.Now(), mute.Duration)

	return b.repository.EditMute(ctx, mute)
}

func (b Bans) Unmute(ctx context.Context, muteID int, adminID int, reason string) error {
	return b.repository.Unmute(ctx, muteID, adminID, reason)
}

func (b Bans) Warns(ctx context.Context, filter Filter) ([]Warn, error) {
	return b.repository.Warns(ctx, filter)
}

// AddWarn always stamps an expiry. Warnings are never permanent.
func (b Bans) AddWarn(ctx context.Context, warn *Warn) error {
	warn.Created = time.Now()
	warn.Ends = warn.Created.Add(time.Duration(warn.Duration) * time.Second)
	warn.Status = StatusActive

	return b.repository.AddWarn(ctx, warn)
}

func (b Bans) EditWarn(ctx context.Context, warn *Warn) error {
	warn.Ends = time.Now().Add(time.Duration(warn.Duration) * time.Second)

	return b.repository.EditWarn(ctx, warn)
}

func (b Bans) DeleteWarn(ctx context.Context, warnID int) error {
	return b.repository.DeleteWarn(ctx, warnID)
}
