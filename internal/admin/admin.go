// Package admin manages the game-server admin grants and permission groups
// consumed by the SourceMod plugins.
package admin

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	ErrAdminNotFound  = errors.New("admin does not exist")
	ErrGroupNotFound  = errors.New("group does not exist")
	ErrServerNotFound = errors.New("server does not exist")
)

type Admin struct {
	AdminID       int        `json:"id"`
	PlayerName    *string    `json:"player_name"`
	PlayerSteamID string     `json:"player_steamid"`
	Flags         *string    `json:"flags"`
	Immunity      int        `json:"immunity"`
	ServerID      *int       `json:"server_id"`
	GroupID       *int       `json:"group_id"`
	Ends          *time.Time `json:"ends"`
	Created       time.Time  `json:"created"`
}

// FlagList splits the comma separated flags column, dropping empty entries.
func (a Admin) FlagList() []string {
	if a.Flags == nil {
		return nil
	}

	var flags []string

	for _, flag := range strings.Split(*a.Flags, ",") {
		if strings.TrimSpace(flag) == "" {
			continue
		}

		flags = append(flags, flag)
	}

	return flags
}

type Group struct {
	GroupID   int      `json:"id"`
	Name      string   `json:"name"`
	Immunity  int      `json:"immunity"`
	Flags     []string `json:"flags"`
	ServerIDs []int    `json:"serverIds"`
}

type Store interface {
	Admins(ctx context.Context) ([]Admin, error)
	AddAdmin(ctx context.Context, admin *Admin) error
	EditAdmin(ctx context.Context, admin *Admin) error
	DeleteAdmin(ctx context.Context, adminID int) error
	Groups(ctx context.Context) ([]Group, error)
	AddGroup(ctx context.Context, group *Group) error
	EditGroup(ctx context.Context, group *Group, flags []string, serverIDs []int) error
	DeleteGroup(ctx context.Context, groupID int) error
}

type Admins struct {
	repository Store
}

func NewAdmins(repository Store) Admins {
	return Admins{repository: repository}
}

func grantEnds(durationSecs int) *time.Time {
	if durationSecs == 0 {
		return nil
	}

	ends := time.Now().Add(time.Duration(durationSecs) * time.Second)

	return &ends
}

func (a Admins) Admins(ctx context.Context) ([]Admin, error) {
	return a.repository.Admins(ctx)
}

func (a Admins) AddAdmin(ctx context.Context, admin *Admin, durationSecs int) error {
	admin.Created = time.Now()
	admin.Ends = grantEnds(durationSecs)

	return a.repository.AddAdmin(ctx, admin)
}

func (a Admins) EditAdmin(ctx context.Context, admin *Admin, durationSecs int) error {
	admin.Ends = grantEnds(durationSecs)

	return a.repository.EditAdmin(ctx, admin)
}

func (a Admins) DeleteAdmin(ctx context.Context, adminID int) error {
	return a.repository.DeleteAdmin(ctx, adminID)
}

func (a Admins) Groups(ctx context.Context) ([]Group, error) {
	return a.repository.Groups(ctx)
}

func (a Admins) AddGroup(ctx context.Context, group *Group) error {
	return a.repository.AddGroup(ctx, group)
}

// EditGroup replaces the flag and server fan-out rows only when the caller
// supplied them. A nil slice leaves the existing rows untouched.
func (a Admins) EditGroup(ctx context.Context, group *Group, flags []string, serverIDs []int) error {
	return a.repository.EditGroup(ctx, group, flags, serverIDs)
}

func (a Admins) DeleteGroup(ctx context.Context, groupID int) error {
	return a.repository.DeleteGroup(ctx, groupID)
}
