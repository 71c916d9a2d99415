package steam

import (
	"context"
	"errors"

	"github.com/leighmacdonald/steamid/v4/steamid"

	"github.com/banssharp/banssharp/internal/database"
	"github.com/banssharp/banssharp/internal/user"
)

// Resolver maps a verified provider identity onto a local account. Branch
// order: an existing link wins, then linking the identity to the callers live
// session, then signup-on-verification. A logged in caller always links to
// their own account rather than splitting off a fresh one. With no branch
// applicable the flow is a dead end.
type Resolver struct {
	users user.Store
	conf  Config
}

func NewResolver(conf Config, users user.Store) Resolver {
	return Resolver{users: users, conf: conf}
}

func (r Resolver) Resolve(ctx context.Context, sid steamid.SteamID, summary *PlayerSummary, current *user.User) (user.User, error) {
	existing, errExisting := r.users.GetBySteamID(ctx, sid)

	switch {
	case errExisting == nil:
		return r.refreshLinked(ctx, existing, sid, summary)
	case !errors.Is(errExisting, database.ErrNoResult):
		return user.User{}, errExisting
	}

	if current != nil {
		return r.linkCurrent(ctx, *current, sid, summary)
	}

	if r.conf.SignupEnabled {
		return r.signUp(ctx, sid, summary)
	}

	return user.User{}, ErrNoSessionNoSignup
}

// refreshLinked updates the already linked account. A non-null image is never
// clobbered by the provider avatar.
func (r Resolver) refreshLinked(ctx context.Context, account user.User, sid steamid.SteamID, summary *PlayerSummary) (user.User, error) {
	patch := user.Patch{
		Name:          user.FieldValue(summary.DisplayName(sid)),
		SteamVerified: user.FieldValue(true),
	}

	if account.Image == nil && summary.AvatarURL() != "" {
		patch.Image = user.FieldValue(summary.AvatarURL())
	}

	return r.users.SavePatch(ctx, account.ID, patch)
}

func (r Resolver) signUp(ctx context.Context, sid steamid.SteamID, summary *PlayerSummary) (user.User, error) {
	name := summary.DisplayName(sid)
	if summary == nil {
		name = r.conf.tempName(sid.String())
	}

	account := user.New(r.conf.tempEmail(sid.String()), name)

	steamID := sid.String()
	account.SteamID = &steamID
	account.SteamVerified = true

	if avatar := summary.AvatarURL(); avatar != "" {
		account.Image = &avatar
	}

	if errCreate := r.users.Create(ctx, &account); errCreate != nil {
		// Lost a create race, the winning row is the link we wanted.
		if errors.Is(errCreate, database.ErrDuplicate) {
			existing, errExisting := r.users.GetBySteamID(ctx, sid)
			if errExisting != nil {
				return user.User{}, errors.Join(errExisting, ErrUserCreation)
			}

			return r.refreshLinked(ctx, existing, sid, summary)
		}

		return user.User{}, errors.Join(errCreate, ErrUserCreation)
	}

	return account, nil
}

// linkCurrent attaches the verified identity to the callers existing account.
func (r Resolver) linkCurrent(ctx context.Context, current user.User, sid steamid.SteamID, summary *PlayerSummary) (user.User, error) {
	patch := user.Patch{
		Name:          user.FieldValue(summary.DisplayName(sid)),
		SteamID:       user.FieldValue(sid.String()),
		SteamVerified: user.FieldValue(true),
	}

	if current.Image == nil && summary.AvatarURL() != "" {
		patch.Image = user.FieldValue(summary.AvatarURL())
	}

	return r.users.SavePatch(ctx, current.ID, patch)
}
