package user

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/leighmacdonald/steamid/v4/steamid"

	"github.com/banssharp/banssharp/internal/role"
)

// User is a local account row. Steam identity fields are only populated once a
// verified provider assertion has linked the account.
type User struct {
	ID            uuid.UUID `json:"id"`
	Email         string    `json:"email"`
	Name          string    `json:"name"`
	Image         *string   `json:"image"`
	Role          string    `json:"role"`
	SteamID       *string   `json:"steam_id"`
	SteamVerified bool      `json:"steam_verified"`
	CreatedOn     time.Time `json:"created_on"`
	UpdatedOn     time.Time `json:"updated_on"`
}

func New(email string, name string) User {
	now := time.Now()

	return User{
		ID:        uuid.Must(uuid.NewV4()),
		Email:     email,
		Name:      name,
		Role:      role.User.String(),
		CreatedOn: now,
		UpdatedOn: now,
	}
}

func (u User) Privilege() role.Privilege {
	return role.Parse(u.Role)
}

func (u User) HasPermission(level role.Privilege) bool {
	return u.Privilege() >= level
}

func (u User) SteamIDValue() steamid.SteamID {
	if u.SteamID == nil {
		return steamid.SteamID{}
	}

	return steamid.New(*u.SteamID)
}

// Redacted strips fields that should not leave the API surface.
func (u User) Redacted() User {
	u.Email = ""

	return u
}

// Field is a tri-state patch member. A field absent from the request body
// leaves the column untouched, an explicit JSON null clears it, anything else
// replaces the value.
type Field[T any] struct {
	Value T
	Set   bool
	Null  bool
}

func FieldValue[T any](value T) Field[T] {
	return Field[T]{Value: value, Set: true}
}

func FieldNull[T any]() Field[T] {
	return Field[T]{Set: true, Null: true}
}

func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.Set = true

	if string(data) == "null" {
		f.Null = true

		return nil
	}

	return json.Unmarshal(data, &f.Value) //nolint:wrapcheck
}

func (f Field[T]) MarshalJSON() ([]byte, error) {
	if !f.Set || f.Null {
		return []byte("null"), nil
	}

	return json.Marshal(f.Value) //nolint:wrapcheck
}

// Patch carries partial account updates. Role and steam_verified are never
// bound from client requests, they are applied internally by the auth flows.
type Patch struct {
	Name          Field[string] `json:"name"`
	Image         Field[string] `json:"image"`
	SteamID       Field[string] `json:"-"`
	SteamVerified Field[bool]   `json:"-"`
}

// Apply folds the patch into the user, mirroring what SavePatch does on the
// database row.
func (p Patch) Apply(target *User) {
	if p.Name.Set && !p.Name.Null {
		target.Name = p.Name.Value
	}

	if p.Image.Set {
		if p.Image.Null {
			target.Image = nil
		} else {
			image := p.Image.Value
			target.Image = &image
		}
	}

	if p.SteamID.Set {
		if p.SteamID.Null {
			target.SteamID = nil
		} else {
			sid := p.SteamID.Value
			target.SteamID = &sid
		}
	}

	if p.SteamVerified.Set && !p.SteamVerified.Null {
		target.SteamVerified = p.SteamVerified.Value
	}

	target.UpdatedOn = time.Now()
}

type Store interface {
	GetByID(ctx context.Context, userID uuid.UUID) (User, error)
	GetBySteamID(ctx context.Context, steamID steamid.SteamID) (User, error)
	Create(ctx context.Context, user *User) error
	SavePatch(ctx context.Context, userID uuid.UUID, patch Patch) (User, error)
}
