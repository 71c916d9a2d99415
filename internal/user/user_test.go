package user_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/leighmacdonald/steamid/v4/steamid"
	"github.com/stretchr/testify/require"

	"github.com/banssharp/banssharp/internal/database"
	"github.com/banssharp/banssharp/internal/role"
	"github.com/banssharp/banssharp/internal/user"
)

func TestPatchUnmarshal(t *testing.T) {
	var patch user.Patch

	// Absent fields stay unset.
	require.NoError(t, json.Unmarshal([]byte(`{}`), &patch))
	require.False(t, patch.Name.Set)
	require.False(t, patch.Image.Set)

	// Explicit null is set-and-null, a value is set-with-value.
	patch = user.Patch{}
	require.NoError(t, json.Unmarshal([]byte(`{"name": "new name", "image": null}`), &patch))
	require.True(t, patch.Name.Set)
	require.False(t, patch.Name.Null)
	require.Equal(t, "new name", patch.Name.Value)
	require.True(t, patch.Image.Set)
	require.True(t, patch.Image.Null)
}

func TestPatchApply(t *testing.T) {
	image := "https://example.com/avatar.jpg"
	sid := "76561198084134025"

	account := user.New("someone@example.com", "someone")
	account.Image = &image
	account.SteamID = &sid
	account.SteamVerified = true

	// Unset fields leave the target untouched.
	(user.Patch{}).Apply(&account)
	require.Equal(t, "someone", account.Name)
	require.NotNil(t, account.Image)

	patch := user.Patch{
		Name:          user.FieldValue("renamed"),
		Image:         user.FieldNull[string](),
		SteamID:       user.FieldNull[string](),
		SteamVerified: user.FieldValue(false),
	}
	patch.Apply(&account)

	require.Equal(t, "renamed", account.Name)
	require.Nil(t, account.Image)
	require.Nil(t, account.SteamID)
	require.False(t, account.SteamVerified)
}

func TestRedacted(t *testing.T) {
	account := user.New("secret@example.com", "visible")
	redacted := account.Redacted()

	require.Empty(t, redacted.Email)
	require.Equal(t, "visible", redacted.Name)
	require.Equal(t, "secret@example.com", account.Email)
}

func TestPrivilege(t *testing.T) {
	account := user.New("someone@example.com", "someone")
	require.Equal(t, role.User, account.Privilege())
	require.True(t, account.HasPermission(role.Guest))
	require.False(t, account.HasPermission(role.Admin))

	account.Role = "root"
	require.True(t, account.HasPermission(role.Admin))

	account.Role = "something-unrecognized"
	require.Equal(t, role.User, account.Privilege())
}

func TestMemoryRepository(t *testing.T) {
	store := user.NewMemoryRepository()

	account := user.New("first@example.com", "first")
	require.NoError(t, store.Create(context.Background(), &account))

	duplicate := user.New("first@example.com", "other")
	require.ErrorIs(t, store.Create(context.Background(), &duplicate), database.ErrDuplicate)

	sid := "76561198084134025"
	linked := user.New("linked@example.com", "linked")
	linked.SteamID = &sid
	require.NoError(t, store.Create(context.Background(), &linked))

	found, errFound := store.GetBySteamID(context.Background(), steamid.New(sid))
	require.NoError(t, errFound)
	require.Equal(t, linked.ID, found.ID)

	collide := user.New("collide@example.com", "collide")
	collide.SteamID = &sid
	require.ErrorIs(t, store.Create(context.Background(), &collide), database.ErrDuplicate)

	updated, errPatch := store.SavePatch(context.Background(), account.ID, user.Patch{Name: user.FieldValue("renamed")})
	require.NoError(t, errPatch)
	require.Equal(t, "renamed", updated.Name)

	_, errMissing := store.SavePatch(context.Background(), duplicate.ID, user.Patch{})
	require.ErrorIs(t, errMissing, database.ErrNoResult)
}
