package steam_test

import (
	"context"
	"testing"

	"github.com/leighmacdonald/steamid/v4/steamid"
	"github.com/stretchr/testify/require"

	"github.com/banssharp/banssharp/internal/database"
	"github.com/banssharp/banssharp/internal/steam"
	"github.com/banssharp/banssharp/internal/user"
)

func testSummary(name string, avatar string) *steam.PlayerSummary {
	return &steam.PlayerSummary{
		SteamID:     testSteamID,
		PersonaName: name,
		AvatarFull:  avatar,
	}
}

func TestResolveSignup(t *testing.T) {
	users := user.NewMemoryRepository()
	resolver := steam.NewResolver(steam.Config{SignupEnabled: true}, users)
	sid := steamid.New(testSteamID)

	account, errResolve := resolver.Resolve(t.Context(), sid, testSummary("gamer", "https://avatars.example.com/full.jpg"), nil)
	require.NoError(t, errResolve)
	require.Equal(t, "gamer", account.Name)
	require.NotNil(t, account.SteamID)
	require.Equal(t, testSteamID, *account.SteamID)
	require.True(t, account.SteamVerified)
	require.NotNil(t, account.Image)
	require.Equal(t, "https://avatars.example.com/full.jpg", *account.Image)

	stored, errStored := users.GetBySteamID(t.Context(), sid)
	require.NoError(t, errStored)
	require.Equal(t, account.ID, stored.ID)
}

func TestResolveSignupNilSummary(t *testing.T) {
	users := user.NewMemoryRepository()
	resolver := steam.NewResolver(steam.Config{SignupEnabled: true}, users)
	sid := steamid.New(testSteamID)

	account, errResolve := resolver.Resolve(t.Context(), sid, nil, nil)
	require.NoError(t, errResolve)

	// Placeholder identity fields when the profile could not be fetched.
	require.Equal(t, testSteamID, account.Name)
	require.Equal(t, testSteamID, account.Email)
	require.Nil(t, account.Image)
}

func TestResolveExistingLink(t *testing.T) {
	users := user.NewMemoryRepository()
	sid := steamid.New(testSteamID)

	existing := user.New("existing@example.com", "old name")
	steamID := sid.String()
	existing.SteamID = &steamID
	customImage := "https://cdn.example.com/custom.png"
	existing.Image = &customImage
	require.NoError(t, users.Create(t.Context(), &existing))

	resolver := steam.NewResolver(steam.Config{SignupEnabled: true}, users)

	account, errResolve := resolver.Resolve(t.Context(), sid, testSummary("new name", "https://avatars.example.com/full.jpg"), nil)
	require.NoError(t, errResolve)
	require.Equal(t, existing.ID, account.ID)
	require.Equal(t, "new name", account.Name)
	require.True(t, account.SteamVerified)

	// A custom image is never clobbered by the provider avatar.
	require.NotNil(t, account.Image)
	require.Equal(t, customImage, *account.Image)
}

func TestResolveNoSessionNoSignup(t *testing.T) {
	users := user.NewMemoryRepository()
	resolver := steam.NewResolver(steam.Config{SignupEnabled: false}, users)

	_, errResolve := resolver.Resolve(t.Context(), steamid.New(testSteamID), nil, nil)
	require.ErrorIs(t, errResolve, steam.ErrNoSessionNoSignup)
}

func TestResolveLinkCurrentSession(t *testing.T) {
	users := user.NewMemoryRepository()
	sid := steamid.New(testSteamID)

	current := user.New("linked@example.com", "linker")
	require.NoError(t, users.Create(t.Context(), &current))

	resolver := steam.NewResolver(steam.Config{SignupEnabled: false}, users)

	account, errResolve := resolver.Resolve(t.Context(), sid, testSummary("persona", ""), &current)
	require.NoError(t, errResolve)
	require.Equal(t, current.ID, account.ID)
	require.NotNil(t, account.SteamID)
	require.Equal(t, testSteamID, *account.SteamID)
	require.True(t, account.SteamVerified)
}

func TestResolveLinkWinsOverSignup(t *testing.T) {
	users := user.NewMemoryRepository()
	sid := steamid.New(testSteamID)

	current := user.New("linked@example.com", "linker")
	require.NoError(t, users.Create(t.Context(), &current))

	resolver := steam.NewResolver(steam.Config{SignupEnabled: true}, users)

	// A live session must link the identity to the caller, never split off a
	// fresh account just because signup is open.
	account, errResolve := resolver.Resolve(t.Context(), sid, testSummary("persona", ""), &current)
	require.NoError(t, errResolve)
	require.Equal(t, current.ID, account.ID)
	require.NotNil(t, account.SteamID)
	require.Equal(t, testSteamID, *account.SteamID)

	linked, errLinked := users.GetBySteamID(t.Context(), sid)
	require.NoError(t, errLinked)
	require.Equal(t, current.ID, linked.ID)
}

func TestResolveSignupGenerators(t *testing.T) {
	users := user.NewMemoryRepository()
	sid := steamid.New(testSteamID)

	resolver := steam.NewResolver(steam.Config{
		SignupEnabled: true,
		GetTempEmail:  func(steamID string) string { return steamID + "@steam.local" },
		GetTempName:   func(steamID string) string { return "player-" + steamID },
	}, users)

	account, errResolve := resolver.Resolve(t.Context(), sid, testSummary("Alice", "http://x/a.jpg"), nil)
	require.NoError(t, errResolve)
	require.Equal(t, testSteamID+"@steam.local", account.Email)
	require.Equal(t, "Alice", account.Name)
	require.NotNil(t, account.Image)
	require.Equal(t, "http://x/a.jpg", *account.Image)

	// Without a profile the name generator supplies the placeholder too.
	other := user.NewMemoryRepository()
	resolver = steam.NewResolver(steam.Config{
		SignupEnabled: true,
		GetTempEmail:  func(steamID string) string { return steamID + "@steam.local" },
		GetTempName:   func(steamID string) string { return "player-" + steamID },
	}, other)

	account, errResolve = resolver.Resolve(t.Context(), sid, nil, nil)
	require.NoError(t, errResolve)
	require.Equal(t, testSteamID+"@steam.local", account.Email)
	require.Equal(t, "player-"+testSteamID, account.Name)
}

// racingStore misses the first steam id lookup, simulating a concurrent
// signup landing between the resolver's lookup and its create.
type racingStore struct {
	user.Store
	missed bool
}

func (r *racingStore) GetBySteamID(ctx context.Context, sid steamid.SteamID) (user.User, error) {
	if !r.missed {
		r.missed = true

		return user.User{}, database.ErrNoResult
	}

	return r.Store.GetBySteamID(ctx, sid)
}

func TestResolveCreateRace(t *testing.T) {
	users := user.NewMemoryRepository()
	sid := steamid.New(testSteamID)

	winner := user.New(testSteamID, "winner")
	steamID := sid.String()
	winner.SteamID = &steamID
	require.NoError(t, users.Create(t.Context(), &winner))

	resolver := steam.NewResolver(steam.Config{SignupEnabled: true}, &racingStore{Store: users})

	// The create collides with the winning row, which then serves as the
	// existing link.
	account, errResolve := resolver.Resolve(t.Context(), sid, testSummary("persona", ""), nil)
	require.NoError(t, errResolve)
	require.Equal(t, winner.ID, account.ID)
	require.True(t, account.SteamVerified)
}
