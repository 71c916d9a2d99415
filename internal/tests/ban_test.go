package tests_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/banssharp/banssharp/internal/admin"
	"github.com/banssharp/banssharp/internal/ban"
	"github.com/banssharp/banssharp/internal/role"
	"github.com/banssharp/banssharp/internal/servers"
	"github.com/banssharp/banssharp/internal/tests"
)

const testAdminSteamID = "76561198084134025"

func createTestAdmin(t *testing.T, router http.Handler) admin.Admin {
	t.Helper()

	var created admin.Admin
	tests.EndpointReceiver(t, router, http.MethodPost, "/api/admins", map[string]any{
		"player_name":    "mod",
		"player_steamid": testAdminSteamID,
		"flags":          "z",
		"immunity":       100,
		"duration":       0,
	}, http.StatusCreated, &created)

	return created
}

func TestBans(t *testing.T) {
	fixture.Reset(t.Context())

	rootRouter := testRouter(userWithRole(role.Root))
	adminRouter := testRouter(userWithRole(role.Admin))
	grantedAdmin := createTestAdmin(t, rootRouter)

	var bans []ban.Ban
	tests.EndpointReceiver(t, adminRouter, http.MethodGet, "/api/bans", nil, http.StatusOK, &bans)
	require.Empty(t, bans)

	// The issuing admin must exist
	tests.Endpoint(t, adminRouter, http.MethodPost, "/api/bans", map[string]any{
		"player_steamid": "76561198084134027",
		"admin_steamid":  "76561198000000000",
		"admin_name":     "nobody",
		"reason":         "cheating",
		"duration":       3600,
	}, http.StatusNotFound)

	var created ban.Ban
	tests.EndpointReceiver(t, adminRouter, http.MethodPost, "/api/bans", map[string]any{
		"player_name":    "cheater",
		"player_steamid": "76561198084134027",
		"admin_steamid":  testAdminSteamID,
		"admin_name":     "mod",
		"reason":         "cheating",
		"duration":       3600,
	}, http.StatusCreated, &created)
	require.Positive(t, created.BanID)
	require.Equal(t, ban.StatusActive, created.Status)
	require.NotNil(t, created.Ends)

	// Zero duration means permanent, no expiry
	var permanent ban.Ban
	tests.EndpointReceiver(t, adminRouter, http.MethodPost, "/api/bans", map[string]any{
		"player_steamid": "76561198084134028",
		"admin_steamid":  testAdminSteamID,
		"admin_name":     "mod",
		"reason":         "spam",
		"duration":       0,
	}, http.StatusCreated, &permanent)
	require.Nil(t, permanent.Ends)

	// Edit
	tests.Endpoint(t, adminRouter, http.MethodPost, fmt.Sprintf("/api/bans/%d", created.BanID), map[string]any{
		"player_steamid": "76561198084134027",
		"reason":         "aimbot",
		"duration":       7200,
	}, http.StatusOK)

	// Unban flips status and attaches the audit row
	tests.Endpoint(t, adminRouter, http.MethodPost, fmt.Sprintf("/api/bans/%d/unban", created.BanID), map[string]any{
		"admin_id": grantedAdmin.AdminID,
		"reason":   "appealed",
	}, http.StatusOK)

	tests.EndpointReceiver(t, adminRouter, http.MethodGet, "/api/bans", nil, http.StatusOK, &bans)
	require.Len(t, bans, 2)

	for _, row := range bans {
		if row.BanID != created.BanID {
			continue
		}

		require.Equal(t, ban.StatusUnbanned, row.Status)
		require.NotNil(t, row.UnbanID)
		require.Equal(t, "aimbot", row.Reason)
	}

	// Unban of a missing ban
	tests.Endpoint(t, adminRouter, http.MethodPost, "/api/bans/99999/unban", map[string]any{
		"admin_id": grantedAdmin.AdminID,
		"reason":   "appealed",
	}, http.StatusNotFound)
}

func TestBansFiltered(t *testing.T) {
	fixture.Reset(t.Context())

	rootRouter := testRouter(userWithRole(role.Root))
	adminRouter := testRouter(userWithRole(role.Admin))
	createTestAdmin(t, rootRouter)

	var server servers.Server
	tests.EndpointReceiver(t, rootRouter, http.MethodPost, "/api/servers", map[string]any{
		"hostname": "filter target",
		"address":  "10.0.0.1:27015",
	}, http.StatusCreated, &server)

	for _, steamID := range []string{"76561198084134027", "76561198084134028"} {
		payload := map[string]any{
			"player_steamid": steamID,
			"admin_steamid":  testAdminSteamID,
			"admin_name":     "mod",
			"reason":         "cheating",
			"duration":       3600,
		}
		if steamID == "76561198084134028" {
			payload["server_id"] = server.ServerID
		}

		tests.Endpoint(t, adminRouter, http.MethodPost, "/api/bans", payload, http.StatusCreated)
	}

	var bans []ban.Ban
	tests.EndpointReceiver(t, adminRouter, http.MethodGet, "/api/bans?steam_id=76561198084134027", nil, http.StatusOK, &bans)
	require.Len(t, bans, 1)
	require.Equal(t, "76561198084134027", bans[0].PlayerSteamID)

	tests.EndpointReceiver(t, adminRouter, http.MethodGet,
		fmt.Sprintf("/api/bans?server_id=%d", server.ServerID), nil, http.StatusOK, &bans)
	require.Len(t, bans, 1)
	require.Equal(t, "76561198084134028", bans[0].PlayerSteamID)

	tests.EndpointReceiver(t, adminRouter, http.MethodGet, "/api/bans?steam_id=76561198000000009", nil, http.StatusOK, &bans)
	require.Empty(t, bans)
}

func TestMutes(t *testing.T) {
	fixture.Reset(t.Context())

	rootRouter := testRouter(userWithRole(role.Root))
	adminRouter := testRouter(userWithRole(role.Admin))
	grantedAdmin := createTestAdmin(t, rootRouter)

	// Unknown mute type rejected
	tests.Endpoint(t, adminRouter, http.MethodPost, "/api/mutes", map[string]any{
		"player_steamid": "76561198084134027",
		"admin_steamid":  testAdminSteamID,
		"admin_name":     "mod",
		"reason":         "mic spam",
		"duration":       600,
		"type":           "SHOUT",
	}, http.StatusBadRequest)

	var created ban.Mute
	tests.EndpointReceiver(t, adminRouter, http.MethodPost, "/api/mutes", map[string]any{
		"player_steamid": "76561198084134027",
		"admin_steamid":  testAdminSteamID,
		"admin_name":     "mod",
		"reason":         "mic spam",
		"duration":       600,
		"type":           "GAG",
	}, http.StatusCreated, &created)
	require.Equal(t, ban.MuteTypeGag, created.Type)
	require.Equal(t, ban.StatusActive, created.Status)

	tests.Endpoint(t, adminRouter, http.MethodPost, fmt.Sprintf("/api/mutes/%d/unmute", created.MuteID), map[string]any{
		"admin_id": grantedAdmin.AdminID,
		"reason":   "served",
	}, http.StatusOK)

	var mutes []ban.Mute
	tests.EndpointReceiver(t, adminRouter, http.MethodGet, "/api/mutes", nil, http.StatusOK, &mutes)
	require.Len(t, mutes, 1)
	require.Equal(t, ban.StatusUnmuted, mutes[0].Status)
	require.NotNil(t, mutes[0].UnmuteID)
}

func TestWarns(t *testing.T) {
	fixture.Reset(t.Context())

	rootRouter := testRouter(userWithRole(role.Root))
	adminRouter := testRouter(userWithRole(role.Admin))
	createTestAdmin(t, rootRouter)

	var created ban.Warn
	tests.EndpointReceiver(t, adminRouter, http.MethodPost, "/api/warns", map[string]any{
		"player_steamid": "76561198084134027",
		"admin_steamid":  testAdminSteamID,
		"admin_name":     "mod",
		"reason":         "language",
		"duration":       0,
	}, http.StatusCreated, &created)

	// Warnings always expire, even at zero duration
	require.False(t, created.Ends.IsZero())

	tests.Endpoint(t, adminRouter, http.MethodPost, fmt.Sprintf("/api/warns/%d", created.WarnID), map[string]any{
		"player_steamid": "76561198084134027",
		"reason":         "repeated language",
		"duration":       3600,
	}, http.StatusOK)

	var warns []ban.Warn
	tests.EndpointReceiver(t, adminRouter, http.MethodGet, "/api/warns", nil, http.StatusOK, &warns)
	require.Len(t, warns, 1)
	require.Equal(t, "repeated language", warns[0].Reason)

	tests.Endpoint(t, adminRouter, http.MethodDelete, fmt.Sprintf("/api/warns/%d", created.WarnID), nil, http.StatusOK)
	tests.Endpoint(t, adminRouter, http.MethodDelete, fmt.Sprintf("/api/warns/%d", created.WarnID), nil, http.StatusNotFound)
}
