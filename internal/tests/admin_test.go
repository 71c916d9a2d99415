package tests_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/banssharp/banssharp/internal/admin"
	"github.com/banssharp/banssharp/internal/role"
	"github.com/banssharp/banssharp/internal/tests"
)

func TestAdmins(t *testing.T) {
	fixture.Reset(t.Context())

	rootRouter := testRouter(userWithRole(role.Root))

	var admins []admin.Admin
	tests.EndpointReceiver(t, rootRouter, http.MethodGet, "/api/admins", nil, http.StatusOK, &admins)
	require.Empty(t, admins)

	var created admin.Admin
	tests.EndpointReceiver(t, rootRouter, http.MethodPost, "/api/admins", map[string]any{
		"player_name":    "mod",
		"player_steamid": testAdminSteamID,
		"flags":          "a,b,c",
		"immunity":       50,
		"duration":       0,
	}, http.StatusCreated, &created)
	require.Positive(t, created.AdminID)
	require.Nil(t, created.Ends)
	require.Equal(t, []string{"a", "b", "c"}, created.FlagList())

	// Unknown group rejected
	tests.Endpoint(t, rootRouter, http.MethodPost, "/api/admins", map[string]any{
		"player_steamid": "76561198084134026",
		"group_id":       9999,
		"duration":       0,
	}, http.StatusNotFound)

	// Edit with changed flags rewrites the fan-out
	tests.Endpoint(t, rootRouter, http.MethodPost, fmt.Sprintf("/api/admins/%d", created.AdminID), map[string]any{
		"player_name":    "mod",
		"player_steamid": testAdminSteamID,
		"flags":          "z",
		"immunity":       100,
		"duration":       3600,
	}, http.StatusOK)

	tests.EndpointReceiver(t, rootRouter, http.MethodGet, "/api/admins", nil, http.StatusOK, &admins)
	require.Len(t, admins, 1)
	require.Equal(t, []string{"z"}, admins[0].FlagList())
	require.Equal(t, 100, admins[0].Immunity)
	require.NotNil(t, admins[0].Ends)

	tests.Endpoint(t, rootRouter, http.MethodDelete, fmt.Sprintf("/api/admins/%d", created.AdminID), nil, http.StatusOK)
	tests.Endpoint(t, rootRouter, http.MethodDelete, fmt.Sprintf("/api/admins/%d", created.AdminID), nil, http.StatusNotFound)
}

func TestGroups(t *testing.T) {
	fixture.Reset(t.Context())

	rootRouter := testRouter(userWithRole(role.Root))

	var created admin.Group
	tests.EndpointReceiver(t, rootRouter, http.MethodPost, "/api/groups", map[string]any{
		"name":     "moderators",
		"immunity": 10,
		"flags":    []string{"b", "c"},
	}, http.StatusCreated, &created)
	require.Positive(t, created.GroupID)

	var groups []admin.Group
	tests.EndpointReceiver(t, rootRouter, http.MethodGet, "/api/groups", nil, http.StatusOK, &groups)
	require.Len(t, groups, 1)
	require.Equal(t, "moderators", groups[0].Name)
	require.Equal(t, []string{"b", "c"}, groups[0].Flags)
	require.Empty(t, groups[0].ServerIDs)

	// Edit without flags leaves the existing fan-out alone
	tests.Endpoint(t, rootRouter, http.MethodPost, fmt.Sprintf("/api/groups/%d", created.GroupID), map[string]any{
		"name":     "senior moderators",
		"immunity": 20,
	}, http.StatusOK)

	tests.EndpointReceiver(t, rootRouter, http.MethodGet, "/api/groups", nil, http.StatusOK, &groups)
	require.Equal(t, "senior moderators", groups[0].Name)
	require.Equal(t, []string{"b", "c"}, groups[0].Flags)

	// Edit with flags replaces them
	tests.Endpoint(t, rootRouter, http.MethodPost, fmt.Sprintf("/api/groups/%d", created.GroupID), map[string]any{
		"name":     "senior moderators",
		"immunity": 20,
		"flags":    []string{"d"},
	}, http.StatusOK)

	tests.EndpointReceiver(t, rootRouter, http.MethodGet, "/api/groups", nil, http.StatusOK, &groups)
	require.Equal(t, []string{"d"}, groups[0].Flags)

	tests.Endpoint(t, rootRouter, http.MethodDelete, fmt.Sprintf("/api/groups/%d", created.GroupID), nil, http.StatusOK)
	tests.Endpoint(t, rootRouter, http.MethodDelete, fmt.Sprintf("/api/groups/%d", created.GroupID), nil, http.StatusNotFound)
}

func TestAdminPermissions(t *testing.T) {
	fixture.Reset(t.Context())

	adminRouter := testRouter(userWithRole(role.Admin))

	tests.Endpoint(t, adminRouter, http.MethodGet, "/api/admins", nil, http.StatusForbidden)
	tests.Endpoint(t, adminRouter, http.MethodGet, "/api/groups", nil, http.StatusForbidden)
	tests.Endpoint(t, adminRouter, http.MethodPost, "/api/admins", map[string]any{
		"player_steamid": testAdminSteamID,
	}, http.StatusForbidden)
}
