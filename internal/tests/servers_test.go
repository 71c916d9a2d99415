package tests_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/banssharp/banssharp/internal/role"
	"github.com/banssharp/banssharp/internal/servers"
	"github.com/banssharp/banssharp/internal/tests"
	"github.com/banssharp/banssharp/pkg/stringutil"
)

func TestServers(t *testing.T) {
	fixture.Reset(t.Context())

	rootRouter := testRouter(userWithRole(role.Root))
	adminRouter := testRouter(userWithRole(role.Admin))

	// Empty list still includes the synthetic ALL row
	var options []servers.Option
	tests.EndpointReceiver(t, adminRouter, http.MethodGet, "/api/servers", nil, http.StatusOK, &options)
	require.Len(t, options, 1)
	require.Nil(t, options[0].ID)
	require.Equal(t, "ALL", options[0].Hostname)

	hostname := stringutil.SecureRandomString(10)
	newServer := map[string]any{
		"hostname":      hostname,
		"rcon_password": stringutil.SecureRandomString(8),
		"address":       "10.0.0.1:27015",
	}

	var created servers.Server
	tests.EndpointReceiver(t, rootRouter, http.MethodPost, "/api/servers", newServer, http.StatusCreated, &created)
	require.Positive(t, created.ServerID)
	require.NotNil(t, created.Hostname)
	require.Equal(t, hostname, *created.Hostname)
	require.Equal(t, "10.0.0.1:27015", created.Address)

	tests.EndpointReceiver(t, adminRouter, http.MethodGet, "/api/servers", nil, http.StatusOK, &options)
	require.Len(t, options, 2)
	require.Equal(t, hostname, options[1].Hostname)

	// Update
	updated := map[string]any{
		"hostname": "renamed",
		"address":  created.Address,
	}

	var edited servers.Server
	tests.EndpointReceiver(t, rootRouter, http.MethodPost,
		fmt.Sprintf("/api/servers/%d", created.ServerID), updated, http.StatusOK, &edited)
	require.NotNil(t, edited.Hostname)
	require.Equal(t, "renamed", *edited.Hostname)

	// Missing address is rejected
	tests.Endpoint(t, rootRouter, http.MethodPost, "/api/servers",
		map[string]any{"hostname": "nope"}, http.StatusBadRequest)

	// Delete
	tests.Endpoint(t, rootRouter, http.MethodDelete,
		fmt.Sprintf("/api/servers/%d", created.ServerID), nil, http.StatusOK)
	tests.Endpoint(t, rootRouter, http.MethodDelete,
		fmt.Sprintf("/api/servers/%d", created.ServerID), nil, http.StatusNotFound)
}

func TestServersPermissions(t *testing.T) {
	fixture.Reset(t.Context())

	userRouter := testRouter(userWithRole(role.User))
	adminRouter := testRouter(userWithRole(role.Admin))

	// Regular users see nothing
	tests.Endpoint(t, userRouter, http.MethodGet, "/api/servers", nil, http.StatusForbidden)

	// Admins may read but not write
	tests.Endpoint(t, adminRouter, http.MethodGet, "/api/servers", nil, http.StatusOK)
	tests.Endpoint(t, adminRouter, http.MethodPost, "/api/servers",
		map[string]any{"address": "10.0.0.2:27015"}, http.StatusForbidden)
	tests.Endpoint(t, adminRouter, http.MethodDelete, "/api/servers/1", nil, http.StatusForbidden)
}
