package role_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/banssharp/banssharp/internal/role"
)

func TestParse(t *testing.T) {
	require.Equal(t, role.Guest, role.Parse("guest"))
	require.Equal(t, role.User, role.Parse("user"))
	require.Equal(t, role.Admin, role.Parse("admin"))
	require.Equal(t, role.Root, role.Parse("root"))
	require.Equal(t, role.User, role.Parse("moderator"))
	require.Equal(t, role.User, role.Parse(""))
}

func TestString(t *testing.T) {
	require.Equal(t, "guest", role.Guest.String())
	require.Equal(t, "user", role.User.String())
	require.Equal(t, "admin", role.Admin.String())
	require.Equal(t, "root", role.Root.String())
	require.Equal(t, "unknown", role.Privilege(42).String())
}

func TestOrdering(t *testing.T) {
	require.True(t, role.Root > role.Admin)
	require.True(t, role.Admin > role.User)
	require.True(t, role.User > role.Guest)
}
