//nolint:gochecknoglobals
package tests_test

import (
	"net/http"
	"os"
	"testing"

	"github.com/banssharp/banssharp/internal/admin"
	"github.com/banssharp/banssharp/internal/ban"
	"github.com/banssharp/banssharp/internal/role"
	"github.com/banssharp/banssharp/internal/servers"
	"github.com/banssharp/banssharp/internal/tests"
	"github.com/banssharp/banssharp/internal/user"
)

var fixture *tests.Fixture

func TestMain(m *testing.M) {
	fixture = tests.NewFixture()

	code := m.Run()

	fixture.Close()
	os.Exit(code)
}

func userWithRole(level role.Privilege) user.User {
	account := user.New("test@example.com", "tester")
	account.Role = level.String()

	return account
}

// testRouter wires every CRUD handler behind a static authenticator resolving
// the given profile.
func testRouter(profile user.User) http.Handler {
	router := fixture.CreateRouter()
	auth := &tests.StaticAuthenticator{Profile: profile}

	servers.NewServersHandler(router, servers.NewServers(servers.NewRepository(fixture.Database)), auth)
	ban.NewBanHandler(router, ban.NewBans(ban.NewRepository(fixture.Database)), auth)
	admin.NewAdminHandler(router, admin.NewAdmins(admin.NewRepository(fixture.Database)), auth)

	return router
}
