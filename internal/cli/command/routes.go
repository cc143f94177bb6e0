package command

import (
	"github.com/urfave/cli/v2"

	"github.com/yndnr/hostdeck-go/internal/core/domain"
	"github.com/yndnr/hostdeck-go/internal/core/guard"
)

// Console routes. Each command bound to a route is admitted by the guard
// before its action runs.
var (
	routeSignIn   = guard.Route{Path: guard.PathSignIn, Access: guard.Public}
	routeRegister = guard.Route{Path: "/register", Access: guard.Public}
	routeHome     = guard.Route{Path: guard.PathDashboard, Access: guard.Authenticated}
	routeProfile  = guard.Route{Path: "/profile", Access: guard.Authenticated}
	routeServers  = guard.Route{Path: "/servers", Access: guard.Authenticated}
	routeUsers    = guard.Route{Path: "/admin/users", Access: guard.Admin}
)

// requireAccess returns a Before hook that admits c only when the guard
// allows route.
func requireAccess(route guard.Route) cli.BeforeFunc {
	return func(c *cli.Context) error {
		rt, err := ensureRuntime(c)
		if err != nil {
			return err
		}
		return admit(rt, route)
	}
}

// admit turns a guard redirect into an error naming where to go next.
func admit(rt *Runtime, route guard.Route) error {
	d := rt.Guard.Admit(route)
	if d.Allow {
		return nil
	}
	rt.Logger.Debug("route denied", "path", route.Path, "redirect", d.Redirect)

	if d.Redirect == guard.PathSignIn {
		return domain.ErrNotSignedIn.WithDetails("sign in to open " + d.From + ": hostdeck-cli login")
	}
	return domain.ErrAdminRequired.WithDetails(route.Path + " is for administrators; try hostdeck-cli whoami")
}
