// Package guard decides whether the current session may enter a route.
package guard

import "github.com/yndnr/hostdeck-go/internal/core/session"

// Well-known destinations.
const (
	PathSignIn    = "/login"
	PathDashboard = "/dashboard"
)

// Access is the protection level of a route.
type Access int

const (
	// Public routes are always admitted.
	Public Access = iota
	// Authenticated routes require a signed-in session.
	Authenticated
	// Admin routes require a signed-in admin.
	Admin
)

func (a Access) String() string {
	switch a {
	case Public:
		return "public"
	case Authenticated:
		return "authenticated"
	case Admin:
		return "admin"
	default:
		return "unknown"
	}
}

// Route is a navigable destination.
type Route struct {
	Path   string
	Access Access
}

// Decision is the outcome of Admit.
type Decision struct {
	Allow bool
	// Redirect is the destination when Allow is false.
	Redirect string
	// From is the originally requested path, set when redirecting to
	// sign-in so the user can be sent back after signing in.
	From string
}

// Admit decides whether st may enter target. It never mutates state.
func Admit(st session.State, target Route) Decision {
	switch target.Access {
	case Public:
		return Decision{Allow: true}
	case Authenticated, Admin:
	default:
		return Decision{Redirect: PathSignIn, From: target.Path}
	}

	if !st.IsAuthenticated {
		return Decision{Redirect: PathSignIn, From: target.Path}
	}
	if target.Access == Admin && !st.IsAdmin() {
		return Decision{Redirect: PathDashboard}
	}
	return Decision{Allow: true}
}

// Guard evaluates routes against a live session.
type Guard struct {
	snapshot func() session.State
}

// New creates a guard reading the session from store.
func New(store *session.Store) *Guard {
	return &Guard{snapshot: store.Snapshot}
}

// Admit decides using the current session snapshot.
func (g *Guard) Admit(target Route) Decision {
	return Admit(g.snapshot(), target)
}
