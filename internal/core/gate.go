package core

import "desafioconcurso-go/internal/auth"

// Route is the top-level surface the navigation gate selects.
type Route int

const (
	// RouteResolving shows the splash surface while the initial auth state is
	// still unknown.
	RouteResolving Route = iota
	// RoutePublic exposes only sign-in and sign-up.
	RoutePublic
	// RouteAuthenticated exposes the full application surface.
	RouteAuthenticated
)

func (r Route) String() string {
	switch r {
	case RouteResolving:
		return "resolving"
	case RoutePublic:
		return "public"
	case RouteAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// NavigationGate derives the visible surface from session state. It keeps no
// state of its own: the route is a pure function of the store, so identity
// transitions in either direction switch the surface without any cleanup here.
type NavigationGate struct {
	session *SessionStore
}

func NewNavigationGate(session *SessionStore) *NavigationGate {
	return &NavigationGate{session: session}
}

// Route returns the surface for the current session state. Authenticated
// identities without a profile document still get the authenticated surface.
func (g *NavigationGate) Route() Route {
	if g.session.Resolving() {
		return RouteResolving
	}
	if g.session.Identity() == nil {
		return RoutePublic
	}
	return RouteAuthenticated
}

// Watch invokes fn with the current route and again after every identity
// transition. The returned function removes the registration.
func (g *NavigationGate) Watch(fn func(Route)) (remove func()) {
	return g.session.OnIdentityChange(func(_ *auth.Identity) {
		fn(g.Route())
	})
}
