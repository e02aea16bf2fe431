// Package router maps commands to application routes and decides what a
// route may show for a given session state.
package router

import (
	"fmt"
	"sort"

	"github.com/wisdomie/foodlens/internal/session"
)

type Route string

const (
	Login   Route = "/login"
	Home    Route = "/"
	Chat    Route = "/chat"
	History Route = "/history"
	Profile Route = "/profile"
)

// Annotation is the cobra annotation key a command uses to declare its route.
const Annotation = "foodlens.route"

var protected = map[Route]bool{
	Chat:    true,
	History: true,
	Profile: true,
}

func Routes() []Route {
	out := []Route{Login, Home}
	for r := range protected {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func Parse(s string) (Route, error) {
	r := Route(s)
	if r == Login || r == Home || protected[r] {
		return r, nil
	}
	return "", fmt.Errorf("unknown route %q", s)
}

func (r Route) Protected() bool {
	return protected[r]
}

type Decision int

const (
	Render Decision = iota
	// Placeholder is shown while the session is still resolving.
	Placeholder
	RedirectToLogin
	// RedirectHome sends a signed-in user away from the login page.
	RedirectHome
)

func (d Decision) String() string {
	switch d {
	case Render:
		return "render"
	case Placeholder:
		return "placeholder"
	case RedirectToLogin:
		return "redirect-login"
	case RedirectHome:
		return "redirect-home"
	default:
		return fmt.Sprintf("decision(%d)", int(d))
	}
}

// Decide gates route on the session guard. The requested route is not
// remembered across a redirect; after signing in the user starts at Home.
func Decide(route Route, guard session.GuardState) Decision {
	switch {
	case route == Login && guard == session.Authenticated:
		return RedirectHome
	case !route.Protected():
		return Render
	case guard == session.Resolving:
		return Placeholder
	case guard == session.Authenticated:
		return Render
	default:
		return RedirectToLogin
	}
}

// AfterLogin is where a successful login lands.
func AfterLogin() Route {
	return Home
}
