// Package guard decides, for one navigation, whether a page renders, redirects to
// login, shows the not-authorized view or waits for the user profile to resolve.
// Evaluate is pure: it reads a session snapshot and never performs I/O.
package guard

import (
	"slices"
	"strings"

	domainauth "github.com/educonnect/educonnect-web/internal/domain/auth"
)

// AccessKind classifies a route's access requirement.
type AccessKind int

const (
	// Public routes render for everyone.
	Public AccessKind = iota
	// AuthenticatedAny routes require a resolved session of any role.
	AuthenticatedAny
	// AuthenticatedRole routes require a resolved session whose role is listed.
	AuthenticatedRole
)

func (k AccessKind) String() string {
	switch k {
	case AuthenticatedAny:
		return "authenticated"
	case AuthenticatedRole:
		return "role"
	default:
		return "public"
	}
}

// Requirement is a route's access requirement.
type Requirement struct {
	Kind  AccessKind
	Roles []domainauth.Role
}

// PublicAccess is the requirement of public routes.
func PublicAccess() Requirement { return Requirement{Kind: Public} }

// AnyUser is the requirement of routes open to every signed-in user.
func AnyUser() Requirement { return Requirement{Kind: AuthenticatedAny} }

// Roles is the requirement of routes restricted to the given roles.
func Roles(roles ...domainauth.Role) Requirement {
	return Requirement{Kind: AuthenticatedRole, Roles: roles}
}

// Allows reports whether role satisfies the requirement's role list.
// The unknown role never satisfies a role-restricted requirement.
func (r Requirement) Allows(role domainauth.Role) bool {
	if r.Kind != AuthenticatedRole {
		return true
	}
	if !role.IsKnown() {
		return false
	}
	return slices.Contains(r.Roles, role)
}

// Outcome is the terminal state of one evaluation.
type Outcome int

const (
	Render Outcome = iota
	Redirect
	Unauthorized
	Loading
)

func (o Outcome) String() string {
	switch o {
	case Redirect:
		return "redirect"
	case Unauthorized:
		return "unauthorized"
	case Loading:
		return "loading"
	default:
		return "render"
	}
}

// Shell selects the page chrome around rendered content.
type Shell int

const (
	// ShellNone renders the bare content inside the public layout.
	ShellNone Shell = iota
	// ShellDashboard wraps content in the role-specific sidebar layout.
	ShellDashboard
)

// LoginPath is where unauthenticated navigations are sent.
const LoginPath = "/login"

// Input is everything one evaluation looks at.
type Input struct {
	Session     domainauth.Session
	Requirement Requirement
	Path        string
}

// Decision is the result of one evaluation.
type Decision struct {
	Outcome Outcome
	// RedirectTo is set for Redirect.
	RedirectTo string
	// From is the originally requested path, preserved across the login redirect.
	From string
	// Shell is set for Render.
	Shell Shell
}

// Evaluate maps a session snapshot and a route requirement to a decision.
func Evaluate(in Input) Decision {
	if in.Requirement.Kind == Public {
		return Decision{Outcome: Render, Shell: ShellFor(in.Path)}
	}

	if !in.Session.HasToken() {
		return Decision{Outcome: Redirect, RedirectTo: LoginPath, From: in.Path}
	}

	if in.Session.User == nil {
		return Decision{Outcome: Loading}
	}

	if !in.Requirement.Allows(in.Session.User.Role) {
		return Decision{Outcome: Unauthorized}
	}

	return Decision{Outcome: Render, Shell: ShellFor(in.Path)}
}

// ShellFor returns ShellDashboard for /dashboard and everything below it.
func ShellFor(path string) Shell {
	if path == DashboardPath || strings.HasPrefix(path, DashboardPath+"/") {
		return ShellDashboard
	}
	return ShellNone
}
