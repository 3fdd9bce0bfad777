package guard

import (
	"context"

	"github.com/forumx/forumx/internal/role"
	"github.com/forumx/forumx/internal/session"
)

// Well-known routes used by redirect decisions.
const (
	LoginRoute           = "/login"
	ProfileFallbackRoute = "/dashboard/profile"
)

// State classifies a guard decision.
type State int

const (
	// StateLoading means auth state is not yet determined; render a
	// placeholder and never redirect.
	StateLoading State = iota
	// StateAllowed means the guarded content may be rendered.
	StateAllowed
	// StateRedirect means navigation must be redirected to RedirectTo.
	StateRedirect
)

// Decision is the outcome of evaluating a guard against one navigation.
type Decision struct {
	State      State
	RedirectTo string
	// From preserves the originally requested route so the login flow can
	// return the user afterward. Only set for login redirects.
	From string
}

// SessionReader is the read-only session view guards evaluate against.
type SessionReader interface {
	Snapshot() session.State
}

// RoleResolver is the role view the authorization guard composes.
type RoleResolver interface {
	Resolve(ctx context.Context) string
}

// Authentication gates routes that require any signed-in identity.
type Authentication struct {
	session SessionReader
}

// NewAuthentication creates an authentication guard.
func NewAuthentication(session SessionReader) *Authentication {
	return &Authentication{session: session}
}

// Check evaluates one navigation to the route named by from.
func (g *Authentication) Check(from string) Decision {
	state := g.session.Snapshot()

	if state.Loading {
		return Decision{State: StateLoading}
	}
	if state.Identity == nil {
		return Decision{State: StateRedirect, RedirectTo: LoginRoute, From: from}
	}
	return Decision{State: StateAllowed}
}

// Authorization gates routes that additionally require the admin role. A
// non-admin resolution redirects to the profile fallback, discarding the
// attempted destination; role-lookup failure resolves to "user" and therefore
// also redirects (fail-closed).
type Authorization struct {
	session SessionReader
	roles   RoleResolver
}

// NewAuthorization creates an authorization guard.
func NewAuthorization(session SessionReader, roles RoleResolver) *Authorization {
	return &Authorization{session: session, roles: roles}
}

// Check evaluates one navigation to an admin route.
func (g *Authorization) Check(ctx context.Context, from string) Decision {
	if g.session.Snapshot().Loading {
		return Decision{State: StateLoading}
	}

	if g.roles.Resolve(ctx) != role.Admin {
		return Decision{State: StateRedirect, RedirectTo: ProfileFallbackRoute}
	}
	return Decision{State: StateAllowed}
}
