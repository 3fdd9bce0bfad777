package role

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/forumx/forumx/internal/api"
	"github.com/forumx/forumx/internal/identity"
)

// Role values resolved from the backend.
const (
	Admin = "admin"
	User  = "user"
)

// SessionReader is the read-only view of the session store the resolver needs.
type SessionReader interface {
	Identity() *identity.Identity
}

type cacheEntry struct {
	role      string
	expiresAt time.Time
}

// Resolver derives the coarse role for the current identity from the backend
// user record, cached per email with a TTL. Role lookup is best-effort: any
// failure resolves to "user" and is never surfaced to the caller.
type Resolver struct {
	client  *api.Client
	session SessionReader
	ttl     time.Duration

	mu      sync.RWMutex
	entries map[string]cacheEntry
}

// NewResolver creates a resolver with the given cache TTL.
func NewResolver(client *api.Client, session SessionReader, ttl time.Duration) *Resolver {
	return &Resolver{
		client:  client,
		session: session,
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
	}
}

// Resolve returns the role of the current identity. An absent identity
// resolves to "user" immediately, without a network call.
func (r *Resolver) Resolve(ctx context.Context) string {
	id := r.session.Identity()
	if id == nil || id.Email == "" {
		return User
	}

	if role, ok := r.cached(id.Email); ok {
		return role
	}

	role := r.fetch(ctx, id.Email)
	r.store(id.Email, role)
	return role
}

// IsAdmin reports whether the current identity resolves to the admin role.
func (r *Resolver) IsAdmin(ctx context.Context) bool {
	return r.Resolve(ctx) == Admin
}

// IsUser reports whether the current identity resolves to the user role.
func (r *Resolver) IsUser(ctx context.Context) bool {
	return r.Resolve(ctx) == User
}

// Invalidate drops the cached role for an email. Called after sign-out and
// after admin actions that change a user's role.
func (r *Resolver) Invalidate(email string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, email)
}

// fetch reads the user record and extracts its role field. Failures and
// missing fields default to "user"; the default is cached like any other
// result so a flapping backend is not hammered.
func (r *Resolver) fetch(ctx context.Context, email string) string {
	var record struct {
		Role string `json:"role"`
	}
	if err := r.client.Get(ctx, "/users/"+email, nil, &record); err != nil {
		slog.Debug("role lookup failed, defaulting to user", "email", email, "error", err)
		return User
	}
	if record.Role == "" {
		return User
	}
	return record.Role
}

func (r *Resolver) cached(email string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.entries[email]
	if !ok || time.Now().After(entry.expiresAt) {
		return "", false
	}
	return entry.role, true
}

func (r *Resolver) store(email, role string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[email] = cacheEntry{
		role:      role,
		expiresAt: time.Now().Add(r.ttl),
	}
}
