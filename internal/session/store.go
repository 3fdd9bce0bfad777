package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/forumx/forumx/internal/identity"
)

// ErrNotSignedIn is returned by operations that require an authenticated session.
var ErrNotSignedIn = errors.New("not signed in")

// refreshSkew is how close to expiry an access token may get before the token
// accessor refreshes it proactively.
const refreshSkew = 30 * time.Second

// State is a point-in-time view of the session. While Loading is true the
// Identity must not be treated as authoritative.
type State struct {
	Identity *identity.Identity
	Loading  bool
}

// Store is the process-wide source of truth for the authenticated identity.
// It is mutated only by its own operations; consumers read through accessors
// and observe transitions via Subscribe.
type Store struct {
	provider identity.Provider
	file     *FileStore

	mu       sync.RWMutex
	identity *identity.Identity
	creds    *identity.Credentials
	loading  bool

	initOnce sync.Once

	subMu sync.Mutex
	subs  []chan State
}

// NewStore creates a session store. The store starts in the loading state;
// Init must be called once at process start to determine the initial
// signed-in/signed-out state. file may be nil to disable persistence.
func NewStore(provider identity.Provider, file *FileStore) *Store {
	return &Store{
		provider: provider,
		file:     file,
		loading:  true,
	}
}

// Init restores any persisted session and publishes the first determined
// state. It is the single initialization point for the store and runs at most
// once regardless of how often it is called.
func (s *Store) Init(ctx context.Context) {
	s.initOnce.Do(func() {
		s.restore(ctx)
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
		s.publish()
	})
}

// restore loads persisted credentials and resolves them back to an identity.
// Stale or revoked credentials are discarded silently.
func (s *Store) restore(ctx context.Context) {
	if s.file == nil {
		return
	}
	persisted, err := s.file.Load()
	if err != nil || persisted == nil {
		return
	}

	creds := persisted.Credentials
	if creds.Expired(refreshSkew) {
		refreshed, err := s.provider.Refresh(ctx, creds.RefreshToken)
		if err != nil {
			slog.Debug("discarding persisted session", "error", err)
			_ = s.file.Delete()
			return
		}
		creds = *refreshed
	}

	id, err := s.provider.Lookup(ctx, creds.AccessToken)
	if err != nil {
		slog.Debug("discarding persisted session", "error", err)
		_ = s.file.Delete()
		return
	}

	s.mu.Lock()
	s.identity = id
	s.creds = &creds
	s.mu.Unlock()
	s.persist()
}

// CreateAccount registers a new email-password account and signs it in.
func (s *Store) CreateAccount(ctx context.Context, email, password string) (*identity.Identity, error) {
	return s.transition(func() (*identity.Identity, *identity.Credentials, error) {
		return s.provider.SignUp(ctx, email, password)
	})
}

// SignIn authenticates an email-password account.
func (s *Store) SignIn(ctx context.Context, email, password string) (*identity.Identity, error) {
	return s.transition(func() (*identity.Identity, *identity.Credentials, error) {
		return s.provider.SignIn(ctx, email, password)
	})
}

// SignInWithProvider authenticates through a federated provider flow.
func (s *Store) SignInWithProvider(ctx context.Context, provider string) (*identity.Identity, error) {
	return s.transition(func() (*identity.Identity, *identity.Credentials, error) {
		return s.provider.FederatedSignIn(ctx, provider)
	})
}

// transition runs one auth-state-changing operation. Loading is raised
// synchronously before the provider round-trip so no caller can observe a
// stale identity mid-flight; only the completion path installs the result.
func (s *Store) transition(op func() (*identity.Identity, *identity.Credentials, error)) (*identity.Identity, error) {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()
	s.publish()

	id, creds, err := op()

	s.mu.Lock()
	s.loading = false
	if err == nil {
		s.identity = id
		s.creds = creds
	}
	s.mu.Unlock()

	if err != nil {
		s.publish()
		return nil, err
	}

	s.persist()
	s.publish()
	return id, nil
}

// SignOut revokes the session and clears the store. Local state is cleared
// even when the provider-side revocation fails; the revocation error is still
// surfaced to the caller.
func (s *Store) SignOut(ctx context.Context) error {
	s.mu.Lock()
	s.loading = true
	creds := s.creds
	s.mu.Unlock()
	s.publish()

	var err error
	if creds != nil {
		err = s.provider.SignOut(ctx, creds.RefreshToken)
	}

	s.clear()
	return err
}

// ForceSignOut clears the session without a provider round-trip. Used when a
// token refresh is rejected and the session cannot be recovered.
func (s *Store) ForceSignOut() {
	slog.Warn("session force signed out")
	s.clear()
}

func (s *Store) clear() {
	s.mu.Lock()
	s.identity = nil
	s.creds = nil
	s.loading = false
	s.mu.Unlock()

	if s.file != nil {
		_ = s.file.Delete()
	}
	s.publish()
}

// UpdateProfile changes profile fields on the current identity.
func (s *Store) UpdateProfile(ctx context.Context, update identity.ProfileUpdate) (*identity.Identity, error) {
	token, err := s.Token(ctx, false)
	if err != nil {
		return nil, err
	}

	id, err := s.provider.UpdateProfile(ctx, token, update)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.identity = id
	s.mu.Unlock()

	s.persist()
	s.publish()
	return id, nil
}

// Token returns a valid access token for the current identity, refreshing it
// when expired or when force is true. A refresh rejected by the provider
// clears the session.
func (s *Store) Token(ctx context.Context, force bool) (string, error) {
	s.mu.RLock()
	creds := s.creds
	s.mu.RUnlock()

	if creds == nil {
		return "", ErrNotSignedIn
	}

	if !force && !creds.Expired(refreshSkew) {
		return creds.AccessToken, nil
	}

	refreshed, err := s.provider.Refresh(ctx, creds.RefreshToken)
	if err != nil {
		if errors.Is(err, identity.ErrUnauthorized) || errors.Is(err, identity.ErrInvalidCredential) {
			s.ForceSignOut()
		}
		return "", err
	}

	s.mu.Lock()
	s.creds = refreshed
	s.mu.Unlock()
	s.persist()

	return refreshed.AccessToken, nil
}

// Snapshot returns the current session state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return State{Identity: s.identity, Loading: s.loading}
}

// Identity returns the current identity, or nil when signed out.
func (s *Store) Identity() *identity.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity
}

// Loading reports whether an auth transition is in flight.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Authenticated reports whether a signed-in identity is present.
func (s *Store) Authenticated() bool {
	return s.Identity() != nil
}

// Subscribe registers an observer of session transitions. The returned channel
// receives the state after every transition; slow observers miss intermediate
// states rather than blocking the store.
func (s *Store) Subscribe() <-chan State {
	ch := make(chan State, 8)
	s.subMu.Lock()
	s.subs = append(s.subs, ch)
	s.subMu.Unlock()
	return ch
}

func (s *Store) publish() {
	state := s.Snapshot()
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- state:
		default:
		}
	}
}

func (s *Store) persist() {
	if s.file == nil {
		return
	}
	s.mu.RLock()
	id, creds := s.identity, s.creds
	s.mu.RUnlock()
	if id == nil || creds == nil {
		return
	}
	if err := s.file.Save(&PersistedSession{Identity: *id, Credentials: *creds}); err != nil {
		slog.Warn("failed to persist session", "error", err)
	}
}
