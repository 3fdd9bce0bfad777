package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forumx/forumx/internal/api"
	"github.com/forumx/forumx/internal/session"
)

// fakeTokens is a TokenSource with scripted tokens and call counting.
type fakeTokens struct {
	mu            sync.Mutex
	authenticated bool
	token         string
	refreshed     string
	refreshErr    error
	refreshCalls  int
	signedOut     bool
}

func (f *fakeTokens) Authenticated() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.authenticated
}

func (f *fakeTokens) Token(_ context.Context, force bool) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.authenticated {
		return "", session.ErrNotSignedIn
	}
	if force {
		f.refreshCalls++
		if f.refreshErr != nil {
			return "", f.refreshErr
		}
		return f.refreshed, nil
	}
	return f.token, nil
}

func (f *fakeTokens) ForceSignOut() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signedOut = true
	f.authenticated = false
}

func newClient(t *testing.T, handler http.HandlerFunc, tokens *fakeTokens) (*api.Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return api.NewClient(srv.URL, tokens, 5*time.Second), srv
}

func TestDo_AttachesBearerAndRequestID(t *testing.T) {
	tokens := &fakeTokens{authenticated: true, token: "tok-1"}

	var gotAuth, gotRequestID string
	client, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-ID")
		_ = json.NewEncoder(w).Encode(map[string]string{"ok": "yes"})
	}, tokens)

	var out map[string]string
	err := client.Get(context.Background(), "/posts", nil, &out)

	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-1", gotAuth)
	assert.NotEmpty(t, gotRequestID)
	assert.Equal(t, "yes", out["ok"])
}

func TestDo_UnauthenticatedWithoutIdentity(t *testing.T) {
	tokens := &fakeTokens{authenticated: false}

	var gotAuth string
	var hadHeader bool
	client, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, hadHeader = r.Header["Authorization"]
		_ = json.NewEncoder(w).Encode([]string{})
	}, tokens)

	var out []string
	err := client.Get(context.Background(), "/posts", nil, &out)

	require.NoError(t, err)
	assert.Empty(t, gotAuth)
	assert.False(t, hadHeader)
}

func TestDo_SingleRefreshAndRetryOn401(t *testing.T) {
	tokens := &fakeTokens{authenticated: true, token: "stale", refreshed: "fresh"}

	var requests int
	var retryAuth string
	client, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		requests++
		if r.Header.Get("Authorization") == "Bearer stale" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		retryAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(map[string]string{"ok": "yes"})
	}, tokens)

	var out map[string]string
	err := client.Get(context.Background(), "/posts", nil, &out)

	require.NoError(t, err)
	assert.Equal(t, 2, requests, "original request plus exactly one retry")
	assert.Equal(t, 1, tokens.refreshCalls, "exactly one forced refresh")
	assert.Equal(t, "Bearer fresh", retryAuth)
	assert.False(t, tokens.signedOut)
}

func TestDo_RetryAlso401ForcesSignOut(t *testing.T) {
	tokens := &fakeTokens{authenticated: true, token: "stale", refreshed: "still-bad"}

	var requests int
	client, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(http.StatusUnauthorized)
	}, tokens)

	err := client.Get(context.Background(), "/posts", nil, nil)

	assert.ErrorIs(t, err, api.ErrSessionExpired)
	assert.Equal(t, 2, requests, "must not loop beyond one retry")
	assert.Equal(t, 1, tokens.refreshCalls)
	assert.True(t, tokens.signedOut)
}

func TestDo_RefreshFailureForcesSignOut(t *testing.T) {
	tokens := &fakeTokens{authenticated: true, token: "stale", refreshErr: session.ErrNotSignedIn}

	var requests int
	client, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(http.StatusUnauthorized)
	}, tokens)

	err := client.Get(context.Background(), "/posts", nil, nil)

	assert.ErrorIs(t, err, api.ErrSessionExpired)
	assert.Equal(t, 1, requests, "no retry without a fresh token")
	assert.True(t, tokens.signedOut)
}

func TestDo_401WithoutIdentityIsPlainError(t *testing.T) {
	tokens := &fakeTokens{authenticated: false}

	var requests int
	client, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"code": "UNAUTHORIZED", "message": "Sign in"},
		})
	}, tokens)

	err := client.Get(context.Background(), "/posts", nil, nil)

	require.Error(t, err)
	assert.NotErrorIs(t, err, api.ErrSessionExpired)
	assert.Equal(t, 1, requests, "no refresh without an identity")
	assert.Equal(t, 0, tokens.refreshCalls)

	var apiErr *api.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "UNAUTHORIZED", apiErr.Code)
}

func TestDo_ReplaysBodyOnRetry(t *testing.T) {
	tokens := &fakeTokens{authenticated: true, token: "stale", refreshed: "fresh"}

	var bodies []string
	client, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		bodies = append(bodies, body["title"])
		if r.Header.Get("Authorization") == "Bearer stale" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(body)
	}, tokens)

	err := client.Post(context.Background(), "/posts", map[string]string{"title": "hello"}, nil)

	require.NoError(t, err)
	require.Len(t, bodies, 2)
	assert.Equal(t, "hello", bodies[0])
	assert.Equal(t, "hello", bodies[1], "retry must carry the original body")
}

func TestDo_DecodesAPIError(t *testing.T) {
	tokens := &fakeTokens{authenticated: false}

	client, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"code": "NOT_FOUND", "message": "Post not found"},
		})
	}, tokens)

	err := client.Get(context.Background(), "/posts/missing", nil, nil)

	var apiErr *api.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "NOT_FOUND", apiErr.Code)
	assert.Equal(t, "Post not found", apiErr.Message)
}
