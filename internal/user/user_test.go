package user_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forumx/forumx/internal/api"
	"github.com/forumx/forumx/internal/user"
)

type staticTokens struct{}

func (staticTokens) Authenticated() bool                         { return true }
func (staticTokens) Token(context.Context, bool) (string, error) { return "tok", nil }
func (staticTokens) ForceSignOut()                               {}

func setupService(t *testing.T, handler http.Handler) *user.Service {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return user.NewService(api.NewClient(srv.URL, staticTokens{}, 5*time.Second))
}

func TestRegister_WritesDefaultRecord(t *testing.T) {
	var body user.User

	mux := http.NewServeMux()
	mux.HandleFunc("POST /users", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.WriteHeader(http.StatusCreated)
	})

	svc := setupService(t, mux)

	u, err := svc.Register(context.Background(), "Alice", "alice@example.com", "https://img.example/a.png")

	require.NoError(t, err)
	assert.Equal(t, "user", body.Role)
	assert.Equal(t, "bronze", body.Badge)
	assert.False(t, body.Membership)
	assert.Equal(t, "alice@example.com", body.Email)
	assert.NotEmpty(t, body.CreatedAt)
	assert.Equal(t, "Alice", u.Name)
}

func TestGet_ReturnsRecord(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /users/{email}", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(user.User{
			Email:      "alice@example.com",
			Role:       "admin",
			Membership: true,
		})
	})

	svc := setupService(t, mux)

	u, err := svc.Get(context.Background(), "alice@example.com")

	require.NoError(t, err)
	assert.Equal(t, "admin", u.Role)
	assert.True(t, u.Membership)
}

func TestGet_MissingRecordIsErrNotFound(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /users/{email}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"no such user"}`))
	})

	svc := setupService(t, mux)

	_, err := svc.Get(context.Background(), "ghost@example.com")

	assert.ErrorIs(t, err, user.ErrNotFound)
}

func TestApply_SendsOnlySetFields(t *testing.T) {
	var raw map[string]any

	mux := http.NewServeMux()
	mux.HandleFunc("PUT /users/{email}", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
	})

	svc := setupService(t, mux)

	about := "hello"
	err := svc.Apply(context.Background(), "alice@example.com", user.Update{AboutMe: &about})

	require.NoError(t, err)
	assert.Equal(t, "hello", raw["aboutMe"])
	assert.NotContains(t, raw, "photoURL")
	assert.NotContains(t, raw, "coverURL")
}

func TestList_ReturnsAllRecords(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /users", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]user.User{
			{Email: "alice@example.com"},
			{Email: "bob@example.com"},
		})
	})

	svc := setupService(t, mux)

	users, err := svc.List(context.Background())

	require.NoError(t, err)
	assert.Len(t, users, 2)
}
