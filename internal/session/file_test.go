package session_test

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forumx/forumx/internal/identity"
	"github.com/forumx/forumx/internal/session"
)

func TestFileStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	store := session.NewFileStore(path)

	saved := &session.PersistedSession{
		Identity: identity.Identity{UID: "u1", Email: "alice@example.com"},
		Credentials: identity.Credentials{
			AccessToken:  "access-1",
			RefreshToken: "refresh-1",
			ExpiresAt:    time.Now().Add(time.Hour).UTC().Truncate(time.Second),
		},
	}
	require.NoError(t, store.Save(saved))

	loaded, err := store.Load()

	require.NoError(t, err)
	assert.Equal(t, saved.Identity, loaded.Identity)
	assert.Equal(t, saved.Credentials.RefreshToken, loaded.Credentials.RefreshToken)
	assert.True(t, saved.Credentials.ExpiresAt.Equal(loaded.Credentials.ExpiresAt))
}

func TestFileStore_TokenFileIsOwnerOnly(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("file modes are not meaningful on windows")
	}

	path := filepath.Join(t.TempDir(), "session.json")
	store := session.NewFileStore(path)
	require.NoError(t, store.Save(&session.PersistedSession{}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestFileStore_MissingFileIsNoSession(t *testing.T) {
	store := session.NewFileStore(filepath.Join(t.TempDir(), "absent.json"))

	loaded, err := store.Load()

	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestFileStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := session.NewFileStore(path).Load()

	assert.Error(t, err)
}

func TestFileStore_DeleteIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	store := session.NewFileStore(path)
	require.NoError(t, store.Save(&session.PersistedSession{}))

	require.NoError(t, store.Delete())
	assert.NoError(t, store.Delete())

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}
