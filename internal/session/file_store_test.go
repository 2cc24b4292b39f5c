package session

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestFileStore(t *testing.T) {
	tests := []struct {
		name string
		key  string
	}{
		{name: "plain JSON file", key: ""},
		{name: "sealed file", key: "0123456789abcdef0123456789abcdef"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			path := filepath.Join(t.TempDir(), "nested", "sessions.json")

			store, err := NewFileStore(path, tt.key, zap.NewNop())
			require.NoError(t, err)

			sess := New(time.Hour)
			sess.AccessToken = "secret-access-token"
			require.NoError(t, store.Save(ctx, sess))

			raw, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, tt.key == "", strings.Contains(string(raw), "secret-access-token"))

			// a second store over the same file sees the session
			reopened, err := NewFileStore(path, tt.key, zap.NewNop())
			require.NoError(t, err)
			got, err := reopened.Get(ctx, sess.ID)
			require.NoError(t, err)
			assert.Equal(t, "secret-access-token", got.AccessToken)

			require.NoError(t, reopened.Delete(ctx, sess.ID))
			_, err = store.Get(ctx, sess.ID)
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestFileStore_WrongKey(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "sessions.json")

	store, err := NewFileStore(path, "0123456789abcdef0123456789abcdef", zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, New(time.Hour)))

	other, err := NewFileStore(path, "fedcba9876543210fedcba9876543210", zap.NewNop())
	require.NoError(t, err)
	_, err = other.Get(ctx, "any")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestFileStore_InvalidKey(t *testing.T) {
	_, err := NewFileStore(filepath.Join(t.TempDir(), "s.json"), "short", zap.NewNop())
	assert.Error(t, err)
}

func TestFileStore_Sweep(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(filepath.Join(t.TempDir(), "sessions.json"), "", zap.NewNop())
	require.NoError(t, err)

	expired := New(time.Hour)
	expired.ExpiresAt = time.Now().Add(-time.Second)
	require.NoError(t, store.Save(ctx, expired))
	require.NoError(t, store.Save(ctx, New(time.Hour)))

	assert.Equal(t, 1, store.Sweep())
	assert.Equal(t, 0, store.Sweep())
}
