package session

import (
	"context"
	"testing"
	"time"

	"github.com/olp/portal/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMemoryStore_SaveGetDelete(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(zap.NewNop())

	sess := New(time.Hour)
	sess.SetTokens(&models.AuthResponse{
		AccessToken:  "access",
		RefreshToken: "refresh",
		Username:     "ann",
		Role:         models.RoleStudent,
	})
	require.NoError(t, store.Save(ctx, sess))

	got, err := store.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "access", got.AccessToken)
	assert.Equal(t, models.RoleStudent, got.Role)

	// stored copies are not shared with callers
	got.AccessToken = "changed"
	again, err := store.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "access", again.AccessToken)

	require.NoError(t, store.Delete(ctx, sess.ID))
	_, err = store.Get(ctx, sess.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, store.Delete(ctx, "missing"))
}

func TestMemoryStore_ExpiryAndSweep(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(zap.NewNop())

	live := New(time.Hour)
	expired := New(time.Hour)
	expired.ExpiresAt = time.Now().Add(-time.Minute)
	require.NoError(t, store.Save(ctx, live))
	require.NoError(t, store.Save(ctx, expired))

	_, err := store.Get(ctx, expired.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Equal(t, 1, store.Sweep())
	assert.Equal(t, 1, store.Len())
	assert.Equal(t, 0, store.Sweep())
}

func TestSession_ClearAndRoles(t *testing.T) {
	sess := New(time.Hour)
	assert.False(t, sess.Authenticated())

	sess.SetTokens(&models.AuthResponse{AccessToken: "a", RefreshToken: "r", Username: "bob", Role: models.RoleInstructor})
	assert.True(t, sess.Authenticated())
	assert.True(t, sess.HasRole())
	assert.True(t, sess.HasRole(models.RoleInstructor, models.RoleAdmin))
	assert.False(t, sess.HasRole(models.RoleStudent))

	// refresh answers without identity keep the current one
	sess.SetTokens(&models.AuthResponse{AccessToken: "a2", RefreshToken: "r2"})
	assert.Equal(t, "bob", sess.Username)
	assert.Equal(t, models.RoleInstructor, sess.Role)

	sess.Clear()
	assert.False(t, sess.Authenticated())
	assert.Empty(t, sess.RefreshToken)
	assert.Empty(t, sess.Username)
	assert.Empty(t, sess.Role)
	assert.NotEmpty(t, sess.ID)
}

func TestSessionContext(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	sess := New(time.Hour)
	got, ok := FromContext(NewContext(context.Background(), sess))
	assert.True(t, ok)
	assert.Same(t, sess, got)
}

func TestSweeper(t *testing.T) {
	_, err := NewSweeper(NewMemoryStore(zap.NewNop()), "not a schedule", zap.NewNop())
	assert.Error(t, err)

	sweeper, err := NewSweeper(NewMemoryStore(zap.NewNop()), "@every 1h", zap.NewNop())
	require.NoError(t, err)
	sweeper.Start()
	sweeper.Stop()
}
