package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promura/backend/internal/models"
)

func TestUserRepositoryPersistence(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	r := NewUserRepository(store)
	require.NoError(t, r.Create(ctx, &models.User{
		Username:     "lea",
		PasswordHash: "hash",
		Role:         models.RoleOwner,
		Permissions:  models.PermissionSet{"all"},
		Active:       true,
		CreatedAt:    time.Now(),
	}))

	// A fresh repository over the same store sees the saved user.
	r2 := NewUserRepository(store)
	user, found, err := r2.GetByUsername(ctx, "lea")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, models.RoleOwner, user.Role)
	assert.True(t, user.Permissions.Has("captions"))
}

func TestUserRepositoryGetReturnsCopy(t *testing.T) {
	r := NewUserRepository(newTestStore(t))
	ctx := context.Background()

	require.NoError(t, r.Create(ctx, &models.User{Username: "x", Role: models.RoleManager}))

	user, _, err := r.GetByUsername(ctx, "x")
	require.NoError(t, err)
	user.Role = models.RoleOwner

	again, _, err := r.GetByUsername(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, models.RoleManager, again.Role)
}

func TestUserRepositoryRemove(t *testing.T) {
	r := NewUserRepository(newTestStore(t))
	ctx := context.Background()

	require.NoError(t, r.Create(ctx, &models.User{Username: "gone"}))
	require.NoError(t, r.Remove(ctx, "gone"))

	_, found, err := r.GetByUsername(ctx, "gone")
	require.NoError(t, err)
	assert.False(t, found)
}
