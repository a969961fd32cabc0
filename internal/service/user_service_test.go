package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promura/backend/internal/repository"
	"github.com/promura/backend/internal/transfer"
)

func newUserFixture(t *testing.T) (UserService, repository.UserRepository) {
	t.Helper()
	userRepo := repository.NewUserRepository(newTestStore(t))
	auth := NewAuthService(testConfig(t), userRepo)
	require.NoError(t, auth.SeedDefaults(context.Background()))
	return NewUserService(userRepo), userRepo
}

func TestListUsersSortedByRole(t *testing.T) {
	users, _ := newUserFixture(t)

	list, err := users.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "lea", list[0].Username)
	assert.Equal(t, "social_manager", list[1].Username)
	assert.Equal(t, "content_assistant", list[2].Username)
}

func TestAddUserAssignsDefaultPermissions(t *testing.T) {
	users, _ := newUserFixture(t)
	ctx := context.Background()

	info, err := users.Add(ctx, "lea", &transfer.AddUserRequest{
		Username: "helper",
		Password: "secret",
		Role:     "assistant",
		FullName: "Helper",
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"view", "schedule", "captions"}, info.Permissions)
	assert.Equal(t, "lea", info.CreatedBy)
}

func TestAddUserRejectsDuplicatesAndBadRoles(t *testing.T) {
	users, _ := newUserFixture(t)
	ctx := context.Background()

	_, err := users.Add(ctx, "lea", &transfer.AddUserRequest{
		Username: "lea",
		Password: "x",
		Role:     "manager",
	})
	assert.ErrorIs(t, err, ErrUserExists)

	_, err = users.Add(ctx, "lea", &transfer.AddUserRequest{
		Username: "newbie",
		Password: "x",
		Role:     "superadmin",
	})
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestUpdateUserIgnoresProtectedFields(t *testing.T) {
	users, userRepo := newUserFixture(t)
	ctx := context.Background()

	before, _, err := userRepo.GetByUsername(ctx, "social_manager")
	require.NoError(t, err)

	name := "Renamed"
	require.NoError(t, users.Update(ctx, "social_manager", &transfer.UpdateUserRequest{
		FullName: &name,
	}))

	after, _, err := userRepo.GetByUsername(ctx, "social_manager")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", after.FullName)
	assert.Equal(t, before.PasswordHash, after.PasswordHash)
	assert.Equal(t, before.CreatedAt.Unix(), after.CreatedAt.Unix())
}

func TestRemoveUserGuards(t *testing.T) {
	users, _ := newUserFixture(t)
	ctx := context.Background()

	// Self-deletion beats every other check.
	err := users.Remove(ctx, "lea", "lea")
	assert.ErrorIs(t, err, ErrSelfDeletion)

	// No owner can be deleted, regardless of actor.
	err = users.Remove(ctx, "social_manager", "lea")
	assert.ErrorIs(t, err, ErrOwnerDeletion)

	err = users.Remove(ctx, "lea", "ghost")
	assert.ErrorIs(t, err, ErrUserNotFound)

	require.NoError(t, users.Remove(ctx, "lea", "content_assistant"))
	_, err = users.GetInfo(ctx, "content_assistant")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
