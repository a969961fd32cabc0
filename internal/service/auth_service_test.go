package service

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	config "github.com/promura/backend/configs"
	"github.com/promura/backend/internal/models"
	"github.com/promura/backend/internal/repository"
	"github.com/promura/backend/internal/storage"
)

func newTestStore(t *testing.T) *storage.DocStore {
	t.Helper()

	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store, err := storage.NewDocStore(db)
	require.NoError(t, err)
	return store
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	dir := t.TempDir()
	return config.Config{
		DatabasePath: filepath.Join(dir, "test.db"),
		LibraryPath:  filepath.Join(dir, "library"),
		UploadPath:   filepath.Join(dir, "uploads"),
		SecretKey:    "test-secret-key",
		Snarf: config.Snarf{
			Command:  "snarf",
			Username: "tester",
			Browser:  "chrome",
		},
	}
}

func newAuthFixture(t *testing.T) (AuthService, repository.UserRepository) {
	t.Helper()
	userRepo := repository.NewUserRepository(newTestStore(t))
	auth := NewAuthService(testConfig(t), userRepo)
	require.NoError(t, auth.SeedDefaults(context.Background()))
	return auth, userRepo
}

func TestAuthenticateDefaults(t *testing.T) {
	auth, _ := newAuthFixture(t)
	ctx := context.Background()

	user, err := auth.Authenticate(ctx, "lea", "admin123")
	require.NoError(t, err)
	assert.Equal(t, models.RoleOwner, user.Role)
	assert.Equal(t, models.PermissionSet{"all"}, user.Permissions)
}

func TestAuthenticateUniformRejection(t *testing.T) {
	auth, userRepo := newAuthFixture(t)
	ctx := context.Background()

	_, err := auth.Authenticate(ctx, "nobody", "admin123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = auth.Authenticate(ctx, "lea", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	user, found, err := userRepo.GetByUsername(ctx, "social_manager")
	require.NoError(t, err)
	require.True(t, found)
	user.Active = false
	require.NoError(t, userRepo.Update(ctx, user))

	_, err = auth.Authenticate(ctx, "social_manager", "manager123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSeedDefaultsIsIdempotent(t *testing.T) {
	auth, userRepo := newAuthFixture(t)
	ctx := context.Background()

	require.NoError(t, auth.ChangePassword(ctx, "lea", "admin123", "new-password"))
	require.NoError(t, auth.SeedDefaults(ctx))

	// Re-seeding must not reset the changed password.
	_, err := auth.Authenticate(ctx, "lea", "admin123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = auth.Authenticate(ctx, "lea", "new-password")
	assert.NoError(t, err)

	users, err := userRepo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 3)
}

func TestTokenVerifyAndRevocationByDeletion(t *testing.T) {
	auth, userRepo := newAuthFixture(t)
	ctx := context.Background()

	token, err := auth.IssueToken(ctx, "content_assistant")
	require.NoError(t, err)

	claims, err := auth.Verify(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "content_assistant", claims.Subject)
	assert.Equal(t, "assistant", claims.Role)

	require.NoError(t, userRepo.Remove(ctx, "content_assistant"))

	_, err = auth.Verify(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	auth, _ := newAuthFixture(t)

	_, err := auth.Verify(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestCheckPermission(t *testing.T) {
	auth, _ := newAuthFixture(t)
	ctx := context.Background()

	// Owner carries the wildcard.
	ok, err := auth.CheckPermission(ctx, "lea", "metrics")
	require.NoError(t, err)
	assert.True(t, ok)

	// Assistant has view/schedule/captions but not metrics.
	ok, err = auth.CheckPermission(ctx, "content_assistant", "captions")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = auth.CheckPermission(ctx, "content_assistant", "metrics")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = auth.CheckPermission(ctx, "ghost", "view")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestChangePasswordRequiresOldPassword(t *testing.T) {
	auth, _ := newAuthFixture(t)
	ctx := context.Background()

	err := auth.ChangePassword(ctx, "lea", "wrong", "whatever")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
