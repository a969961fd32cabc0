package middleware

import (
	"context"
	"database/sql"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	config "github.com/promura/backend/configs"
	"github.com/promura/backend/internal/repository"
	"github.com/promura/backend/internal/service"
	"github.com/promura/backend/internal/storage"
)

type middlewareFixture struct {
	app   *fiber.App
	auth  service.AuthService
	audit service.AuditService
}

func newMiddlewareFixture(t *testing.T) *middlewareFixture {
	t.Helper()

	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store, err := storage.NewDocStore(db)
	require.NoError(t, err)

	cfg := config.Config{SecretKey: "middleware-test-secret"}
	userRepo := repository.NewUserRepository(store)
	auth := service.NewAuthService(cfg, userRepo)
	require.NoError(t, auth.SeedDefaults(context.Background()))
	audit := service.NewAuditService(repository.NewAuditRepository(store))

	m := NewAuthMiddleware(cfg, auth, audit)

	app := fiber.New()
	app.Get("/metrics", m.RequireAuth(), m.RequirePermission("metrics"), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"caller": c.Locals("username")})
	})

	return &middlewareFixture{app: app, auth: auth, audit: audit}
}

func (f *middlewareFixture) get(t *testing.T, token string) int {
	t.Helper()

	req := httptest.NewRequest("GET", "/metrics", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := f.app.Test(req)
	require.NoError(t, err)
	resp.Body.Close()
	return resp.StatusCode
}

func TestRequireAuthRejectsMissingAndBadTokens(t *testing.T) {
	f := newMiddlewareFixture(t)

	assert.Equal(t, fiber.StatusUnauthorized, f.get(t, ""))
	assert.Equal(t, fiber.StatusUnauthorized, f.get(t, "garbage"))
}

func TestRequirePermissionGatesByRole(t *testing.T) {
	f := newMiddlewareFixture(t)
	ctx := context.Background()

	ownerToken, err := f.auth.IssueToken(ctx, "lea")
	require.NoError(t, err)
	assistantToken, err := f.auth.IssueToken(ctx, "content_assistant")
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, f.get(t, ownerToken))
	assert.Equal(t, fiber.StatusForbidden, f.get(t, assistantToken))
}

func TestRequireAuthAuditsEveryCall(t *testing.T) {
	f := newMiddlewareFixture(t)
	ctx := context.Background()

	token, err := f.auth.IssueToken(ctx, "lea")
	require.NoError(t, err)
	f.get(t, token)

	entries, err := f.audit.ByAction(ctx, "api_call", 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "lea", entries[0].Username)
	assert.Equal(t, "/metrics", entries[0].Endpoint)
}
