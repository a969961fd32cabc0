package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/promura/backend/internal/repository"
	"github.com/promura/backend/internal/service"
	"github.com/promura/backend/internal/storage"
)

func newCaptionApp(t *testing.T) (*fiber.App, service.CaptionService) {
	t.Helper()

	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store, err := storage.NewDocStore(db)
	require.NoError(t, err)

	captions := service.NewCaptionService(repository.NewCaptionRepository(store))
	audit := service.NewAuditService(repository.NewAuditRepository(store))
	h := NewCaptionHandler(captions, audit)

	app := fiber.New()
	app.Get("/api/captions", h.List)

	return app, captions
}

func listCaptions(t *testing.T, app *fiber.App, path string) (int, []any) {
	t.Helper()

	resp, err := app.Test(httptest.NewRequest("GET", path, nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	var body struct {
		Captions []any `json:"captions"`
		Count    int   `json:"count"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, len(body.Captions), body.Count)
	return resp.StatusCode, body.Captions
}

func TestListWithoutFiltersReturnsEveryCaption(t *testing.T) {
	app, captions := newCaptionApp(t)
	ctx := context.Background()

	_, err := captions.AddSingle(ctx, "Sunset by the beach", "tip", "lea")
	require.NoError(t, err)
	_, err = captions.AddSingle(ctx, "Inbox open all night", "mass", "lea")
	require.NoError(t, err)

	status, all := listCaptions(t, app, "/api/captions")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Len(t, all, 2)

	status, filtered := listCaptions(t, app, "/api/captions?category=Tip+Prompt")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Len(t, filtered, 1)

	status, found := listCaptions(t, app, "/api/captions?search=beach")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Len(t, found, 1)
}
