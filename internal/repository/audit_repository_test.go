package repository

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/promura/backend/internal/models"
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

func TestAuditAppendAndQuery(t *testing.T) {
	r := NewAuditRepository(newTestStore(t))
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, r.Append(ctx, &models.AuditEntry{
			Timestamp: time.Now(),
			Username:  fmt.Sprintf("user%d", i%2),
			Action:    "api_call",
			Details:   fmt.Sprintf("call %d", i),
		}))
	}

	recent, err := r.Recent(ctx, 3)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	assert.Equal(t, "call 4", recent[2].Details)

	byUser, err := r.ByUsername(ctx, "user0", 0)
	require.NoError(t, err)
	assert.Len(t, byUser, 3)

	byAction, err := r.ByAction(ctx, "api_call", 2)
	require.NoError(t, err)
	assert.Len(t, byAction, 2)
}

func TestAuditCapEnforcedOnSave(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// Seed just under the cap directly, then push past it.
	entries := make([]models.AuditEntry, models.MaxAuditEntries)
	for i := range entries {
		entries[i] = models.AuditEntry{
			Timestamp: time.Now(),
			Username:  "seed",
			Action:    "api_call",
			Details:   fmt.Sprintf("seed %d", i),
		}
	}
	require.NoError(t, store.Save(ctx, storage.DocAuditLogs, entries))

	r := NewAuditRepository(store)
	for i := 0; i < 50; i++ {
		require.NoError(t, r.Append(ctx, &models.AuditEntry{
			Timestamp: time.Now(),
			Username:  "overflow",
			Action:    "api_call",
			Details:   fmt.Sprintf("overflow %d", i),
		}))
	}

	all, err := r.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, models.MaxAuditEntries)

	// Oldest entries are the ones dropped.
	assert.Equal(t, "seed 50", all[0].Details)
	assert.Equal(t, "overflow 49", all[len(all)-1].Details)
}

func TestAuditPruneOlderThan(t *testing.T) {
	r := NewAuditRepository(newTestStore(t))
	ctx := context.Background()

	old := time.Now().Add(-100 * 24 * time.Hour)
	require.NoError(t, r.Append(ctx, &models.AuditEntry{Timestamp: old, Username: "a", Action: "login"}))
	require.NoError(t, r.Append(ctx, &models.AuditEntry{Timestamp: time.Now(), Username: "b", Action: "login"}))

	dropped, err := r.PruneOlderThan(ctx, time.Now().Add(-90*24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, dropped)

	remaining, err := r.Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, "b", remaining[0].Username)
}
