package storage

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func newTestStore(t *testing.T) *DocStore {
	t.Helper()

	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store, err := NewDocStore(db)
	require.NoError(t, err)
	return store
}

func TestDocStoreRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	in := map[string]int{"a": 1, "b": 2}
	require.NoError(t, store.Save(ctx, DocCaptions, in))

	out := map[string]int{}
	found, err := store.Load(ctx, DocCaptions, &out)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, in, out)
}

func TestDocStoreMissingDocument(t *testing.T) {
	store := newTestStore(t)

	out := map[string]int{"untouched": 1}
	found, err := store.Load(context.Background(), DocMedia, &out)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, map[string]int{"untouched": 1}, out)
}

func TestDocStoreReplace(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, DocUsers, []string{"one", "two"}))
	require.NoError(t, store.Save(ctx, DocUsers, []string{"three"}))

	var out []string
	found, err := store.Load(ctx, DocUsers, &out)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []string{"three"}, out)
}
