package service

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/promura/backend/internal/repository"
)

func buildSpreadsheet(t *testing.T, rows [][]string) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		for j, cell := range row {
			name, err := excelize.CoordinatesToCellName(j+1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, name, cell))
		}
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return buf.Bytes()
}

func newCaptionFixture(t *testing.T) CaptionService {
	t.Helper()
	return NewCaptionService(repository.NewCaptionRepository(newTestStore(t)))
}

func TestIngestNormalizesCategories(t *testing.T) {
	captions := newCaptionFixture(t)
	ctx := context.Background()

	content := buildSpreadsheet(t, [][]string{
		{"Category", "Message"},
		{"tip", "Morning routine tips"},
		{"MASS", "Big announcement for everyone"},
		{"", "Uncategorized thought"},
		{"nan", "Another stray thought"},
	})

	result, err := captions.Ingest(ctx, content, "captions.xlsx")
	require.NoError(t, err)
	assert.Equal(t, 4, result.Summary.Total)
	assert.Contains(t, result.Categories, "Tip Prompt")
	assert.Contains(t, result.Categories, "Mass Message")
	assert.Equal(t, 2, result.Summary.ByCategory["General"])

	all, err := captions.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestIngestSkipsEmptyAndNanMessages(t *testing.T) {
	captions := newCaptionFixture(t)

	content := buildSpreadsheet(t, [][]string{
		{"Category", "Message"},
		{"tip", ""},
		{"tip", "nan"},
		{"tip", "A real one"},
	})

	result, err := captions.Ingest(context.Background(), content, "captions.xlsx")
	require.NoError(t, err)
	assert.Equal(t, 1, result.Summary.Total)
}

func TestIngestDoesNotDeduplicate(t *testing.T) {
	captions := newCaptionFixture(t)
	ctx := context.Background()

	content := buildSpreadsheet(t, [][]string{
		{"Category", "Message"},
		{"tip", "Same text"},
	})

	_, err := captions.Ingest(ctx, content, "first.xlsx")
	require.NoError(t, err)
	_, err = captions.Ingest(ctx, content, "second.xlsx")
	require.NoError(t, err)

	all, err := captions.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestReplaceAllClearsFirst(t *testing.T) {
	captions := newCaptionFixture(t)
	ctx := context.Background()

	first := buildSpreadsheet(t, [][]string{
		{"Category", "Message"},
		{"tip", "old one"},
		{"tip", "old two"},
	})
	_, err := captions.Ingest(ctx, first, "old.xlsx")
	require.NoError(t, err)

	second := buildSpreadsheet(t, [][]string{
		{"Category", "Message"},
		{"question", "fresh"},
	})
	result, err := captions.ReplaceAll(ctx, second, "new.xlsx")
	require.NoError(t, err)
	assert.Equal(t, 1, result.Summary.Total)

	all, err := captions.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "fresh", all[0].Text)
}

func TestIngestRejectsGarbageFiles(t *testing.T) {
	captions := newCaptionFixture(t)

	_, err := captions.Ingest(context.Background(), []byte("not a spreadsheet"), "junk.xlsx")
	assert.Error(t, err)
}

func TestIngestRejectsSingleColumnSheets(t *testing.T) {
	captions := newCaptionFixture(t)

	content := buildSpreadsheet(t, [][]string{
		{"OnlyColumn"},
		{"value"},
	})
	_, err := captions.Ingest(context.Background(), content, "narrow.xlsx")
	assert.Error(t, err)
}

func TestSearchAndCategoryFilter(t *testing.T) {
	captions := newCaptionFixture(t)
	ctx := context.Background()

	_, err := captions.AddSingle(ctx, "Sunset by the beach", "tips", "lea")
	require.NoError(t, err)
	_, err = captions.AddSingle(ctx, "City lights at night", "tip", "lea")
	require.NoError(t, err)

	found, err := captions.Search(ctx, "BEACH")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Sunset by the beach", found[0].Text)

	all, err := captions.ByCategory(ctx, "All Categories")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	// Both spellings normalize to the same canonical category.
	filtered, err := captions.ByCategory(ctx, "Tip Prompt")
	require.NoError(t, err)
	assert.Len(t, filtered, 2)
}

func TestIncrementUsageAndPopular(t *testing.T) {
	captions := newCaptionFixture(t)
	ctx := context.Background()

	a, err := captions.AddSingle(ctx, "first", "tip", "lea")
	require.NoError(t, err)
	_, err = captions.AddSingle(ctx, "second", "tip", "lea")
	require.NoError(t, err)

	require.NoError(t, captions.IncrementUsage(ctx, a.ID))
	require.NoError(t, captions.IncrementUsage(ctx, a.ID))

	popular, err := captions.Popular(ctx, 1)
	require.NoError(t, err)
	require.Len(t, popular, 1)
	assert.Equal(t, a.ID, popular[0].ID)
	assert.Equal(t, 2, popular[0].UsageCount)

	assert.ErrorIs(t, captions.IncrementUsage(ctx, "missing"), ErrCaptionNotFound)
}
