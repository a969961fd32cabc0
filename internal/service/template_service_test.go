package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promura/backend/internal/models"
	"github.com/promura/backend/internal/repository"
)

func newTemplateFixture(t *testing.T) TemplateService {
	t.Helper()
	return NewTemplateService(repository.NewTemplateRepository(newTestStore(t)))
}

func TestTemplateCreateAndGet(t *testing.T) {
	templates := newTemplateFixture(t)
	ctx := context.Background()

	created, err := templates.Create(ctx, &models.Template{
		Name:      "Monday promo",
		Content:   "New week, new drop",
		Tags:      []string{"promo"},
		CreatedBy: "lea",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Zero(t, created.UsageCount)

	got, err := templates.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Monday promo", got.Name)

	_, err = templates.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrTemplateNotFound)
}

func TestTemplateListFiltersAndSorts(t *testing.T) {
	templates := newTemplateFixture(t)
	ctx := context.Background()

	a, err := templates.Create(ctx, &models.Template{Name: "a", Content: "x", Tags: []string{"promo"}, CreatedBy: "lea"})
	require.NoError(t, err)
	_, err = templates.Create(ctx, &models.Template{Name: "b", Content: "y", Tags: []string{"casual"}, CreatedBy: "social_manager"})
	require.NoError(t, err)

	_, err = templates.Use(ctx, a.ID)
	require.NoError(t, err)

	all, err := templates.List(ctx, nil, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "a", all[0].Name)

	promo, err := templates.List(ctx, []string{"promo"}, "")
	require.NoError(t, err)
	require.Len(t, promo, 1)
	assert.Equal(t, "a", promo[0].Name)

	mine, err := templates.List(ctx, nil, "social_manager")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "b", mine[0].Name)
}

func TestTemplateUpdateProtectsIdentityFields(t *testing.T) {
	templates := newTemplateFixture(t)
	ctx := context.Background()

	created, err := templates.Create(ctx, &models.Template{Name: "orig", Content: "c", CreatedBy: "lea"})
	require.NoError(t, err)

	updated, err := templates.Update(ctx, created.ID, map[string]any{
		"name":        "renamed",
		"id":          "hijacked",
		"created_by":  "intruder",
		"usage_count": 99,
	})
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Name)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "lea", updated.CreatedBy)
	assert.Zero(t, updated.UsageCount)
}

func TestTemplateUseAndDuplicate(t *testing.T) {
	templates := newTemplateFixture(t)
	ctx := context.Background()

	created, err := templates.Create(ctx, &models.Template{Name: "base", Content: "c", CreatedBy: "lea"})
	require.NoError(t, err)

	used, err := templates.Use(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, used.UsageCount)
	assert.NotNil(t, used.LastUsed)

	dup, err := templates.Duplicate(ctx, created.ID, "social_manager")
	require.NoError(t, err)
	assert.Equal(t, "Copy of base", dup.Name)
	assert.NotEqual(t, created.ID, dup.ID)
	assert.Zero(t, dup.UsageCount)
	assert.Equal(t, "social_manager", dup.CreatedBy)

	stats, err := templates.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalTemplates)
	assert.Equal(t, 1, stats.TotalUses)
	require.NotNil(t, stats.MostPopular)
	assert.Equal(t, created.ID, stats.MostPopular.ID)
}

func TestTemplateDelete(t *testing.T) {
	templates := newTemplateFixture(t)
	ctx := context.Background()

	created, err := templates.Create(ctx, &models.Template{Name: "gone", Content: "c"})
	require.NoError(t, err)

	require.NoError(t, templates.Delete(ctx, created.ID))
	assert.ErrorIs(t, templates.Delete(ctx, created.ID), ErrTemplateNotFound)
}
