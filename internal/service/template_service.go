package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/promura/backend/internal/models"
	"github.com/promura/backend/internal/repository"
	"github.com/promura/backend/internal/transfer"
)

var ErrTemplateNotFound = errors.New("template not found")

// TemplateService manages reusable post templates. Using a template
// bumps its usage counter; the expansion into an actual post is the
// dashboard's business.
type TemplateService interface {
	Create(ctx context.Context, t *models.Template) (*models.Template, error)
	Get(ctx context.Context, id string) (*models.Template, error)
	List(ctx context.Context, tags []string, createdBy string) ([]*models.Template, error)
	Update(ctx context.Context, id string, fields map[string]any) (*models.Template, error)
	Delete(ctx context.Context, id string) error
	Use(ctx context.Context, id string) (*models.Template, error)
	Duplicate(ctx context.Context, id, createdBy string) (*models.Template, error)
	Popular(ctx context.Context, limit int) ([]*models.Template, error)
	Recent(ctx context.Context, limit int) ([]*models.Template, error)
	Stats(ctx context.Context) (*transfer.TemplateStats, error)
}

type templateService struct {
	tr repository.TemplateRepository
}

func NewTemplateService(tr repository.TemplateRepository) TemplateService {
	return &templateService{tr: tr}
}

func (s *templateService) Create(ctx context.Context, t *models.Template) (*models.Template, error) {
	now := time.Now()
	t.ID = uuid.NewString()
	t.CreatedAt = now
	t.UpdatedAt = now
	t.UsageCount = 0
	t.LastUsed = nil
	if t.Models == nil {
		t.Models = []string{}
	}
	if t.Tags == nil {
		t.Tags = []string{}
	}
	if t.MediaIDs == nil {
		t.MediaIDs = []string{}
	}
	if err := s.tr.Add(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *templateService) Get(ctx context.Context, id string) (*models.Template, error) {
	t, ok, err := s.tr.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrTemplateNotFound
	}
	return t, nil
}

func (s *templateService) List(ctx context.Context, tags []string, createdBy string) ([]*models.Template, error) {
	all, err := s.tr.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]*models.Template, 0, len(all))
	for _, t := range all {
		if createdBy != "" && t.CreatedBy != createdBy {
			continue
		}
		if len(tags) > 0 && !hasAnyTag(t.Tags, tags) {
			continue
		}
		out = append(out, t)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].UsageCount != out[j].UsageCount {
			return out[i].UsageCount > out[j].UsageCount
		}
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

func hasAnyTag(have, want []string) bool {
	for _, w := range want {
		for _, h := range have {
			if strings.EqualFold(h, w) {
				return true
			}
		}
	}
	return false
}

// Update applies the given fields. Identity and bookkeeping fields
// (id, created_by, created_at, usage_count) cannot be changed.
func (s *templateService) Update(ctx context.Context, id string, fields map[string]any) (*models.Template, error) {
	t, ok, err := s.tr.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrTemplateNotFound
	}

	if v, ok := fields["name"].(string); ok {
		t.Name = v
	}
	if v, ok := fields["content"].(string); ok {
		t.Content = v
	}
	if v, ok := fields["models"]; ok {
		t.Models = toStringSlice(v)
	}
	if v, ok := fields["tags"]; ok {
		t.Tags = toStringSlice(v)
	}
	if v, ok := fields["media_ids"]; ok {
		t.MediaIDs = toStringSlice(v)
	}
	if v, ok := fields["schedule_pattern"].(string); ok {
		t.SchedulePattern = v
	}
	t.UpdatedAt = time.Now()

	if _, err := s.tr.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func toStringSlice(v any) []string {
	switch vv := v.(type) {
	case []string:
		return vv
	case []any:
		out := make([]string, 0, len(vv))
		for _, item := range vv {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return []string{}
	}
}

func (s *templateService) Delete(ctx context.Context, id string) error {
	ok, err := s.tr.Remove(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrTemplateNotFound
	}
	return nil
}

func (s *templateService) Use(ctx context.Context, id string) (*models.Template, error) {
	t, ok, err := s.tr.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrTemplateNotFound
	}
	now := time.Now()
	t.UsageCount++
	t.LastUsed = &now
	if _, err := s.tr.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *templateService) Duplicate(ctx context.Context, id, createdBy string) (*models.Template, error) {
	src, ok, err := s.tr.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrTemplateNotFound
	}

	now := time.Now()
	dup := &models.Template{
		ID:              uuid.NewString(),
		Name:            "Copy of " + src.Name,
		Content:         src.Content,
		Models:          append([]string(nil), src.Models...),
		Tags:            append([]string(nil), src.Tags...),
		MediaIDs:        append([]string(nil), src.MediaIDs...),
		SchedulePattern: src.SchedulePattern,
		CreatedBy:       createdBy,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.tr.Add(ctx, dup); err != nil {
		return nil, err
	}
	return dup, nil
}

func (s *templateService) Popular(ctx context.Context, limit int) ([]*models.Template, error) {
	all, err := s.tr.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].UsageCount > all[j].UsageCount
	})
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (s *templateService) Recent(ctx context.Context, limit int) ([]*models.Template, error) {
	all, err := s.tr.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].UpdatedAt.After(all[j].UpdatedAt)
	})
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (s *templateService) Stats(ctx context.Context) (*transfer.TemplateStats, error) {
	all, err := s.tr.List(ctx)
	if err != nil {
		return nil, err
	}

	stats := &transfer.TemplateStats{TotalTemplates: len(all)}
	cutoff := time.Now().AddDate(0, 0, -7)
	for _, t := range all {
		stats.TotalUses += t.UsageCount
		if t.LastUsed != nil && t.LastUsed.After(cutoff) {
			stats.RecentlyUsed++
		}
		if stats.MostPopular == nil || t.UsageCount > stats.MostPopular.UsageCount {
			stats.MostPopular = t
		}
	}
	return stats, nil
}
