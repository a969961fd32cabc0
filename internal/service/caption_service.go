package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/promura/backend/internal/models"
	"github.com/promura/backend/internal/repository"
	"github.com/promura/backend/internal/transfer"
	"github.com/xuri/excelize/v2"
)

var ErrCaptionNotFound = errors.New("caption not found")

// categorySynonyms maps lowercase category spellings to their canonical
// names. Lookups are exact; anything unmapped passes through verbatim.
var categorySynonyms = map[string]string{
	"tip":            "Tip Prompt",
	"tips":           "Tip Prompt",
	"tip prompt":     "Tip Prompt",
	"mass":           "Mass Message",
	"mass msg":       "Mass Message",
	"mass message":   "Mass Message",
	"live":           "LIVE BOOST",
	"live boost":     "LIVE BOOST",
	"livestream":     "LIVE BOOST",
	"unlock":         "Unlock Prompt",
	"unlocks":        "Unlock Prompt",
	"unlock prompt":  "Unlock Prompt",
	"bundle":         "Bundle Prompt",
	"bundles":        "Bundle Prompt",
	"bundle prompt":  "Bundle Prompt",
	"ppv":            "PPV Captions",
	"ppv caption":    "PPV Captions",
	"ppv captions":   "PPV Captions",
	"campaign":       "Campaign Ideas",
	"campaigns":      "Campaign Ideas",
	"campaign ideas": "Campaign Ideas",
	"general":        "General",
	"other":          "General",
}

// NormalizeCategory maps a category spelling onto its canonical name with a
// case-insensitive exact-match lookup. No fuzzy matching.
func NormalizeCategory(category string) string {
	if canonical, ok := categorySynonyms[strings.ToLower(category)]; ok {
		return canonical
	}
	return category
}

type CaptionService interface {
	Ingest(ctx context.Context, content []byte, filename string) (*transfer.IngestResult, error)
	ReplaceAll(ctx context.Context, content []byte, filename string) (*transfer.IngestResult, error)
	All(ctx context.Context) ([]*models.Caption, error)
	ByCategory(ctx context.Context, category string) ([]*models.Caption, error)
	Search(ctx context.Context, query string) ([]*models.Caption, error)
	AddSingle(ctx context.Context, text, category, createdBy string) (*models.Caption, error)
	Update(ctx context.Context, id, text, category string) error
	Delete(ctx context.Context, id string) error
	IncrementUsage(ctx context.Context, id string) error
	Popular(ctx context.Context, limit int) ([]*models.Caption, error)
	Recent(ctx context.Context, limit int) ([]*models.Caption, error)
	Stats(ctx context.Context) (*transfer.CaptionStats, error)
	Clear(ctx context.Context) error
}

type captionService struct {
	cr repository.CaptionRepository
}

func NewCaptionService(cr repository.CaptionRepository) CaptionService {
	return &captionService{cr: cr}
}

// Ingest parses a spreadsheet whose first column holds categories and second
// column holds caption text (first row is a header). Rows with an empty or
// "nan" message are skipped; a missing category defaults to "General".
// Nothing is de-duplicated on purpose: re-uploading the same file doubles
// the library. A malformed file fails as a whole, never partially.
func (s *captionService) Ingest(ctx context.Context, content []byte, filename string) (*transfer.IngestResult, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		slog.Error(err.Error())
		return nil, fmt.Errorf("error processing spreadsheet: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("spreadsheet has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		slog.Error(err.Error())
		return nil, fmt.Errorf("error processing spreadsheet: %w", err)
	}
	if len(rows) > 0 && len(rows[0]) < 2 {
		return nil, errors.New("spreadsheet must have at least 2 columns")
	}

	var newCaptions []*models.Caption
	byCategory := make(map[string]int)

	for i, row := range rows {
		if i == 0 {
			continue // header row
		}

		var category, message string
		if len(row) > 0 {
			category = strings.TrimSpace(row[0])
		}
		if len(row) > 1 {
			message = strings.TrimSpace(row[1])
		}

		if message == "" || strings.EqualFold(message, "nan") {
			continue
		}
		if category == "" || strings.EqualFold(category, "nan") {
			category = "General"
		}
		category = NormalizeCategory(category)
		byCategory[category]++

		newCaptions = append(newCaptions, &models.Caption{
			ID:        uuid.NewString(),
			Text:      message,
			Category:  category,
			Source:    filename,
			CreatedAt: time.Now(),
		})
	}

	if len(newCaptions) > 0 {
		if err := s.cr.Add(ctx, newCaptions...); err != nil {
			return nil, err
		}
	}

	categories := make([]string, 0, len(byCategory))
	for category := range byCategory {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	return &transfer.IngestResult{
		Message:    fmt.Sprintf("Successfully processed %d captions from %d categories", len(newCaptions), len(categories)),
		Captions:   newCaptions,
		Categories: categories,
		Summary: transfer.IngestSummary{
			Total:      len(newCaptions),
			ByCategory: byCategory,
		},
	}, nil
}

// ReplaceAll drops every stored caption before ingesting the new file.
func (s *captionService) ReplaceAll(ctx context.Context, content []byte, filename string) (*transfer.IngestResult, error) {
	if err := s.cr.Clear(ctx); err != nil {
		return nil, err
	}
	return s.Ingest(ctx, content, filename)
}

func (s *captionService) All(ctx context.Context) ([]*models.Caption, error) {
	return s.cr.List(ctx)
}

func (s *captionService) ByCategory(ctx context.Context, category string) ([]*models.Caption, error) {
	captions, err := s.cr.List(ctx)
	if err != nil {
		return nil, err
	}
	if category == "All Categories" {
		return captions, nil
	}

	var matched []*models.Caption
	for _, caption := range captions {
		if caption.Category == category {
			matched = append(matched, caption)
		}
	}
	return matched, nil
}

func (s *captionService) Search(ctx context.Context, query string) ([]*models.Caption, error) {
	captions, err := s.cr.List(ctx)
	if err != nil {
		return nil, err
	}

	query = strings.ToLower(query)
	var matched []*models.Caption
	for _, caption := range captions {
		if strings.Contains(strings.ToLower(caption.Text), query) {
			matched = append(matched, caption)
		}
	}
	return matched, nil
}

func (s *captionService) AddSingle(ctx context.Context, text, category, createdBy string) (*models.Caption, error) {
	if text == "" {
		return nil, errors.New("caption text cannot be empty")
	}

	caption := &models.Caption{
		ID:        uuid.NewString(),
		Text:      text,
		Category:  NormalizeCategory(category),
		Source:    "manual",
		CreatedBy: createdBy,
		CreatedAt: time.Now(),
	}
	if err := s.cr.Add(ctx, caption); err != nil {
		return nil, err
	}
	return caption, nil
}

func (s *captionService) Update(ctx context.Context, id, text, category string) error {
	caption, exists, err := s.cr.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return ErrCaptionNotFound
	}

	if text != "" {
		caption.Text = text
	}
	if category != "" {
		caption.Category = NormalizeCategory(category)
	}
	now := time.Now()
	caption.UpdatedAt = &now

	updated, err := s.cr.Update(ctx, caption)
	if err != nil {
		return err
	}
	if !updated {
		return ErrCaptionNotFound
	}
	return nil
}

func (s *captionService) Delete(ctx context.Context, id string) error {
	removed, err := s.cr.Remove(ctx, id)
	if err != nil {
		return err
	}
	if !removed {
		return ErrCaptionNotFound
	}
	return nil
}

func (s *captionService) IncrementUsage(ctx context.Context, id string) error {
	caption, exists, err := s.cr.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return ErrCaptionNotFound
	}

	now := time.Now()
	caption.UsageCount++
	caption.LastUsed = &now
	if _, err := s.cr.Update(ctx, caption); err != nil {
		return err
	}
	return nil
}

func (s *captionService) Popular(ctx context.Context, limit int) ([]*models.Caption, error) {
	captions, err := s.cr.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(captions, func(i, j int) bool {
		return captions[i].UsageCount > captions[j].UsageCount
	})
	if limit > 0 && len(captions) > limit {
		captions = captions[:limit]
	}
	return captions, nil
}

func (s *captionService) Recent(ctx context.Context, limit int) ([]*models.Caption, error) {
	captions, err := s.cr.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(captions, func(i, j int) bool {
		return captions[i].CreatedAt.After(captions[j].CreatedAt)
	})
	if limit > 0 && len(captions) > limit {
		captions = captions[:limit]
	}
	return captions, nil
}

func (s *captionService) Stats(ctx context.Context) (*transfer.CaptionStats, error) {
	captions, err := s.cr.List(ctx)
	if err != nil {
		return nil, err
	}

	stats := &transfer.CaptionStats{
		Total:      len(captions),
		Categories: make(map[string]int),
		MostUsed:   []*models.Caption{},
		Recent:     []*models.Caption{},
	}
	if len(captions) == 0 {
		return stats, nil
	}

	for _, caption := range captions {
		stats.Categories[caption.Category]++
	}
	if stats.MostUsed, err = s.Popular(ctx, 5); err != nil {
		return nil, err
	}
	if stats.Recent, err = s.Recent(ctx, 5); err != nil {
		return nil, err
	}
	return stats, nil
}

func (s *captionService) Clear(ctx context.Context) error {
	return s.cr.Clear(ctx)
}
