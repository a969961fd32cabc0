package repository

import (
	"context"
	"sync"

	"github.com/promura/backend/internal/models"
	"github.com/promura/backend/internal/storage"
)

type CaptionRepository interface {
	List(ctx context.Context) ([]*models.Caption, error)
	GetByID(ctx context.Context, id string) (*models.Caption, bool, error)
	Add(ctx context.Context, captions ...*models.Caption) error
	Update(ctx context.Context, caption *models.Caption) (bool, error)
	Remove(ctx context.Context, id string) (bool, error)
	Clear(ctx context.Context) error
}

type captionRepository struct {
	store *storage.DocStore

	mu       sync.Mutex
	loaded   bool
	captions []*models.Caption
}

func NewCaptionRepository(store *storage.DocStore) CaptionRepository {
	return &captionRepository{store: store}
}

func (r *captionRepository) ensure(ctx context.Context) error {
	if r.loaded {
		return nil
	}
	captions := []*models.Caption{}
	if _, err := r.store.Load(ctx, storage.DocCaptions, &captions); err != nil {
		return err
	}
	r.captions = captions
	r.loaded = true
	return nil
}

func (r *captionRepository) persist(ctx context.Context) error {
	return r.store.Save(ctx, storage.DocCaptions, r.captions)
}

func (r *captionRepository) List(ctx context.Context) ([]*models.Caption, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.ensure(ctx); err != nil {
		return nil, err
	}

	captions := make([]*models.Caption, 0, len(r.captions))
	for _, caption := range r.captions {
		copied := *caption
		captions = append(captions, &copied)
	}
	return captions, nil
}

func (r *captionRepository) GetByID(ctx context.Context, id string) (*models.Caption, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.ensure(ctx); err != nil {
		return nil, false, err
	}
	for _, caption := range r.captions {
		if caption.ID == id {
			copied := *caption
			return &copied, true, nil
		}
	}
	return nil, false, nil
}

// Add appends captions as-is, without de-duplication: re-ingesting a
// spreadsheet doubles the library.
func (r *captionRepository) Add(ctx context.Context, captions ...*models.Caption) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.ensure(ctx); err != nil {
		return err
	}
	for _, caption := range captions {
		copied := *caption
		r.captions = append(r.captions, &copied)
	}
	return r.persist(ctx)
}

func (r *captionRepository) Update(ctx context.Context, caption *models.Caption) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.ensure(ctx); err != nil {
		return false, err
	}
	for i, existing := range r.captions {
		if existing.ID == caption.ID {
			copied := *caption
			r.captions[i] = &copied
			return true, r.persist(ctx)
		}
	}
	return false, nil
}

func (r *captionRepository) Remove(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.ensure(ctx); err != nil {
		return false, err
	}
	for i, caption := range r.captions {
		if caption.ID == id {
			r.captions = append(r.captions[:i], r.captions[i+1:]...)
			return true, r.persist(ctx)
		}
	}
	return false, nil
}

func (r *captionRepository) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.ensure(ctx); err != nil {
		return err
	}
	r.captions = []*models.Caption{}
	return r.persist(ctx)
}
