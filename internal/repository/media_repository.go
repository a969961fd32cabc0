package repository

import (
	"context"
	"sync"

	"github.com/promura/backend/internal/models"
	"github.com/promura/backend/internal/storage"
)

type MediaRepository interface {
	Library(ctx context.Context) (*models.MediaLibrary, error)
	GetByID(ctx context.Context, id string) (*models.MediaItem, bool, error)
	Add(ctx context.Context, item *models.MediaItem) error
	Update(ctx context.Context, item *models.MediaItem) (bool, error)
	Remove(ctx context.Context, id string) (*models.MediaItem, bool, error)
}

type mediaRepository struct {
	store *storage.DocStore

	mu      sync.Mutex
	loaded  bool
	library *models.MediaLibrary
}

func NewMediaRepository(store *storage.DocStore) MediaRepository {
	return &mediaRepository{store: store}
}

func (r *mediaRepository) ensure(ctx context.Context) error {
	if r.loaded {
		return nil
	}
	library := &models.MediaLibrary{
		Images: []*models.MediaItem{},
		Videos: []*models.MediaItem{},
		Tags:   []string{},
	}
	if _, err := r.store.Load(ctx, storage.DocMedia, library); err != nil {
		return err
	}
	r.library = library
	r.loaded = true
	return nil
}

func (r *mediaRepository) persist(ctx context.Context) error {
	return r.store.Save(ctx, storage.DocMedia, r.library)
}

func (r *mediaRepository) itemsOf(mediaType string) *[]*models.MediaItem {
	if mediaType == models.MediaTypeVideo {
		return &r.library.Videos
	}
	return &r.library.Images
}

func copyItem(item *models.MediaItem) *models.MediaItem {
	copied := *item
	copied.Tags = append([]string(nil), item.Tags...)
	return &copied
}

func (r *mediaRepository) Library(ctx context.Context) (*models.MediaLibrary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.ensure(ctx); err != nil {
		return nil, err
	}

	library := &models.MediaLibrary{
		Images:     make([]*models.MediaItem, 0, len(r.library.Images)),
		Videos:     make([]*models.MediaItem, 0, len(r.library.Videos)),
		Tags:       append([]string(nil), r.library.Tags...),
		TotalItems: r.library.TotalItems,
	}
	for _, item := range r.library.Images {
		library.Images = append(library.Images, copyItem(item))
	}
	for _, item := range r.library.Videos {
		library.Videos = append(library.Videos, copyItem(item))
	}
	return library, nil
}

func (r *mediaRepository) GetByID(ctx context.Context, id string) (*models.MediaItem, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.ensure(ctx); err != nil {
		return nil, false, err
	}
	for _, items := range [][]*models.MediaItem{r.library.Images, r.library.Videos} {
		for _, item := range items {
			if item.ID == id {
				return copyItem(item), true, nil
			}
		}
	}
	return nil, false, nil
}

func (r *mediaRepository) Add(ctx context.Context, item *models.MediaItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.ensure(ctx); err != nil {
		return err
	}

	items := r.itemsOf(item.Type)
	*items = append(*items, copyItem(item))
	r.library.TotalItems++

	for _, tag := range item.Tags {
		known := false
		for _, existing := range r.library.Tags {
			if existing == tag {
				known = true
				break
			}
		}
		if !known {
			r.library.Tags = append(r.library.Tags, tag)
		}
	}
	return r.persist(ctx)
}

func (r *mediaRepository) Update(ctx context.Context, item *models.MediaItem) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.ensure(ctx); err != nil {
		return false, err
	}
	for _, items := range [][]*models.MediaItem{r.library.Images, r.library.Videos} {
		for i, existing := range items {
			if existing.ID == item.ID {
				items[i] = copyItem(item)
				return true, r.persist(ctx)
			}
		}
	}
	return false, nil
}

func (r *mediaRepository) Remove(ctx context.Context, id string) (*models.MediaItem, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.ensure(ctx); err != nil {
		return nil, false, err
	}
	for _, items := range []*[]*models.MediaItem{&r.library.Images, &r.library.Videos} {
		for i, existing := range *items {
			if existing.ID == id {
				removed := copyItem(existing)
				*items = append((*items)[:i], (*items)[i+1:]...)
				r.library.TotalItems--
				return removed, true, r.persist(ctx)
			}
		}
	}
	return nil, false, nil
}
