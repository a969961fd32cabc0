package repository

import (
	"context"
	"sync"

	"github.com/promura/backend/internal/models"
	"github.com/promura/backend/internal/storage"
)

type TemplateRepository interface {
	List(ctx context.Context) ([]*models.Template, error)
	GetByID(ctx context.Context, id string) (*models.Template, bool, error)
	Add(ctx context.Context, template *models.Template) error
	Update(ctx context.Context, template *models.Template) (bool, error)
	Remove(ctx context.Context, id string) (bool, error)
}

type templateRepository struct {
	store *storage.DocStore

	mu        sync.Mutex
	loaded    bool
	templates map[string]*models.Template
}

func NewTemplateRepository(store *storage.DocStore) TemplateRepository {
	return &templateRepository{store: store}
}

func (r *templateRepository) ensure(ctx context.Context) error {
	if r.loaded {
		return nil
	}
	templates := make(map[string]*models.Template)
	if _, err := r.store.Load(ctx, storage.DocTemplates, &templates); err != nil {
		return err
	}
	r.templates = templates
	r.loaded = true
	return nil
}

func (r *templateRepository) persist(ctx context.Context) error {
	return r.store.Save(ctx, storage.DocTemplates, r.templates)
}

func copyTemplate(t *models.Template) *models.Template {
	copied := *t
	copied.Models = append([]string(nil), t.Models...)
	copied.Tags = append([]string(nil), t.Tags...)
	copied.MediaIDs = append([]string(nil), t.MediaIDs...)
	return &copied
}

func (r *templateRepository) List(ctx context.Context) ([]*models.Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.ensure(ctx); err != nil {
		return nil, err
	}
	templates := make([]*models.Template, 0, len(r.templates))
	for _, template := range r.templates {
		templates = append(templates, copyTemplate(template))
	}
	return templates, nil
}

func (r *templateRepository) GetByID(ctx context.Context, id string) (*models.Template, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.ensure(ctx); err != nil {
		return nil, false, err
	}
	template, ok := r.templates[id]
	if !ok {
		return nil, false, nil
	}
	return copyTemplate(template), true, nil
}

func (r *templateRepository) Add(ctx context.Context, template *models.Template) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.ensure(ctx); err != nil {
		return err
	}
	r.templates[template.ID] = copyTemplate(template)
	return r.persist(ctx)
}

func (r *templateRepository) Update(ctx context.Context, template *models.Template) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.ensure(ctx); err != nil {
		return false, err
	}
	if _, ok := r.templates[template.ID]; !ok {
		return false, nil
	}
	r.templates[template.ID] = copyTemplate(template)
	return true, r.persist(ctx)
}

func (r *templateRepository) Remove(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.ensure(ctx); err != nil {
		return false, err
	}
	if _, ok := r.templates[id]; !ok {
		return false, nil
	}
	delete(r.templates, id)
	return true, r.persist(ctx)
}
