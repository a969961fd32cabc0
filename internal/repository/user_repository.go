package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/promura/backend/internal/models"
	"github.com/promura/backend/internal/storage"
)

type UserRepository interface {
	GetByUsername(ctx context.Context, username string) (*models.User, bool, error)
	List(ctx context.Context) ([]*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	Remove(ctx context.Context, username string) error
}

type userRepository struct {
	store *storage.DocStore

	mu     sync.Mutex
	loaded bool
	users  map[string]*models.User
}

func NewUserRepository(store *storage.DocStore) UserRepository {
	return &userRepository{store: store}
}

func (r *userRepository) ensure(ctx context.Context) error {
	if r.loaded {
		return nil
	}
	users := make(map[string]*models.User)
	if _, err := r.store.Load(ctx, storage.DocUsers, &users); err != nil {
		return err
	}
	r.users = users
	r.loaded = true
	return nil
}

func (r *userRepository) persist(ctx context.Context) error {
	return r.store.Save(ctx, storage.DocUsers, r.users)
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.ensure(ctx); err != nil {
		return nil, false, err
	}
	user, ok := r.users[username]
	if !ok {
		return nil, false, nil
	}
	copied := *user
	return &copied, true, nil
}

func (r *userRepository) List(ctx context.Context) ([]*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.ensure(ctx); err != nil {
		return nil, err
	}

	users := make([]*models.User, 0, len(r.users))
	for _, user := range r.users {
		copied := *user
		users = append(users, &copied)
	}
	sort.Slice(users, func(i, j int) bool {
		return users[i].Username < users[j].Username
	})
	return users, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.ensure(ctx); err != nil {
		return err
	}
	copied := *user
	r.users[user.Username] = &copied
	return r.persist(ctx)
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.ensure(ctx); err != nil {
		return err
	}
	copied := *user
	r.users[user.Username] = &copied
	return r.persist(ctx)
}

func (r *userRepository) Remove(ctx context.Context, username string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.ensure(ctx); err != nil {
		return err
	}
	delete(r.users, username)
	return r.persist(ctx)
}
