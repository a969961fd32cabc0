package repository

import (
	"context"
	"sync"
	"time"

	"github.com/promura/backend/internal/models"
	"github.com/promura/backend/internal/storage"
)

type AuditRepository interface {
	Append(ctx context.Context, entry *models.AuditEntry) error
	Recent(ctx context.Context, limit int) ([]models.AuditEntry, error)
	ByUsername(ctx context.Context, username string, limit int) ([]models.AuditEntry, error)
	ByAction(ctx context.Context, action string, limit int) ([]models.AuditEntry, error)
	PruneOlderThan(ctx context.Context, cutoff time.Time) (int, error)
}

type auditRepository struct {
	store *storage.DocStore

	mu      sync.Mutex
	loaded  bool
	entries []models.AuditEntry
}

func NewAuditRepository(store *storage.DocStore) AuditRepository {
	return &auditRepository{store: store}
}

func (r *auditRepository) ensure(ctx context.Context) error {
	if r.loaded {
		return nil
	}
	entries := []models.AuditEntry{}
	if _, err := r.store.Load(ctx, storage.DocAuditLogs, &entries); err != nil {
		return err
	}
	r.entries = entries
	r.loaded = true
	return nil
}

func (r *auditRepository) persist(ctx context.Context) error {
	// FIFO truncation: only the most recent entries survive a save.
	if len(r.entries) > models.MaxAuditEntries {
		r.entries = r.entries[len(r.entries)-models.MaxAuditEntries:]
	}
	return r.store.Save(ctx, storage.DocAuditLogs, r.entries)
}

func (r *auditRepository) Append(ctx context.Context, entry *models.AuditEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.ensure(ctx); err != nil {
		return err
	}
	r.entries = append(r.entries, *entry)
	return r.persist(ctx)
}

func lastN(entries []models.AuditEntry, limit int) []models.AuditEntry {
	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	result := make([]models.AuditEntry, len(entries))
	copy(result, entries)
	return result
}

func (r *auditRepository) Recent(ctx context.Context, limit int) ([]models.AuditEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.ensure(ctx); err != nil {
		return nil, err
	}
	return lastN(r.entries, limit), nil
}

func (r *auditRepository) ByUsername(ctx context.Context, username string, limit int) ([]models.AuditEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.ensure(ctx); err != nil {
		return nil, err
	}

	var matched []models.AuditEntry
	for _, entry := range r.entries {
		if entry.Username == username {
			matched = append(matched, entry)
		}
	}
	return lastN(matched, limit), nil
}

func (r *auditRepository) ByAction(ctx context.Context, action string, limit int) ([]models.AuditEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.ensure(ctx); err != nil {
		return nil, err
	}

	var matched []models.AuditEntry
	for _, entry := range r.entries {
		if entry.Action == action {
			matched = append(matched, entry)
		}
	}
	return lastN(matched, limit), nil
}

func (r *auditRepository) PruneOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.ensure(ctx); err != nil {
		return 0, err
	}

	kept := r.entries[:0]
	for _, entry := range r.entries {
		if entry.Timestamp.After(cutoff) {
			kept = append(kept, entry)
		}
	}
	dropped := len(r.entries) - len(kept)
	r.entries = kept
	if dropped == 0 {
		return 0, nil
	}
	return dropped, r.persist(ctx)
}
