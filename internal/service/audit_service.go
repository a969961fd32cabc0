package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/promura/backend/internal/models"
	"github.com/promura/backend/internal/repository"
)

type AuditService interface {
	Log(ctx context.Context, entry *models.AuditEntry)
	Recent(ctx context.Context, limit int) ([]models.AuditEntry, error)
	ByUsername(ctx context.Context, username string, limit int) ([]models.AuditEntry, error)
	ByAction(ctx context.Context, action string, limit int) ([]models.AuditEntry, error)
	ClearOlderThan(ctx context.Context, age time.Duration) (int, error)
}

type auditService struct {
	ar repository.AuditRepository
}

func NewAuditService(ar repository.AuditRepository) AuditService {
	return &auditService{ar: ar}
}

// Log records an action. Audit failures are logged and swallowed so a full
// disk never turns into a failed request.
func (s *auditService) Log(ctx context.Context, entry *models.AuditEntry) {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	if err := s.ar.Append(ctx, entry); err != nil {
		slog.Error("audit append failed", "error", err)
		return
	}
	slog.Info("audit", "username", entry.Username, "action", entry.Action, "details", entry.Details)
}

func (s *auditService) Recent(ctx context.Context, limit int) ([]models.AuditEntry, error) {
	return s.ar.Recent(ctx, limit)
}

func (s *auditService) ByUsername(ctx context.Context, username string, limit int) ([]models.AuditEntry, error) {
	return s.ar.ByUsername(ctx, username, limit)
}

func (s *auditService) ByAction(ctx context.Context, action string, limit int) ([]models.AuditEntry, error) {
	return s.ar.ByAction(ctx, action, limit)
}

func (s *auditService) ClearOlderThan(ctx context.Context, age time.Duration) (int, error) {
	return s.ar.PruneOlderThan(ctx, time.Now().Add(-age))
}
