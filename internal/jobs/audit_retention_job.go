package job

import (
	"context"
	"log/slog"
	"time"

	"github.com/promura/backend/internal/service"
)

const auditRetention = 90 * 24 * time.Hour

type AuditRetentionJob struct {
	audit service.AuditService
}

func NewAuditRetentionJob(audit service.AuditService) *AuditRetentionJob {
	return &AuditRetentionJob{audit: audit}
}

// Prune drops audit entries older than the retention window.
func (j *AuditRetentionJob) Prune() {
	ctx := context.Background()

	removed, err := j.audit.ClearOlderThan(ctx, auditRetention)
	if err != nil {
		slog.Error("audit retention prune failed", "error", err)
		return
	}
	if removed > 0 {
		slog.Info("pruned old audit entries", "removed", removed)
	}
}
