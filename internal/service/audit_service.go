package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/almnar0/almeshkat25/internal/models"
	"github.com/almnar0/almeshkat25/internal/repository"
)

// AuditService appends the system-wide trail of mutating actions. Appends are
// best-effort: a failed audit write is logged but never fails the operation
// that triggered it.
type AuditService struct {
	repo repository.AuditRepository
	log  zerolog.Logger
}

func NewAuditService(repo repository.AuditRepository, log zerolog.Logger) *AuditService {
	return &AuditService{repo: repo, log: log}
}

func (a *AuditService) Record(ctx context.Context, actor models.Actor, action, entityType, entityID string, changes map[string]string) {
	e := &models.AuditEntry{
		ID:         uuid.NewString(),
		Timestamp:  time.Now().UTC(),
		Actor:      actor,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Changes:    changes,
	}
	if err := a.repo.Append(ctx, e); err != nil {
		a.log.Error().Err(err).Str("action", action).Str("entity", entityType+"/"+entityID).Msg("audit append failed")
	}
}

func (a *AuditService) List(ctx context.Context, f repository.AuditFilter, limit int) ([]models.AuditEntry, error) {
	return a.repo.List(ctx, f, limit)
}
