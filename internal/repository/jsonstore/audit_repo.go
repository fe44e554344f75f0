package jsonstore

import (
	"context"
	"sort"

	"github.com/almnar0/almeshkat25/internal/apperr"
	"github.com/almnar0/almeshkat25/internal/models"
	"github.com/almnar0/almeshkat25/internal/repository"
	"github.com/almnar0/almeshkat25/internal/store"
)

type AuditRepo struct{ s store.Store }

func NewAuditRepo(s store.Store) repository.AuditRepository { return &AuditRepo{s: s} }

func (r *AuditRepo) Append(ctx context.Context, e *models.AuditEntry) error {
	defer r.s.Lock(store.AuditLogs)()

	var entries []models.AuditEntry
	if err := r.s.Read(store.AuditLogs, &entries); err != nil {
		return apperr.Wrap(apperr.StoreIO, "load audit logs", err)
	}
	entries = append(entries, *e)
	if n := len(entries); n > models.AuditRetention {
		entries = entries[n-models.AuditRetention:]
	}
	if err := r.s.Write(store.AuditLogs, entries); err != nil {
		return apperr.Wrap(apperr.StoreIO, "save audit logs", err)
	}
	return nil
}

func (r *AuditRepo) List(ctx context.Context, f repository.AuditFilter, limit int) ([]models.AuditEntry, error) {
	if limit <= 0 {
		limit = 100
	} else if limit > models.AuditRetention {
		limit = models.AuditRetention
	}
	var entries []models.AuditEntry
	if err := r.s.Read(store.AuditLogs, &entries); err != nil {
		return nil, apperr.Wrap(apperr.StoreIO, "load audit logs", err)
	}
	out := make([]models.AuditEntry, 0, len(entries))
	for _, e := range entries {
		if f.UserID != "" && e.Actor.ID != f.UserID {
			continue
		}
		if f.EntityType != "" && e.EntityType != f.EntityType {
			continue
		}
		if f.EntityID != "" && e.EntityID != f.EntityID {
			continue
		}
		if f.Action != "" && e.Action != f.Action {
			continue
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
