package jsonstore_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/almnar0/almeshkat25/internal/models"
	"github.com/almnar0/almeshkat25/internal/repository"
	"github.com/almnar0/almeshkat25/internal/repository/jsonstore"
	"github.com/almnar0/almeshkat25/internal/store"
)

func TestAuditAppendEvictsBeyondRetention(t *testing.T) {
	st := store.NewMemory()
	repo := jsonstore.NewAuditRepo(st)
	ctx := context.Background()

	// Preload a full collection, then push one more entry over the cap.
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	full := make([]models.AuditEntry, models.AuditRetention)
	for i := range full {
		full[i] = models.AuditEntry{
			ID:        fmt.Sprintf("e-%04d", i),
			Timestamp: base.Add(time.Duration(i) * time.Second),
			Action:    "user_login",
		}
	}
	require.NoError(t, st.Write(store.AuditLogs, full))

	require.NoError(t, repo.Append(ctx, &models.AuditEntry{
		ID:        "newest",
		Timestamp: base.Add(time.Duration(models.AuditRetention) * time.Second),
		Action:    "user_login",
	}))

	var entries []models.AuditEntry
	require.NoError(t, st.Read(store.AuditLogs, &entries))
	require.Len(t, entries, models.AuditRetention)
	assert.Equal(t, "e-0001", entries[0].ID, "oldest entry evicted")
	assert.Equal(t, "newest", entries[len(entries)-1].ID)
}

func TestAuditListFiltersAndOrders(t *testing.T) {
	st := store.NewMemory()
	repo := jsonstore.NewAuditRepo(st)
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	add := func(id, actorID, action, entityType, entityID string, offset int) {
		t.Helper()
		require.NoError(t, repo.Append(ctx, &models.AuditEntry{
			ID:         id,
			Timestamp:  base.Add(time.Duration(offset) * time.Minute),
			Actor:      models.Actor{ID: actorID},
			Action:     action,
			EntityType: entityType,
			EntityID:   entityID,
		}))
	}
	add("a", "u1", "ticket_created", "ticket", "t1", 0)
	add("b", "u2", "ticket_updated", "ticket", "t1", 1)
	add("c", "u1", "user_login", "user", "u1", 2)

	all, err := repo.List(ctx, repository.AuditFilter{}, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "c", all[0].ID, "newest first")

	byUser, err := repo.List(ctx, repository.AuditFilter{UserID: "u1"}, 0)
	require.NoError(t, err)
	assert.Len(t, byUser, 2)

	byEntity, err := repo.List(ctx, repository.AuditFilter{EntityType: "ticket", EntityID: "t1"}, 0)
	require.NoError(t, err)
	assert.Len(t, byEntity, 2)

	byAction, err := repo.List(ctx, repository.AuditFilter{Action: "user_login"}, 0)
	require.NoError(t, err)
	require.Len(t, byAction, 1)
	assert.Equal(t, "c", byAction[0].ID)

	limited, err := repo.List(ctx, repository.AuditFilter{}, 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, "c", limited[0].ID)
}

func TestAuditListClampsOversizedLimit(t *testing.T) {
	st := store.NewMemory()
	repo := jsonstore.NewAuditRepo(st)
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	entries := make([]models.AuditEntry, 150)
	for i := range entries {
		entries[i] = models.AuditEntry{
			ID:        fmt.Sprintf("e-%03d", i),
			Timestamp: base.Add(time.Duration(i) * time.Second),
		}
	}
	require.NoError(t, st.Write(store.AuditLogs, entries))

	// A limit beyond the retention cap clamps to the cap, not the default.
	got, err := repo.List(ctx, repository.AuditFilter{}, models.AuditRetention+500)
	require.NoError(t, err)
	assert.Len(t, got, 150)

	got, err = repo.List(ctx, repository.AuditFilter{}, 0)
	require.NoError(t, err)
	assert.Len(t, got, 100, "non-positive limit falls back to the default")
}
