package jsonstore

import (
	"context"
	"sort"
	"time"

	"github.com/almnar0/almeshkat25/internal/apperr"
	"github.com/almnar0/almeshkat25/internal/models"
	"github.com/almnar0/almeshkat25/internal/repository"
	"github.com/almnar0/almeshkat25/internal/store"
)

type NotificationRepo struct{ s store.Store }

func NewNotificationRepo(s store.Store) repository.NotificationRepository {
	return &NotificationRepo{s: s}
}

func (r *NotificationRepo) Create(ctx context.Context, n *models.Notification) error {
	defer r.s.Lock(store.Notifications)()

	var items []models.Notification
	if err := r.s.Read(store.Notifications, &items); err != nil {
		return apperr.Wrap(apperr.StoreIO, "load notifications", err)
	}
	items = append(items, *n)
	if err := r.s.Write(store.Notifications, items); err != nil {
		return apperr.Wrap(apperr.StoreIO, "save notifications", err)
	}
	return nil
}

func (r *NotificationRepo) ListByUser(ctx context.Context, userID string, unreadOnly bool) ([]models.Notification, error) {
	var items []models.Notification
	if err := r.s.Read(store.Notifications, &items); err != nil {
		return nil, apperr.Wrap(apperr.StoreIO, "load notifications", err)
	}
	out := make([]models.Notification, 0, len(items))
	for _, n := range items {
		if n.UserID != userID {
			continue
		}
		if unreadOnly && n.IsRead {
			continue
		}
		out = append(out, n)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *NotificationRepo) MarkRead(ctx context.Context, id, userID string) (*models.Notification, error) {
	defer r.s.Lock(store.Notifications)()

	var items []models.Notification
	if err := r.s.Read(store.Notifications, &items); err != nil {
		return nil, apperr.Wrap(apperr.StoreIO, "load notifications", err)
	}
	for i := range items {
		if items[i].ID != id || items[i].UserID != userID {
			continue
		}
		if !items[i].IsRead {
			now := time.Now().UTC()
			items[i].IsRead = true
			items[i].ReadAt = &now
			if err := r.s.Write(store.Notifications, items); err != nil {
				return nil, apperr.Wrap(apperr.StoreIO, "save notifications", err)
			}
		}
		return &items[i], nil
	}
	return nil, apperr.New(apperr.NotFound, "notification not found")
}

func (r *NotificationRepo) MarkAllRead(ctx context.Context, userID string) error {
	defer r.s.Lock(store.Notifications)()

	var items []models.Notification
	if err := r.s.Read(store.Notifications, &items); err != nil {
		return apperr.Wrap(apperr.StoreIO, "load notifications", err)
	}
	now := time.Now().UTC()
	changed := false
	for i := range items {
		if items[i].UserID == userID && !items[i].IsRead {
			items[i].IsRead = true
			items[i].ReadAt = &now
			changed = true
		}
	}
	if !changed {
		return nil
	}
	if err := r.s.Write(store.Notifications, items); err != nil {
		return apperr.Wrap(apperr.StoreIO, "save notifications", err)
	}
	return nil
}
