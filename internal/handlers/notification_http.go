package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/almnar0/almeshkat25/internal/middleware"
	"github.com/almnar0/almeshkat25/internal/repository"
	"github.com/almnar0/almeshkat25/internal/utils"
)

// NotificationHTTP is owner-scoped: every operation acts on the caller's own
// notifications only.
type NotificationHTTP struct {
	repo repository.NotificationRepository
}

func NewNotificationHTTP(r repository.NotificationRepository) *NotificationHTTP {
	return &NotificationHTTP{repo: r}
}

// GET /api/notifications?unreadOnly=true
func (h *NotificationHTTP) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ident, _ := middleware.IdentityFrom(r.Context())
		unreadOnly := false
		if b := utils.QueryBool(r.URL.Query(), "unreadOnly"); b != nil {
			unreadOnly = *b
		}
		items, err := h.repo.ListByUser(r.Context(), ident.UserID, unreadOnly)
		if err != nil {
			utils.Fail(w, err)
			return
		}
		utils.JSON(w, http.StatusOK, map[string]any{"notifications": items})
	}
}

// PATCH /api/notifications/{id}/read
func (h *NotificationHTTP) MarkRead() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ident, _ := middleware.IdentityFrom(r.Context())
		n, err := h.repo.MarkRead(r.Context(), chi.URLParam(r, "id"), ident.UserID)
		if err != nil {
			utils.Fail(w, err)
			return
		}
		utils.JSON(w, http.StatusOK, map[string]any{"notification": n})
	}
}

// POST /api/notifications/read-all
func (h *NotificationHTTP) MarkAllRead() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ident, _ := middleware.IdentityFrom(r.Context())
		if err := h.repo.MarkAllRead(r.Context(), ident.UserID); err != nil {
			utils.Fail(w, err)
			return
		}
		utils.JSON(w, http.StatusOK, map[string]string{"message": "all notifications marked as read"})
	}
}
