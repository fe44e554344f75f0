package handlers

import (
	"net/http"

	"github.com/almnar0/almeshkat25/internal/repository"
	"github.com/almnar0/almeshkat25/internal/service"
	"github.com/almnar0/almeshkat25/internal/utils"
)

type AuditHTTP struct {
	svc *service.AuditService
}

func NewAuditHTTP(s *service.AuditService) *AuditHTTP {
	return &AuditHTTP{svc: s}
}

// GET /api/activity-logs?userId=&entityType=&entityId=&action=&limit=
// Admin only, gated in router.
func (h *AuditHTTP) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		qv := r.URL.Query()
		f := repository.AuditFilter{
			UserID:     qv.Get("userId"),
			EntityType: qv.Get("entityType"),
			EntityID:   qv.Get("entityId"),
			Action:     qv.Get("action"),
		}
		limit := utils.QueryInt(qv, "limit", 100)
		logs, err := h.svc.List(r.Context(), f, limit)
		if err != nil {
			utils.Fail(w, err)
			return
		}
		utils.JSON(w, http.StatusOK, map[string]any{"logs": logs})
	}
}
