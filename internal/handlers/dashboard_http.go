package handlers

import (
	"net/http"

	"github.com/almnar0/almeshkat25/internal/middleware"
	"github.com/almnar0/almeshkat25/internal/service"
	"github.com/almnar0/almeshkat25/internal/utils"
)

type DashboardHTTP struct {
	svc *service.StatsService
}

func NewDashboardHTTP(s *service.StatsService) *DashboardHTTP {
	return &DashboardHTTP{svc: s}
}

// GET /api/dashboard/stats — aggregates scoped to the caller's role.
func (h *DashboardHTTP) Stats() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ident, _ := middleware.IdentityFrom(r.Context())
		stats, err := h.svc.Dashboard(r.Context(), ident)
		if err != nil {
			utils.Fail(w, err)
			return
		}
		utils.JSON(w, http.StatusOK, map[string]any{"stats": stats})
	}
}
