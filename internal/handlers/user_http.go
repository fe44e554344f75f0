package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/almnar0/almeshkat25/internal/apperr"
	"github.com/almnar0/almeshkat25/internal/middleware"
	"github.com/almnar0/almeshkat25/internal/repository"
	"github.com/almnar0/almeshkat25/internal/service"
	"github.com/almnar0/almeshkat25/internal/utils"
)

type UserHTTP struct {
	svc *service.AuthService
}

func NewUserHTTP(s *service.AuthService) *UserHTTP {
	return &UserHTTP{svc: s}
}

// GET /api/users?role=&active=   (admin only, gated in router)
func (h *UserHTTP) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		qv := r.URL.Query()
		f := repository.UserFilter{
			Role:   qv.Get("role"),
			Active: utils.QueryBool(qv, "active"),
		}
		users, err := h.svc.ListUsers(r.Context(), f)
		if err != nil {
			utils.Fail(w, err)
			return
		}
		utils.JSON(w, http.StatusOK, map[string]any{"users": users})
	}
}

// PATCH /api/users/{id}   (self or admin, gated in router)
func (h *UserHTTP) Update() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ident, _ := middleware.IdentityFrom(r.Context())
		id := chi.URLParam(r, "id")

		var in service.UserUpdate
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			utils.Fail(w, apperr.New(apperr.Validation, "invalid json"))
			return
		}
		u, err := h.svc.UpdateUser(r.Context(), ident, id, in)
		if err != nil {
			utils.Fail(w, err)
			return
		}
		utils.JSON(w, http.StatusOK, map[string]any{"user": u})
	}
}
