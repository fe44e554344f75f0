package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/almnar0/almeshkat25/internal/apperr"
	"github.com/almnar0/almeshkat25/internal/middleware"
	"github.com/almnar0/almeshkat25/internal/service"
	"github.com/almnar0/almeshkat25/internal/utils"
)

type AuthHTTP struct {
	svc *service.AuthService
}

func NewAuthHTTP(s *service.AuthService) *AuthHTTP {
	return &AuthHTTP{svc: s}
}

// POST /api/auth/register
func (h *AuthHTTP) Register() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in service.RegisterInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			utils.Fail(w, apperr.New(apperr.Validation, "invalid json"))
			return
		}
		u, token, err := h.svc.Register(r.Context(), in)
		if err != nil {
			utils.Fail(w, err)
			return
		}
		utils.JSON(w, http.StatusCreated, map[string]any{"user": u, "token": token})
	}
}

// POST /api/auth/login
func (h *AuthHTTP) Login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			utils.Fail(w, apperr.New(apperr.Validation, "invalid json"))
			return
		}
		u, token, err := h.svc.Login(r.Context(), in.Email, in.Password)
		if err != nil {
			utils.Fail(w, err)
			return
		}
		utils.JSON(w, http.StatusOK, map[string]any{"user": u, "token": token})
	}
}

// GET /api/auth/me
func (h *AuthHTTP) Me() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ident, ok := middleware.IdentityFrom(r.Context())
		if !ok {
			utils.Fail(w, apperr.New(apperr.InvalidToken, "authentication required"))
			return
		}
		u, err := h.svc.GetUser(r.Context(), ident.UserID)
		if err != nil {
			utils.Fail(w, err)
			return
		}
		utils.JSON(w, http.StatusOK, map[string]any{"user": u})
	}
}
