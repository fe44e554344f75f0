package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/almnar0/almeshkat25/internal/apperr"
	"github.com/almnar0/almeshkat25/internal/middleware"
	"github.com/almnar0/almeshkat25/internal/service"
	"github.com/almnar0/almeshkat25/internal/utils"
)

// TicketHTTP wires the ticket engine to HTTP.
type TicketHTTP struct {
	svc *service.TicketService
}

func NewTicketHTTP(s *service.TicketService) *TicketHTTP {
	return &TicketHTTP{svc: s}
}

// GET /api/tickets?status=&priority=&serviceType=&assigned=
func (h *TicketHTTP) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ident, _ := middleware.IdentityFrom(r.Context())
		qv := r.URL.Query()
		in := service.ListTicketsInput{
			Status:      qv.Get("status"),
			Priority:    qv.Get("priority"),
			ServiceType: qv.Get("serviceType"),
		}
		if b := utils.QueryBool(qv, "assigned"); b != nil {
			in.AssignedToMe = *b
		}
		tickets, err := h.svc.List(r.Context(), ident, in)
		if err != nil {
			utils.Fail(w, err)
			return
		}
		w.Header().Set("X-Total-Count", strconv.Itoa(len(tickets)))
		utils.JSON(w, http.StatusOK, map[string]any{"tickets": tickets, "total": len(tickets)})
	}
}

// GET /api/tickets/{id}
func (h *TicketHTTP) Get() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ident, _ := middleware.IdentityFrom(r.Context())
		t, err := h.svc.Get(r.Context(), ident, chi.URLParam(r, "id"))
		if err != nil {
			utils.Fail(w, err)
			return
		}
		utils.JSON(w, http.StatusOK, map[string]any{"ticket": t})
	}
}

// POST /api/tickets
func (h *TicketHTTP) Create() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ident, _ := middleware.IdentityFrom(r.Context())
		var in service.CreateTicketInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			utils.Fail(w, apperr.New(apperr.Validation, "invalid json"))
			return
		}
		t, err := h.svc.Create(r.Context(), ident, in)
		if err != nil {
			utils.Fail(w, err)
			return
		}
		utils.JSON(w, http.StatusCreated, map[string]any{"ticket": t})
	}
}

// PATCH /api/tickets/{id}
func (h *TicketHTTP) Update() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ident, _ := middleware.IdentityFrom(r.Context())
		var in service.UpdateTicketInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			utils.Fail(w, apperr.New(apperr.Validation, "invalid json"))
			return
		}
		t, err := h.svc.Update(r.Context(), ident, chi.URLParam(r, "id"), in)
		if err != nil {
			utils.Fail(w, err)
			return
		}
		utils.JSON(w, http.StatusOK, map[string]any{"ticket": t})
	}
}

// POST /api/tickets/{id}/assign   (admin only, gated in router)
func (h *TicketHTTP) Assign() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ident, _ := middleware.IdentityFrom(r.Context())
		var in struct {
			TechnicianID string `json:"technicianId"`
		}
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			utils.Fail(w, apperr.New(apperr.Validation, "invalid json"))
			return
		}
		t, err := h.svc.Assign(r.Context(), ident, chi.URLParam(r, "id"), in.TechnicianID)
		if err != nil {
			utils.Fail(w, err)
			return
		}
		utils.JSON(w, http.StatusOK, map[string]any{"ticket": t})
	}
}

// POST /api/tickets/{id}/rate
func (h *TicketHTTP) Rate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ident, _ := middleware.IdentityFrom(r.Context())
		var in struct {
			Rating  int    `json:"rating"`
			Comment string `json:"comment"`
		}
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			utils.Fail(w, apperr.New(apperr.Validation, "invalid json"))
			return
		}
		t, err := h.svc.Rate(r.Context(), ident, chi.URLParam(r, "id"), in.Rating, in.Comment)
		if err != nil {
			utils.Fail(w, err)
			return
		}
		utils.JSON(w, http.StatusOK, map[string]any{"ticket": t})
	}
}
