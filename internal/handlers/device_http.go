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

type DeviceHTTP struct {
	svc *service.DeviceService
}

func NewDeviceHTTP(s *service.DeviceService) *DeviceHTTP {
	return &DeviceHTTP{svc: s}
}

// GET /api/devices?type=&status=&location=
func (h *DeviceHTTP) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		qv := r.URL.Query()
		f := repository.DeviceFilter{
			Type:     qv.Get("type"),
			Status:   qv.Get("status"),
			Location: qv.Get("location"),
		}
		devices, err := h.svc.List(r.Context(), f)
		if err != nil {
			utils.Fail(w, err)
			return
		}
		utils.JSON(w, http.StatusOK, map[string]any{"devices": devices})
	}
}

// GET /api/devices/{id}
func (h *DeviceHTTP) Get() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			utils.Fail(w, err)
			return
		}
		utils.JSON(w, http.StatusOK, map[string]any{"device": d})
	}
}

// POST /api/devices   (admin/technician, gated in router)
func (h *DeviceHTTP) Create() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ident, _ := middleware.IdentityFrom(r.Context())
		var in service.DeviceInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			utils.Fail(w, apperr.New(apperr.Validation, "invalid json"))
			return
		}
		d, err := h.svc.Create(r.Context(), ident, in)
		if err != nil {
			utils.Fail(w, err)
			return
		}
		utils.JSON(w, http.StatusCreated, map[string]any{"device": d})
	}
}

// PATCH /api/devices/{id}   (admin/technician, gated in router)
func (h *DeviceHTTP) Update() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ident, _ := middleware.IdentityFrom(r.Context())
		var in service.DeviceInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			utils.Fail(w, apperr.New(apperr.Validation, "invalid json"))
			return
		}
		d, err := h.svc.Update(r.Context(), ident, chi.URLParam(r, "id"), in)
		if err != nil {
			utils.Fail(w, err)
			return
		}
		utils.JSON(w, http.StatusOK, map[string]any{"device": d})
	}
}

// DELETE /api/devices/{id}   (admin only, gated in router)
func (h *DeviceHTTP) Delete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ident, _ := middleware.IdentityFrom(r.Context())
		if err := h.svc.Delete(r.Context(), ident, chi.URLParam(r, "id")); err != nil {
			utils.Fail(w, err)
			return
		}
		utils.JSON(w, http.StatusOK, map[string]string{"message": "device deleted"})
	}
}
