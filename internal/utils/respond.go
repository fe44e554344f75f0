package utils

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/almnar0/almeshkat25/internal/apperr"
)

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func Error(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, map[string]string{"error": msg})
}

// Fail maps a service error to its stable kind + message. Store failures are
// surfaced as a generic server error; the underlying detail stays in logs.
func Fail(w http.ResponseWriter, err error) {
	var e *apperr.Error
	if !errors.As(err, &e) {
		JSON(w, http.StatusInternalServerError, map[string]any{
			"error":   string(apperr.StoreIO),
			"message": "internal error",
		})
		return
	}
	body := map[string]any{
		"error":   string(e.Kind),
		"message": e.Message,
	}
	if e.Kind == apperr.StoreIO {
		body["message"] = "internal error"
	}
	if len(e.Fields) > 0 {
		body["fields"] = e.Fields
	}
	JSON(w, apperr.Status(e.Kind), body)
}
