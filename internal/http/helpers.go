package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dejotaortega/finanzas-deiner/internal/core"
	applog "github.com/dejotaortega/finanzas-deiner/internal/log"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps the engine's error taxonomy onto HTTP status codes.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, core.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, core.ErrDuplicateName):
		status = http.StatusConflict
	case errors.Is(err, core.ErrInvalidReference):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, core.ErrConcurrency):
		status = http.StatusServiceUnavailable
	}

	logger := applog.FromContext(r.Context())
	if status >= 500 {
		logger.ErrorContext(r.Context(), "Request failed", applog.FieldError, err, applog.FieldPath, r.URL.Path)
	} else {
		logger.WarnContext(r.Context(), "Request rejected", applog.FieldError, err, applog.FieldPath, r.URL.Path)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func decodeBody(r *http.Request, v any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	return nil
}

// parseDateOrToday parses an ISO date, defaulting to today when empty.
func parseDateOrToday(s string) (core.Date, error) {
	if s == "" {
		return core.Today(), nil
	}
	return core.ParseDate(s)
}
