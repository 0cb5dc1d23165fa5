package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"finance/internal/core"
	applog "finance/internal/log"
	"finance/internal/storage"
)

var validationErrors = []error{
	core.ErrInvalidType,
	core.ErrInvalidAmount,
	core.ErrEmptyCategory,
	core.ErrInvalidPeriod,
	core.ErrInvalidDate,
	core.ErrNoteTooLong,
	core.ErrCategoryTooLong,
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps err to a status code and logs server-side failures.
func writeError(w http.ResponseWriter, r *http.Request, err error, op string) {
	status, errorType := classify(err)

	msg := err.Error()
	if status == http.StatusInternalServerError {
		applog.NewStructuredLogger(applog.FromContext(r.Context())).
			LogError(r.Context(), "Request failed", err, op, errorType)
		msg = "internal error"
	}
	writeJSON(w, status, errorResponse{Error: msg})
}

func classify(err error) (int, string) {
	var badRequest *badRequestError
	switch {
	case errors.As(err, &badRequest):
		return http.StatusBadRequest, applog.ErrorTypeValidation
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound, applog.ErrorTypeNotFound
	case storage.IsStorageError(err):
		return http.StatusInternalServerError, applog.ErrorTypeDatabase
	}
	for _, v := range validationErrors {
		if errors.Is(err, v) {
			return http.StatusUnprocessableEntity, applog.ErrorTypeValidation
		}
	}
	return http.StatusInternalServerError, applog.ErrorTypeInternal
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
