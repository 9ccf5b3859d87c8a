package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/snipstore/internal/apperror"
)

// ErrorResponse is the standard error shape returned by every API endpoint:
// a machine-readable error type plus a human-readable one-line cause.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already sent at this point; logging is all
			// that is left.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps a typed core failure to the right HTTP status. The core
// never knows about HTTP; this is the single place where its error taxonomy
// becomes status codes: validation and ambiguity are client errors, missing
// content and empty search results are 404, a duplicate-content conflict is
// 409, and anything unclassified is a generic 500 with no internals leaked.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError
		errorType := "internal_error"

		switch {
		case errors.Is(err, apperror.ErrValidation), errors.Is(err, apperror.ErrAmbiguous):
			status = http.StatusBadRequest
			errorType = "validation_error"
		case errors.Is(err, apperror.ErrNotFound), errors.Is(err, apperror.ErrNoResults):
			status = http.StatusNotFound
			errorType = "not_found"
		case errors.Is(err, apperror.ErrForbidden):
			status = http.StatusForbidden
			errorType = "forbidden"
		case errors.Is(err, apperror.ErrConflict):
			// An unattributable integrity violation is an internal
			// fault, not something the client can correct.
			if appErr.Field == "" {
				status = http.StatusInternalServerError
				errorType = "internal_error"
			} else {
				status = http.StatusConflict
				errorType = "conflict"
			}
		}

		writeJSON(w, status, ErrorResponse{
			Error:   errorType,
			Message: appErr.Message,
		})
		return
	}

	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "An internal error occurred",
	})
}

// badParam reports an unparsable query parameter as a validation failure.
func badParam(name, value string) *apperror.AppError {
	return &apperror.AppError{
		Err:     apperror.ErrValidation,
		Message: "invalid value for parameter " + name + ": " + value,
		Field:   name,
	}
}
