// Package handler provides HTTP handlers for the API.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/capitalize-ai/mock-thread-api/internal/middleware"
	"github.com/capitalize-ai/mock-thread-api/internal/model"
	"github.com/capitalize-ai/mock-thread-api/internal/service"
	"github.com/capitalize-ai/mock-thread-api/pkg/logger"
)

const maxBodyBytes = 1 << 20

// Error codes carried in ErrorResponse.Code.
const (
	CodeValidation       = "VALIDATION_ERROR"
	CodeThreadNotFound   = "THREAD_NOT_FOUND"
	CodeEntryNotFound    = "ENTRY_NOT_FOUND"
	CodeFeedbackNotFound = "FEEDBACK_NOT_FOUND"
	CodeUserNotFound     = "USER_NOT_FOUND"
	CodeUserExists       = "USER_EXISTS"
	CodeScenarioNotFound = "SCENARIO_NOT_FOUND"
	CodeEventsDisabled   = "EVENTS_DISABLED"
	CodeInternal         = "INTERNAL_ERROR"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, r *http.Request, status int, msg, code, detail string) {
	writeJSON(w, status, model.ErrorResponse{
		Error:     msg,
		Message:   detail,
		Code:      code,
		Timestamp: time.Now().UTC(),
		Path:      r.URL.Path,
	})
}

func writeValidationError(w http.ResponseWriter, r *http.Request, err error) {
	writeError(w, r, http.StatusBadRequest, "Invalid request body", CodeValidation, err.Error())
}

// decodeJSON reads a size-limited JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(v)
}

// writeServiceError maps service errors to HTTP responses.
func writeServiceError(w http.ResponseWriter, r *http.Request, log *logger.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrThreadNotFound):
		writeError(w, r, http.StatusNotFound, "Thread not found", CodeThreadNotFound, "")
	case errors.Is(err, service.ErrEntryNotFound):
		writeError(w, r, http.StatusNotFound, "Entry not found", CodeEntryNotFound, "")
	case errors.Is(err, service.ErrFeedbackNotFound):
		writeError(w, r, http.StatusNotFound, "Feedback not found", CodeFeedbackNotFound, "")
	case errors.Is(err, service.ErrUserNotFound):
		writeError(w, r, http.StatusNotFound, "User not found", CodeUserNotFound, "")
	case errors.Is(err, service.ErrUserExists):
		writeError(w, r, http.StatusConflict, "User already exists", CodeUserExists, "")
	case errors.Is(err, service.ErrEventsDisabled):
		writeError(w, r, http.StatusServiceUnavailable, "Thread events are not enabled", CodeEventsDisabled, "")
	case errors.Is(err, context.Canceled):
		// client went away
	default:
		log.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.String("correlation_id", middleware.GetCorrelationID(r.Context())),
			zap.Error(err),
		)
		writeError(w, r, http.StatusInternalServerError, "Internal server error", CodeInternal, err.Error())
	}
}
