package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/capitalize-ai/mock-thread-api/internal/middleware"
	"github.com/capitalize-ai/mock-thread-api/internal/model"
	"github.com/capitalize-ai/mock-thread-api/internal/service"
	"github.com/capitalize-ai/mock-thread-api/pkg/logger"
)

// FeedbackHandler handles feedback endpoints.
type FeedbackHandler struct {
	service *service.FeedbackService
	logger  *logger.Logger
}

// NewFeedbackHandler creates a new feedback handler.
func NewFeedbackHandler(svc *service.FeedbackService, log *logger.Logger) *FeedbackHandler {
	return &FeedbackHandler{
		service: svc,
		logger:  log,
	}
}

// Create handles POST /api/feedback
func (h *FeedbackHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateFeedbackRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeValidationError(w, r, err)
		return
	}
	if err := middleware.ValidateStruct(req); err != nil {
		writeValidationError(w, r, err)
		return
	}

	fb, err := h.service.Create(r.Context(), &req)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, fb)
}

// List handles GET /api/feedback
func (h *FeedbackHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.List(r.Context()))
}

// Counts handles GET /api/feedback/counts
func (h *FeedbackHandler) Counts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.Counts(r.Context()))
}

// Get handles GET /api/feedback/{id}
func (h *FeedbackHandler) Get(w http.ResponseWriter, r *http.Request) {
	feedbackID := chi.URLParam(r, "id")
	if err := middleware.ValidateFeedbackID(feedbackID); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error(), CodeValidation, "")
		return
	}

	fb, err := h.service.Get(r.Context(), feedbackID)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, fb)
}

// Delete handles DELETE /api/feedback/{id}
func (h *FeedbackHandler) Delete(w http.ResponseWriter, r *http.Request) {
	feedbackID := chi.URLParam(r, "id")
	if err := middleware.ValidateFeedbackID(feedbackID); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error(), CodeValidation, "")
		return
	}

	if err := h.service.Delete(r.Context(), feedbackID); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, model.DeleteResponse{Deleted: true, ID: feedbackID})
}

// ListByEntry handles GET /api/entries/{entryId}/feedback
func (h *FeedbackHandler) ListByEntry(w http.ResponseWriter, r *http.Request) {
	entryID := chi.URLParam(r, "entryId")
	if err := middleware.ValidateEntryID(entryID); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error(), CodeValidation, "")
		return
	}

	writeJSON(w, http.StatusOK, h.service.ListByEntry(r.Context(), entryID))
}
