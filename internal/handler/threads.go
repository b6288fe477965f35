package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/capitalize-ai/mock-thread-api/internal/middleware"
	"github.com/capitalize-ai/mock-thread-api/internal/model"
	"github.com/capitalize-ai/mock-thread-api/internal/service"
	"github.com/capitalize-ai/mock-thread-api/pkg/logger"
)

// ThreadHandler handles thread endpoints.
type ThreadHandler struct {
	threads  *service.ThreadService
	feedback *service.FeedbackService
	logger   *logger.Logger
}

// NewThreadHandler creates a new thread handler.
func NewThreadHandler(threads *service.ThreadService, feedback *service.FeedbackService, log *logger.Logger) *ThreadHandler {
	return &ThreadHandler{
		threads:  threads,
		feedback: feedback,
		logger:   log,
	}
}

// Post handles POST /api/threads
func (h *ThreadHandler) Post(w http.ResponseWriter, r *http.Request) {
	var req model.PostThreadRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeValidationError(w, r, err)
		return
	}
	if err := middleware.ValidateStruct(req); err != nil {
		writeValidationError(w, r, err)
		return
	}
	if err := middleware.ValidateMessage(req.Message); err != nil {
		writeValidationError(w, r, err)
		return
	}

	thread, err := h.threads.Post(r.Context(), service.PostThreadInput{
		ThreadID: req.ThreadID,
		UserID:   req.UserID,
		Message:  req.Message,
	})
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, thread)
}

// List handles GET /api/threads
func (h *ThreadHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.threads.List(r.Context()))
}

// Get handles GET /api/threads/{id}
func (h *ThreadHandler) Get(w http.ResponseWriter, r *http.Request) {
	threadID, ok := threadIDParam(w, r)
	if !ok {
		return
	}

	thread, err := h.threads.Get(r.Context(), threadID)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, thread)
}

// Delete handles DELETE /api/threads/{id}
func (h *ThreadHandler) Delete(w http.ResponseWriter, r *http.Request) {
	threadID, ok := threadIDParam(w, r)
	if !ok {
		return
	}

	if err := h.threads.Delete(r.Context(), threadID); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, model.DeleteResponse{Deleted: true, ID: threadID})
}

// Feedback handles GET /api/threads/{id}/feedback
func (h *ThreadHandler) Feedback(w http.ResponseWriter, r *http.Request) {
	threadID, ok := threadIDParam(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.feedback.ListByThread(r.Context(), threadID))
}

// FeedbackCounts handles GET /api/threads/{id}/feedback/counts
func (h *ThreadHandler) FeedbackCounts(w http.ResponseWriter, r *http.Request) {
	threadID, ok := threadIDParam(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.feedback.ThreadCounts(r.Context(), threadID))
}

// EventsResponse is the body of GET /api/threads/{id}/events.
type EventsResponse struct {
	Events       []model.ThreadEvent `json:"events"`
	LastSequence uint64              `json:"last_sequence"`
	HasMore      bool                `json:"has_more"`
}

// Events handles GET /api/threads/{id}/events
// Supports ?after_sequence=N and ?limit=N for paging through the event stream.
func (h *ThreadHandler) Events(w http.ResponseWriter, r *http.Request) {
	threadID, ok := threadIDParam(w, r)
	if !ok {
		return
	}

	var afterSequence uint64
	if seq := r.URL.Query().Get("after_sequence"); seq != "" {
		if parsed, err := strconv.ParseUint(seq, 10, 64); err == nil {
			afterSequence = parsed
		}
	}
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 500 {
			limit = parsed
		}
	}

	events, last, hasMore, err := h.threads.Events(r.Context(), threadID, afterSequence, limit)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, EventsResponse{
		Events:       events,
		LastSequence: last,
		HasMore:      hasMore,
	})
}

func threadIDParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	threadID := chi.URLParam(r, "id")
	if err := middleware.ValidateThreadID(threadID); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error(), CodeValidation, "")
		return "", false
	}
	return threadID, true
}
