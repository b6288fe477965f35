package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/capitalize-ai/mock-thread-api/internal/middleware"
	"github.com/capitalize-ai/mock-thread-api/internal/model"
	"github.com/capitalize-ai/mock-thread-api/internal/service"
	"github.com/capitalize-ai/mock-thread-api/pkg/logger"
)

// UserHandler handles user registry endpoints.
type UserHandler struct {
	service *service.UserService
	logger  *logger.Logger
}

// NewUserHandler creates a new user handler.
func NewUserHandler(svc *service.UserService, log *logger.Logger) *UserHandler {
	return &UserHandler{
		service: svc,
		logger:  log,
	}
}

// List handles GET /api/user
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.List(r.Context()))
}

// Create handles POST /api/user
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeValidationError(w, r, err)
		return
	}
	if err := middleware.ValidateStruct(req); err != nil {
		writeValidationError(w, r, err)
		return
	}

	u, err := h.service.Create(r.Context(), &req)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, u)
}

// Get handles GET /api/user/{id}
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	if err := middleware.ValidateUserID(userID); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error(), CodeValidation, "")
		return
	}

	u, err := h.service.Get(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, u)
}

// Delete handles DELETE /api/user/{id}
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	if err := middleware.ValidateUserID(userID); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error(), CodeValidation, "")
		return
	}

	if err := h.service.Delete(r.Context(), userID); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, model.DeleteResponse{Deleted: true, ID: userID})
}
