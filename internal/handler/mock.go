package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/capitalize-ai/mock-thread-api/internal/analytics"
	"github.com/capitalize-ai/mock-thread-api/internal/model"
	"github.com/capitalize-ai/mock-thread-api/internal/responder"
)

// MockHandler exposes generator configuration, scenarios and analytics.
type MockHandler struct {
	config  model.MockConfig
	catalog *responder.Catalog
	tracker *analytics.Tracker
}

// NewMockHandler creates a new mock handler.
func NewMockHandler(cfg model.MockConfig, catalog *responder.Catalog, tracker *analytics.Tracker) *MockHandler {
	return &MockHandler{
		config:  cfg,
		catalog: catalog,
		tracker: tracker,
	}
}

// Config handles GET /api/mock/config
func (h *MockHandler) Config(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.config)
}

// Scenarios handles GET /api/mock/scenarios
func (h *MockHandler) Scenarios(w http.ResponseWriter, r *http.Request) {
	scenarios := h.catalog.Scenarios()
	out := model.ListScenariosResponse{
		Scenarios: make([]model.ScenarioSummary, 0, len(scenarios)),
		Total:     len(scenarios),
	}
	for _, s := range scenarios {
		out.Scenarios = append(out.Scenarios, model.ScenarioSummary{
			Name:          s.Name,
			Description:   s.Description,
			ExchangeCount: len(s.Exchanges),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// Scenario handles GET /api/mock/scenarios/{name}
func (h *MockHandler) Scenario(w http.ResponseWriter, r *http.Request) {
	s, ok := h.catalog.Scenario(chi.URLParam(r, "name"))
	if !ok {
		writeError(w, r, http.StatusNotFound, "Scenario not found", CodeScenarioNotFound, "")
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// Analytics handles GET /api/mock/analytics
func (h *MockHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.tracker.Snapshot())
}

// ResetAnalytics handles DELETE /api/mock/analytics
func (h *MockHandler) ResetAnalytics(w http.ResponseWriter, r *http.Request) {
	h.tracker.Reset()
	writeJSON(w, http.StatusOK, map[string]string{
		"message":   "Analytics reset successfully",
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
	})
}
