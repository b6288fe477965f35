package handler

import (
	"net/http"
	"time"
)

const version = "1.0.0"

// ConnectionChecker reports whether a dependency is reachable.
type ConnectionChecker interface {
	IsConnected() bool
}

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	nats ConnectionChecker
}

// NewHealthHandler creates a new health handler. nats may be nil when the
// server runs without NATS.
func NewHealthHandler(nats ConnectionChecker) *HealthHandler {
	return &HealthHandler{nats: nats}
}

// Health handles GET /api/health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		"version":   version,
	})
}

// Ready handles GET /ready
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.nats != nil && !h.nats.IsConnected() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"reason": "NATS not connected",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
	})
}
