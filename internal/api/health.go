package api

import (
	"net/http"
	"time"

	"github.com/machi-events/eventfinder/internal/api/respond"
)

// HealthHandler handles health check endpoints
type HealthHandler struct {
	isHealthy  func() bool
	components func() map[string]bool
}

// NewHealthHandler reports the given service-level and per-component status.
// Nil functions report unhealthy with no components.
func NewHealthHandler(isHealthy func() bool, components func() map[string]bool) *HealthHandler {
	if isHealthy == nil {
		isHealthy = func() bool { return false }
	}
	if components == nil {
		components = func() map[string]bool { return map[string]bool{} }
	}
	return &HealthHandler{isHealthy: isHealthy, components: components}
}

// CheckHealth handles GET /api/health
// Always returns 200; body reports healthy/unhealthy. 500 indicates handler failure only.
func (h *HealthHandler) CheckHealth(w http.ResponseWriter, r *http.Request) {
	status := "unhealthy"
	if h.isHealthy() {
		status = "healthy"
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":     status,
		"components": h.components(),
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
	})
}
