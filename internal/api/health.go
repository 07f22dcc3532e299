package api

import (
	"net/http"
	"time"

	"github.com/focusflow/focusflow/internal/api/respond"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	isHealthy func() bool
}

// NewHealthHandler creates a health handler over the injected health
// function (usually the store checker's).
func NewHealthHandler(isHealthy func() bool) *HealthHandler {
	if isHealthy == nil {
		isHealthy = func() bool { return true }
	}
	return &HealthHandler{isHealthy: isHealthy}
}

// CheckHealth handles GET /v0/health.
// Always returns 200; the body reports healthy/unhealthy. 500 indicates
// handler failure only.
func (h *HealthHandler) CheckHealth(w http.ResponseWriter, r *http.Request) {
	status := "unhealthy"
	if h.isHealthy() {
		status = "healthy"
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
