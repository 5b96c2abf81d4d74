package api

import (
	"net/http"
	"time"

	respond "github.com/chasebfreeman/track-analyzer-pro/internal/api/respond"
)

// HealthHandler serves the liveness endpoint.
type HealthHandler struct{}

func NewHealthHandler() *HealthHandler { return &HealthHandler{} }

// serviceIsHealthy is bound by run.go to the aggregated checker state.
// Until then the endpoint reports unhealthy, which keeps load balancers
// away during startup.
var serviceIsHealthy = func() bool { return false }

// BindServiceHealth wires the service-level health source consulted by
// CheckHealth.
func BindServiceHealth(f func() bool) { serviceIsHealthy = f }

// CheckHealth handles GET /api/health. It always answers 200; the body
// reports healthy or unhealthy.
func (h *HealthHandler) CheckHealth(w http.ResponseWriter, _ *http.Request) {
	status := "unhealthy"
	if serviceIsHealthy() {
		status = "healthy"
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
