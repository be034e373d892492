package handlers

import (
	"net/http"

	"crestmont/internal/services"
)

// HealthHandler exposes the liveness endpoint
type HealthHandler struct {
	health *services.HealthService
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(health *services.HealthService) *HealthHandler {
	return &HealthHandler{health: health}
}

// Check handles GET /health
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	result := h.health.Check()
	status := http.StatusOK
	if result.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}
	WriteJSON(w, status, APIResponse{Success: result.Status == "healthy", Message: "Health check", Data: result})
}
