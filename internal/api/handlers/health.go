package handlers

import (
	"eco-route-service/internal/services"
	"net/http"
)

type HealthHandler struct {
	Planner *services.Planner
}

// Health is the liveness check; it also reports how many sessions are open.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": h.Planner.SessionCount(),
	})
}
