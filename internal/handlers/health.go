package handlers

import (
	"net/http"
)

// Version is reported by the health endpoint
const Version = "1.0.0"

// HandleHealthCheck handles GET /api/v1/health
func (h *Handler) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.handleMethodNotAllowed(w, http.MethodGet)
		return
	}

	status := "ok"
	cacheStatus := "disabled"

	if h.DB != nil {
		cacheStatus = "connected"
		if err := h.DB.HealthCheck(r.Context()); err != nil {
			status = "degraded"
			cacheStatus = "error"
		}
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    status,
		"version":   Version,
		"cache":     cacheStatus,
		"max_stops": h.MaxStops,
	})
}
