package handler

import (
	"net/http"
	"time"

	"github.com/yndnr/tokgate/internal/telemetry/logger"
)

// handleHealth handles GET /health.
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, HealthResponse{
		Status: "healthy",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}

// handleReady handles GET /ready.
func (h *Handler) handleReady(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status: "ready",
		Time:   time.Now().UTC().Format(time.RFC3339),
	}
	if h.ready != nil {
		if err := h.ready(r.Context()); err != nil {
			logger.L(r.Context()).Warn("readiness check failed", "error", err)
			resp.Status = "not_ready"
			resp.Error = err.Error()
			h.writeJSON(w, r, http.StatusServiceUnavailable, resp)
			return
		}
	}
	h.writeJSON(w, r, http.StatusOK, resp)
}
