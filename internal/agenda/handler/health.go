package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	apphttp "recolhe/pkg/http"
	"recolhe/pkg/logger"
)

type HealthResponse struct {
	Status string `json:"status"`
	Ledger string `json:"ledger,omitempty"`
}

// ReadinessCheck reports whether the ledger backend can serve traffic.
type ReadinessCheck func(ctx context.Context) error

type HealthHandler struct {
	ready ReadinessCheck
	log   *logger.Logger
}

func NewHealthHandler(ready ReadinessCheck, log *logger.Logger) *HealthHandler {
	return &HealthHandler{ready: ready, log: log}
}

func (h *HealthHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/health", h.Health)
	router.GET("/ready", h.Ready)
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := apphttp.WriteJSON(w, http.StatusOK, HealthResponse{Status: "ok"}); err != nil {
		h.log.Error("failed to write JSON response", "handler", "Health", "error", err)
	}
}

func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if h.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := h.ready(ctx); err != nil {
			h.log.Error("Ledger readiness check failed", "error", err, "path", r.URL.Path)
			if writeErr := apphttp.WriteJSON(w, http.StatusServiceUnavailable, HealthResponse{
				Status: "unavailable",
				Ledger: "error",
			}); writeErr != nil {
				h.log.Error("failed to write JSON response", "handler", "Ready", "error", writeErr)
			}
			return
		}
	}

	if err := apphttp.WriteJSON(w, http.StatusOK, HealthResponse{
		Status: "ready",
		Ledger: "ok",
	}); err != nil {
		h.log.Error("failed to write JSON response", "handler", "Ready", "error", err)
	}
}
