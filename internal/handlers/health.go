package handlers

import (
	"context"
	"net/http"
	"time"

	"traveldesk-backend/internal/dto"
	"traveldesk-backend/internal/utils"
)

// Pinger is anything the readiness check can ping
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles health check related requests
type HealthHandler struct {
	store  Pinger
	broker Pinger
}

// NewHealthHandler creates a new HealthHandler instance
func NewHealthHandler(store, broker Pinger) *HealthHandler {
	return &HealthHandler{store: store, broker: broker}
}

// HealthCheck handles basic health check (no dependencies)
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSONResponse(w, http.StatusOK, dto.HealthResponse{Status: "ok"})
}

// LivenessCheck handles process liveness check
func (h *HealthHandler) LivenessCheck(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSONResponse(w, http.StatusOK, dto.HealthResponse{Status: "alive"})
}

// ReadinessCheck checks the store and the realtime broker. A broker outage
// degrades push delivery only, so it is reported without failing readiness.
func (h *HealthHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	details := map[string]string{"store": "ok", "broker": "ok"}
	if h.broker != nil {
		if err := h.broker.Ping(ctx); err != nil {
			details["broker"] = err.Error()
		}
	}

	if err := h.store.Ping(ctx); err != nil {
		details["store"] = err.Error()
		utils.WriteJSONResponse(w, http.StatusServiceUnavailable, dto.HealthResponse{
			Status:  "degraded",
			Details: details,
		})
		return
	}

	utils.WriteJSONResponse(w, http.StatusOK, dto.HealthResponse{
		Status:  "ready",
		Details: details,
	})
}
