package handlers

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"traveldesk-backend/internal/config"
	"traveldesk-backend/internal/realtime"
)

// RealtimeHandler upgrades authenticated requests to WebSocket sessions
type RealtimeHandler struct {
	hub      *realtime.Hub
	upgrader websocket.Upgrader
	session  realtime.SessionConfig
}

func NewRealtimeHandler(hub *realtime.Hub, cfg *config.Config) *RealtimeHandler {
	return &RealtimeHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(cfg.CORS.AllowedOrigins),
		},
		session: realtime.SessionConfig{
			PingInterval: cfg.Realtime.PingInterval,
			WriteTimeout: cfg.Realtime.WriteTimeout,
		},
	}
}

// Connect opens the event stream for the caller
// @Summary Realtime event stream
// @Description WebSocket upgrade. Token via Authorization header or, on this route only, ?token=. The socket is joined to user:<id>; send {"action":"join-booking-room","bookingId":...} or {"action":"join-bookings-feed"} for more topics.
// @Tags realtime
// @Param token query string false "Bearer token"
// @Success 101
// @Failure 401 {object} dto.ErrorResponse
// @Router /api/realtime [get]
func (h *RealtimeHandler) Connect(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response
		log.Printf("WebSocket upgrade failed: %v (user_id=%s)", err, caller.ID)
		return
	}
	log.Printf("Realtime client connected (user_id=%s)", caller.ID)
	realtime.Serve(r.Context(), conn, h.hub, caller.ID, h.session)
	log.Printf("Realtime client disconnected (user_id=%s)", caller.ID)
}

func originChecker(allowed []string) func(r *http.Request) bool {
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
	}
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}
