package routes

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"traveldesk-backend/internal/config"
	"traveldesk-backend/internal/handlers"
	"traveldesk-backend/internal/middleware"
)

// Handlers groups everything SetupRoutes mounts
type Handlers struct {
	Health        *handlers.HealthHandler
	Auth          *handlers.AuthHandler
	GoogleAuth    *handlers.GoogleAuthHandler
	Bookings      *handlers.BookingsHandler
	EditRequests  *handlers.EditRequestsHandler
	Notifications *handlers.NotificationsHandler
	Realtime      *handlers.RealtimeHandler
}

// SetupRoutes configures all application routes on mux
func SetupRoutes(mux *http.ServeMux, h Handlers, cfg *config.Config) {
	auth := func(next http.HandlerFunc) http.HandlerFunc {
		return middleware.AuthMiddleware(next, &cfg.JWT)
	}

	// Health check routes
	mux.HandleFunc("GET /healthz", h.Health.HealthCheck)
	mux.HandleFunc("GET /livez", h.Health.LivenessCheck)
	mux.HandleFunc("GET /readyz", h.Health.ReadinessCheck)

	// Authentication routes
	mux.HandleFunc("GET /api/auth/me", auth(h.Auth.Me))
	if h.GoogleAuth != nil {
		mux.HandleFunc("GET /api/auth/google/login", h.GoogleAuth.GoogleLogin)
		mux.HandleFunc("GET /api/auth/google/callback", h.GoogleAuth.GoogleCallback)
	}

	// Booking routes
	mux.HandleFunc("GET /api/bookings", auth(h.Bookings.ListBookings))
	mux.HandleFunc("POST /api/bookings", auth(h.Bookings.CreateBooking))
	mux.HandleFunc("GET /api/bookings/{id}", auth(h.Bookings.GetBooking))
	mux.HandleFunc("PUT /api/bookings/{id}", auth(h.Bookings.UpdateBooking))
	mux.HandleFunc("DELETE /api/bookings/{id}", auth(h.Bookings.DeleteBooking))
	mux.HandleFunc("GET /api/bookings/{id}/activities", auth(h.Bookings.ListActivities))

	// Edit request routes
	mux.HandleFunc("POST /api/bookings/{id}/edit-requests", auth(h.EditRequests.CreateEditRequest))
	mux.HandleFunc("PUT /api/bookings/edit-requests/{requestId}", auth(h.EditRequests.ResolveEditRequest))

	// Notification routes
	mux.HandleFunc("GET /api/notifications", auth(h.Notifications.ListNotifications))
	mux.HandleFunc("PUT /api/notifications", auth(h.Notifications.MarkNotifications))

	// Realtime
	if h.Realtime != nil {
		mux.HandleFunc("GET /api/realtime", middleware.WebSocketAuthMiddleware(h.Realtime.Connect, &cfg.JWT))
	}

	// Swagger documentation
	mux.Handle("GET /swagger/", httpSwagger.WrapHandler)

	// Root route
	mux.HandleFunc("GET /{$}", rootHandler)
}

func rootHandler(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("Traveldesk backend is running."))
}
