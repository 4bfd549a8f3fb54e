// @title Traveldesk Backend API
// @version 1.0
// @description Travel agency back office: bookings, edit-permission requests, notifications and realtime events.

// @host localhost:8080
// @BasePath /
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

package main

import (
	"context"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/cors"

	_ "traveldesk-backend/docs" // This is required for swagger
	"traveldesk-backend/internal/config"
	"traveldesk-backend/internal/handlers"
	"traveldesk-backend/internal/realtime"
	"traveldesk-backend/internal/routes"
	"traveldesk-backend/internal/services"
	"traveldesk-backend/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatalf("store: %v", err)
	}
	defer st.Close()

	// --- Realtime ---
	// The broker is subscribed before the server accepts connections.
	hub := realtime.NewHub(cfg.Realtime.ClientBuffer)
	var broker realtime.Broker
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()

		redisBroker := realtime.NewRedisBroker(rdb, hub, cfg.Redis.ChannelPrefix)
		if err := redisBroker.Start(ctx); err != nil {
			log.Fatalf("realtime broker: %v", err)
		}
		log.Printf("Redis broker initialized with address: %s", cfg.Redis.Addr)
		broker = redisBroker
	} else {
		broker = realtime.NewLocalBroker(hub)
	}

	dispatcher := realtime.NewDispatcher(broker, cfg.Realtime.QueueSize, cfg.Realtime.PublishTimeout)
	go dispatcher.Run(ctx)

	// --- Services ---
	notificationService := services.NewNotificationService(st, dispatcher)
	bookingService := services.NewBookingService(st, dispatcher)
	editRequestService := services.NewEditRequestService(st, notificationService, dispatcher)

	// --- HTTP Handlers ---
	h := routes.Handlers{
		Health:        handlers.NewHealthHandler(st, broker),
		Auth:          handlers.NewAuthHandler(),
		Bookings:      handlers.NewBookingsHandler(bookingService),
		EditRequests:  handlers.NewEditRequestsHandler(editRequestService),
		Notifications: handlers.NewNotificationsHandler(notificationService),
		Realtime:      handlers.NewRealtimeHandler(hub, cfg),
	}
	if cfg.IsGoogleOAuthConfigured() {
		h.GoogleAuth = handlers.NewGoogleAuthHandler(cfg)
	}

	mux := http.NewServeMux()
	routes.SetupRoutes(mux, h, cfg)

	// Setup CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   cfg.CORS.AllowedMethods,
		AllowedHeaders:   cfg.CORS.AllowedHeaders,
		AllowCredentials: cfg.CORS.AllowCredentials,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           c.Handler(mux),
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go func() {
		log.Printf("HTTP server listening on :%s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	if n := dispatcher.Dropped(); n > 0 {
		log.Printf("Realtime events dropped during run: %d", n)
	}
	log.Println("Server stopped.")
}

func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	if cfg.Store.Driver == "memory" {
		log.Println("Using in-memory store")
		return store.NewMemory(), nil
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.GetDSN())
	if err != nil {
		return nil, err
	}
	// simple protocol is needed behind PgBouncer in transaction mode
	if cfg.Database.SimpleProtocol {
		poolCfg.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol
	}
	poolCfg.ConnConfig.RuntimeParams["application_name"] = "traveldesk-backend"
	poolCfg.MaxConns = cfg.Database.MaxConns
	poolCfg.MinConns = cfg.Database.MinConns
	poolCfg.MaxConnLifetime = cfg.Database.MaxLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, err
	}

	pg := store.NewPostgres(pool, cfg.Database.QueryTimeout)
	if err := pg.Migrate(pingCtx); err != nil {
		pool.Close()
		return nil, err
	}
	log.Printf("Connected to PostgreSQL (host=%s, db=%s)", cfg.Database.Host, cfg.Database.Name)
	return pg, nil
}
