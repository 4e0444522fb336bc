package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/bengche/payvault-push/internal/config"
	"github.com/bengche/payvault-push/internal/database"
	"github.com/bengche/payvault-push/internal/dispatcher"
	"github.com/bengche/payvault-push/internal/notification"
	"github.com/bengche/payvault-push/internal/subscription"
	mw "github.com/bengche/payvault-push/pkg/middleware"
)

func main() {
	cfg := config.Load()

	// Initialize database connection
	db, err := database.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	log.Println("Connected to database successfully")

	// Delivery channel, optionally bridged over Redis so every API
	// instance can deliver to its own connections.
	var rdb *redis.Client
	if cfg.RedisURL != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisURL})
	}
	d := dispatcher.New(cfg.DispatchQueueCapacity, rdb)
	d.StartWorkers(cfg.DispatchWorkers)

	bridgeCtx, stopBridge := context.WithCancel(context.Background())
	defer stopBridge()
	if rdb != nil {
		go func() {
			if err := d.RunBridge(bridgeCtx); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("Dispatch bridge stopped: %v", err)
			}
		}()
	}

	// Sessions
	sessions := mw.NewMemorySessionStore()
	if cfg.DevUserID > 0 {
		log.Printf("Dev session for user %d: %s", cfg.DevUserID, sessions.Issue(cfg.DevUserID))
	}

	// Notification feature
	notificationRepo := notification.NewRepository(db)
	notificationService := notification.NewService(notificationRepo, d)
	notificationHandler := notification.NewHandler(notificationService)

	// Subscription feature
	subscriptionRepo := subscription.NewRepository(db)
	subscriptionService := subscription.NewService(subscriptionRepo, cfg.VAPIDPublicKey)
	subscriptionHandler := subscription.NewHandler(subscriptionService)

	// Delivery channel endpoint
	wsHandler := dispatcher.NewWSHandler(d.Registry)

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.AllowedOrigin},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	r.Route("/notifications", func(r chi.Router) {
		// The public key is fetched during setup, before any session
		// state exists.
		r.Get("/vapid-public-key", subscriptionHandler.VAPIDPublicKey)

		r.Group(func(r chi.Router) {
			r.Use(mw.SessionAuth(sessions))

			r.Get("/", notificationHandler.List)
			r.Patch("/{id}/read", notificationHandler.MarkRead)
			r.Patch("/read-all", notificationHandler.MarkAllRead)
			r.Post("/push", notificationHandler.Push)
			r.Post("/subscribe", subscriptionHandler.Subscribe)
			r.Delete("/subscribe", subscriptionHandler.Unsubscribe)
			r.Get("/ws", wsHandler.Serve)
		})
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-stop
	log.Println("Shutdown signal received. Starting graceful shutdown...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Stop accepting HTTP first, then drain the delivery channel.
	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("HTTP server shutdown error: %v", err)
	}
	stopBridge()
	d.Shutdown()

	log.Println("Server exited gracefully.")
}
