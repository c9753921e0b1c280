package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"
	_ "github.com/lib/pq"

	"Apiverse/internal/api/middleware"
	"Apiverse/internal/api/routes"
	"Apiverse/internal/config"
	"Apiverse/internal/core/listings"
	"Apiverse/internal/core/upvotes"
	"Apiverse/internal/db/memory"
	"Apiverse/internal/db/migrations"
	postgresRepo "Apiverse/internal/db/postgres"
	"Apiverse/internal/metrics"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	cfg, err := config.LoadServer(*configPath)
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	var (
		listingRepo listings.Repository
		upvoteRepo  upvotes.Repository
	)

	switch cfg.StorageDriver {
	case config.StorageDriverPostgres:
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			log.Fatal("Failed to connect to database:", err)
		}
		defer func() {
			if closeErr := db.Close(); closeErr != nil {
				log.Printf("Failed to close database: %v", closeErr)
			}
		}()

		if err := db.Ping(); err != nil {
			log.Fatal("Failed to ping database:", err)
		}
		log.Println("Connected to listings database")

		if err := migrations.Up(context.Background(), db, logger); err != nil {
			log.Fatal("Failed to run migrations:", err)
		}
		log.Println("Migrations completed successfully")

		listingRepo = postgresRepo.NewListingRepository(db)
		upvoteRepo = postgresRepo.NewUpvoteRepository(db)

	case config.StorageDriverMemory:
		store := memory.NewStore()
		memory.Seed(store, time.Now())
		listingRepo = store
		upvoteRepo = store
		log.Println("Using in-memory listing store with seed data")
	}

	listingService := listings.NewService(listingRepo)
	upvoteService := upvotes.NewService(upvoteRepo, upvotes.Options{
		EnforceUniqueLikes: cfg.EnforceUniqueLikes,
	}, logger)

	// Cookie sessions are only read when a secret is configured
	var sessionStore sessions.Store
	if cfg.SessionSecret != "" {
		cookieStore := sessions.NewCookieStore([]byte(cfg.SessionSecret))
		cookieStore.Options = &sessions.Options{
			Path:     "/",
			MaxAge:   86400 * 30,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		}
		sessionStore = cookieStore
	}
	authMiddleware := middleware.NewIdentityAuthMiddleware([]byte(cfg.JWTSecret), sessionStore, cfg.SessionName)
	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow)
	defer rateLimiter.Stop()
	m := metrics.New("apiverse")

	r := chi.NewRouter()

	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)

	routes.RegisterListingRoutes(r, listingService, upvoteService, authMiddleware, rateLimiter, m)

	r.Handle("/metrics", m.Handler())
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			log.Printf("Failed to write health response: %v", err)
		}
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("apiverse server starting",
			"port", cfg.Port,
			"storage", cfg.StorageDriver,
			"enforce_unique_likes", cfg.EnforceUniqueLikes)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed:", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Graceful shutdown failed: %v", err)
	}
}
