package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rs/cors"

	"github.com/darkodi/url-alias/internal/alias"
	"github.com/darkodi/url-alias/internal/cache"
	"github.com/darkodi/url-alias/internal/config"
	"github.com/darkodi/url-alias/internal/handler"
	"github.com/darkodi/url-alias/internal/lazy"
	"github.com/darkodi/url-alias/internal/logger"
	"github.com/darkodi/url-alias/internal/middleware"
	"github.com/darkodi/url-alias/internal/model"
	"github.com/darkodi/url-alias/internal/pathgen"
	"github.com/darkodi/url-alias/internal/repository"
	"github.com/darkodi/url-alias/internal/service"
)

func main() {
	// ============================================================
	// LOAD CONFIGURATION
	// ============================================================
	fmt.Println("📋 Loading configuration...")
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	if cfg.IsDevelopment() {
		fmt.Printf("   Environment: %s\n", cfg.App.Environment)
		fmt.Printf("   Port: %s\n", cfg.Server.Port)
		fmt.Printf("   Database: %s (%s)\n", cfg.Database.DSN, cfg.Database.Driver)
		fmt.Printf("   Base URL: %s\n", cfg.App.BaseURL)
		fmt.Printf("   Path rules: %v\n", cfg.PathGen.Rules)
	}

	// ============================================================
	// Initialize logger
	// ============================================================
	log := logger.New(cfg.Log)
	log.Info("starting url-alias",
		"level", cfg.Log.Level,
		"format", cfg.Log.Format,
		"environment", cfg.App.Environment)

	// ============================================================
	// INITIALIZE LAYERS
	// ============================================================
	if cfg.Database.Driver == "sqlite3" && cfg.Database.DSN != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.Database.DSN), 0o755); err != nil {
			log.Error("Failed to create database directory", "error", err.Error())
			os.Exit(1)
		}
	}

	db, err := repository.Open(&cfg.Database)
	if err != nil {
		log.Error("Failed to initialize database", "error", err.Error())
		os.Exit(1)
	}

	ctx := context.Background()
	if cfg.App.SeedDemo {
		seeded, err := repository.SeedDemo(ctx, db)
		if err != nil {
			log.Error("Failed to seed demo content", "error", err.Error())
			os.Exit(1)
		}
		log.Info("demo content", "seeded", seeded)
	}

	locations := repository.NewLocationRepository(db)
	contents := repository.NewContentRepository(db)
	aliases := repository.NewAliasRepository(db)

	paths, err := pathgen.New(cfg.PathGen.Rules...)
	if err != nil {
		log.Error("Invalid path rules", "error", err.Error())
		os.Exit(1)
	}

	index, err := alias.New(locations, contents, paths, lazy.New(func() (model.AliasFixture, error) {
		return aliases.LoadFixture(ctx)
	}))
	if err != nil {
		log.Error("Failed to load alias index", "error", err.Error())
		os.Exit(1)
	}
	log.Info("alias index loaded", "records", index.Len())

	// ============================================================
	// INITIALIZE REDIS CACHE
	// ============================================================
	var lookupCache service.Cache
	if cfg.Redis.Enabled {
		log.Info("connecting to Redis...", "addr", cfg.Redis.Addr)
		redisCache, err := cache.NewRedisCache(&cfg.Redis)
		if err != nil {
			log.Error("Failed to connect to Redis", "error", err.Error())
			os.Exit(1)
		}
		defer func() {
			if err := redisCache.Close(); err != nil {
				log.Error("Failed to close Redis client", "error", err.Error())
			}
		}()
		// earlier runs may have cached lookups for a different index
		if err := redisCache.Invalidate(ctx); err != nil {
			log.Warn("Failed to reset lookup cache", "error", err.Error())
		}
		lookupCache = redisCache
		log.Info("Redis connected successfully!")
	}

	svc := service.NewAliasService(index, locations, contents, lookupCache, log)

	h := handler.NewAliasHandler(svc, log, cfg.IsDevelopment())
	router := h.SetupRoutes()

	// ============================================================
	// BUILD MIDDLEWARE CHAIN
	// ============================================================
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "Retry-After"},
		AllowCredentials: false,
	})

	middlewares := []middleware.Middleware{
		middleware.RequestID,
		middleware.RecoveryWithLogger(log),
		middleware.LoggingWithLogger(log),
		corsHandler.Handler,
	}
	// Add rate limiter if enabled
	if cfg.RateLimit.Enabled {
		rateLimiter := middleware.NewRateLimiter(
			middleware.RateLimiterConfig{
				Rate:     cfg.RateLimit.Rate,
				Burst:    cfg.RateLimit.Burst,
				Interval: cfg.RateLimit.Interval,
				Cleanup:  cfg.RateLimit.Cleanup,
			},
			log,
		)
		defer rateLimiter.Stop()
		middlewares = append(middlewares, rateLimiter.Middleware())
		log.Info("rate limiter enabled",
			"rate", cfg.RateLimit.Rate,
			"burst", cfg.RateLimit.Burst,
		)
	}

	wrappedRouter := middleware.Chain(router, middlewares...)

	// ============================================================
	// CREATE SERVER WITH CONFIG TIMEOUTS
	// ============================================================
	addr := ":" + cfg.Server.Port
	server := &http.Server{
		Addr:         addr,
		Handler:      wrappedRouter,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	// Channel to listen for shutdown signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Channel to track server errors
	serverErr := make(chan error, 1)

	// Start server in a goroutine
	go func() {
		if cfg.IsDevelopment() {
			fmt.Printf("🚀 Server starting on http://localhost%s\n", addr)
			fmt.Println("───────────────────────────────────────")
			fmt.Println("Endpoints:")
			fmt.Println("  GET    /r/{path}                  - Resolve an alias")
			fmt.Println("  GET    /api/aliases               - List global aliases")
			fmt.Println("  POST   /api/aliases               - Create custom alias")
			fmt.Println("  GET    /api/aliases/lookup?url=   - Look up a path")
			fmt.Println("  DELETE /api/aliases/{id}          - Remove custom alias")
			fmt.Println("  POST   /api/contents              - Create draft content")
			fmt.Println("  POST   /api/contents/{id}/publish - Publish content")
			fmt.Println("  POST   /api/locations             - Create location")
			fmt.Println("  PUT    /api/locations/{id}/parent - Move location")
			fmt.Println("  POST   /api/rollback              - Reset alias index")
			fmt.Println("  GET    /health                    - Health check")
			fmt.Println("───────────────────────────────────────")
			fmt.Println("Press Ctrl+C to shutdown gracefully")
		}
		log.Info("server starting", "addr", "http://localhost"+addr)
		serverErr <- server.ListenAndServe()
	}()

	// ============================================================
	// WAIT FOR SHUTDOWN OR ERROR
	// ============================================================
	select {
	case err := <-serverErr:
		log.Error("server error", "error", err.Error())
		_ = db.Close()
		os.Exit(1)

	case sig := <-shutdown:
		log.Info("shutdown signal received", "signal", sig.String())
		// Create context with timeout for shutdown
		shutdownCtx, cancel := context.WithTimeout(
			context.Background(),
			cfg.Server.ShutdownTimeout,
		)
		defer cancel()

		// Attempt graceful shutdown
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", "error", err.Error())
			// force close if graceful shutdown fails
			if err := server.Close(); err != nil {
				log.Error("forced shutdown failed", "error", err.Error())
			}
		}

		if err := db.Close(); err != nil {
			log.Error("failed to close database", "error", err.Error())
		}

		log.Info("server stopped")
	}
}
