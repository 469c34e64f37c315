// Command api is the pitchdata HTTP API server. It exposes the same
// resources the CLI builds, fetched live from the upstream sources and
// cached in memory.
//
// Usage:
//
//	pitchdata-api
//	API_PORT=8080 pitchdata-api
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"github.com/pitchdata/pitchdata/internal/api"
	"github.com/pitchdata/pitchdata/internal/cache"
	"github.com/pitchdata/pitchdata/internal/config"
	"github.com/pitchdata/pitchdata/internal/dataset"
	"github.com/pitchdata/pitchdata/internal/provider/fpl"
	"github.com/pitchdata/pitchdata/internal/provider/understat"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	// Load .env if present
	_ = godotenv.Load(".env")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	// Shared source clients: one connection pool and one pacing state per
	// source for the server's lifetime.
	svc := &dataset.Service{
		FPL:           fpl.NewClient(nil, cfg.FPLBaseURL, cfg.FPLPacing, fpl.WithTimeout(cfg.HTTPTimeout), fpl.WithLogger(logger)),
		Understat:     understat.NewClient(nil, cfg.UnderstatBaseURL, cfg.UserAgent, cfg.UnderstatPacing, logger),
		FPLPacing:     cfg.FPLPacing,
		DefaultLeague: config.DefaultLeague,
		DefaultSeason: config.DefaultSeason,
	}

	// Initialize cache
	appCache := cache.New(cfg.CacheEnabled)
	logger.Info("Cache initialized", "enabled", cfg.CacheEnabled)

	// Create router
	router := api.NewRouter(svc, appCache, cfg, logger)

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.APIHost, cfg.APIPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 2 * time.Minute, // live fan-out builds are slow by design
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	go func() {
		logger.Info("Starting pitchdata API",
			"addr", addr,
			"environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt
	<-ctx.Done()
	logger.Info("Shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error", "error", err)
	}
	logger.Info("Server stopped")
}
