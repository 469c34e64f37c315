package api

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	corslib "github.com/rs/cors"

	"github.com/pitchdata/pitchdata/internal/api/handler"
	"github.com/pitchdata/pitchdata/internal/cache"
	"github.com/pitchdata/pitchdata/internal/config"
	"github.com/pitchdata/pitchdata/internal/dataset"
)

// NewRouter creates and configures the Chi router with all middleware and
// routes.
func NewRouter(svc *dataset.Service, appCache *cache.Cache, cfg *config.Config, logger *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	// --- Middleware stack ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(TimingMiddleware)
	r.Use(middleware.Compress(5)) // gzip

	// CORS
	c := corslib.New(corslib.Options{
		AllowedOrigins:   cfg.CORSAllowOrigins,
		AllowedMethods:   []string{"GET", "HEAD", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Accept-Encoding", "Content-Type", "If-None-Match", "Cache-Control"},
		ExposedHeaders:   []string{"X-Process-Time", "X-Cache", "ETag"},
		AllowCredentials: false,
	})
	r.Use(c.Handler)

	// --- Handler dependencies ---
	h := handler.New(svc, appCache, cfg, logger)

	// --- Routes ---
	r.Get("/", h.Root)
	r.Get("/health", h.HealthCheck)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/resources", h.ListResources)
		r.Get("/resources/{resource}", h.GetResource)
	})

	return r
}
