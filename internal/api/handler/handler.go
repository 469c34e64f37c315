// Package handler provides HTTP handlers for all API endpoints. Handlers
// build resources live through the dataset service and cache the serialized
// result; there is no persistent storage behind them.
package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pitchdata/pitchdata/internal/api/respond"
	"github.com/pitchdata/pitchdata/internal/cache"
	"github.com/pitchdata/pitchdata/internal/config"
	"github.com/pitchdata/pitchdata/internal/dataset"
	"github.com/pitchdata/pitchdata/internal/provider/understat"
)

// Handler holds shared dependencies for all endpoint handlers.
type Handler struct {
	svc    *dataset.Service
	cache  *cache.Cache
	cfg    *config.Config
	logger *slog.Logger
}

// New creates a Handler with shared dependencies.
func New(svc *dataset.Service, c *cache.Cache, cfg *config.Config, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{svc: svc, cache: c, cfg: cfg, logger: logger}
}

// Root serves API info at /.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"name":      "pitchdata API",
		"version":   "1.0.0",
		"status":    "running",
		"resources": dataset.Resources(),
	})
}

// HealthCheck returns basic health status plus cache statistics.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"cache":     h.cache.Stats(),
	})
}

// ListResources returns the buildable resource names.
func (h *Handler) ListResources(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"resources": dataset.Resources(),
	})
}

// GetResource builds a named resource live and returns it as JSON. Tables
// serialize as {columns, rows}; bootstrap and fixtures pass through the
// upstream payload verbatim.
func (h *Handler) GetResource(w http.ResponseWriter, r *http.Request) {
	resource := chi.URLParam(r, "resource")
	if !knownResource(resource) {
		respond.WriteError(w, http.StatusNotFound, "UNKNOWN_RESOURCE", "unknown resource: "+resource)
		return
	}

	opts, err := parseOptions(r)
	if err != nil {
		respond.WriteError(w, http.StatusBadRequest, "BAD_PARAMETER", err.Error())
		return
	}

	ttl := resourceTTL(resource)
	key := cacheKey(resource, opts)

	if data, etag, ok := h.cache.Get(key); ok {
		if r.Header.Get("If-None-Match") == etag {
			respond.WriteNotModified(w, etag)
			return
		}
		respond.WriteJSON(w, data, etag, ttl, true)
		return
	}

	result, err := h.svc.Build(r.Context(), resource, opts)
	if err != nil {
		h.logger.Error("resource build failed", "resource", resource, "error", err)
		if errors.Is(err, understat.ErrPayloadNotLocated) {
			respond.WriteError(w, http.StatusBadGateway, "PAYLOAD_NOT_LOCATED", err.Error())
			return
		}
		respond.WriteError(w, http.StatusBadGateway, "UPSTREAM_FAILURE", err.Error())
		return
	}

	data, err := result.MarshalJSON()
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "ENCODE_FAILURE", err.Error())
		return
	}

	etag := h.cache.Set(key, data, ttl)
	if r.Header.Get("If-None-Match") == etag {
		respond.WriteNotModified(w, etag)
		return
	}
	respond.WriteJSON(w, data, etag, ttl, false)
}

func knownResource(name string) bool {
	for _, r := range dataset.Resources() {
		if r == name {
			return true
		}
	}
	return false
}

func resourceTTL(resource string) time.Duration {
	switch resource {
	case dataset.ResourceFPLBootstrap:
		return cache.TTLBootstrap
	case dataset.ResourceFPLFixtures:
		return cache.TTLFixtures
	default:
		return cache.TTLTables
	}
}

func cacheKey(resource string, opts dataset.Options) string {
	return resource + "|" + opts.League + "|" + strconv.Itoa(opts.Season) + "|" + strconv.Itoa(opts.Limit)
}

func parseOptions(r *http.Request) (dataset.Options, error) {
	var opts dataset.Options
	q := r.URL.Query()
	opts.League = q.Get("league")
	if v := q.Get("season"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return opts, errors.New("season must be an integer")
		}
		opts.Season = n
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return opts, errors.New("limit must be a non-negative integer")
		}
		opts.Limit = n
	}
	return opts, nil
}
