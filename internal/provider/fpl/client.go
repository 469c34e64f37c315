// Package fpl provides the HTTP client for the official Fantasy Premier
// League API.
//
// The API is unauthenticated JSON over GET. Pacing between requests is
// handled via a token bucket limiter so per-player fan-outs stay polite.
package fpl

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Client is the HTTP client for FPL endpoints.
type Client struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithTimeout overrides the HTTP client timeout (default 60s).
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithLogger sets the client logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient creates an FPL HTTP client. Pass an existing *http.Client to
// compose multiple calls on one connection pool; nil creates a fresh one.
// pacing is the minimum interval between successive requests (zero disables
// pacing).
func NewClient(httpClient *http.Client, baseURL string, pacing time.Duration, opts ...Option) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	limit := rate.Inf
	if pacing > 0 {
		limit = rate.Every(pacing)
	}
	c := &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		limiter:    rate.NewLimiter(limit, 1),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetJSON performs a paced GET against an FPL resource path and returns the
// JSON body verbatim. Non-2xx status is a hard failure; no coercion happens
// at this layer.
func (c *Client) GetJSON(ctx context.Context, path string) (json.RawMessage, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	u := c.baseURL + path

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("FPL %s returned %d: %s", path, resp.StatusCode, truncate(body, 200))
	}

	if !json.Valid(body) {
		return nil, fmt.Errorf("FPL %s returned invalid JSON", path)
	}

	c.logger.Debug("fetched FPL resource", "path", path, "bytes", len(body))
	return json.RawMessage(body), nil
}

// Bootstrap fetches /bootstrap-static/ — the season-wide payload holding
// elements (players), teams, and events.
func (c *Client) Bootstrap(ctx context.Context) (json.RawMessage, error) {
	return c.GetJSON(ctx, "/bootstrap-static/")
}

// Fixtures fetches /fixtures/ — the full fixture list as a JSON array.
func (c *Client) Fixtures(ctx context.Context) (json.RawMessage, error) {
	return c.GetJSON(ctx, "/fixtures/")
}

// PlayerHistory fetches /element-summary/{id}/ and decodes the per-gameweek
// history array. Records keep their raw heterogeneous shape; normalization
// happens downstream.
func (c *Client) PlayerHistory(ctx context.Context, elementID int) ([]map[string]interface{}, error) {
	raw, err := c.GetJSON(ctx, fmt.Sprintf("/element-summary/%d/", elementID))
	if err != nil {
		return nil, err
	}
	var payload struct {
		History []map[string]interface{} `json:"history"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decode element-summary %d: %w", elementID, err)
	}
	return payload.History, nil
}

// ElementIDs decodes the player ids from a bootstrap payload, in API order.
func ElementIDs(bootstrap json.RawMessage) ([]int, error) {
	var payload struct {
		Elements []struct {
			ID int `json:"id"`
		} `json:"elements"`
	}
	if err := json.Unmarshal(bootstrap, &payload); err != nil {
		return nil, fmt.Errorf("decode bootstrap elements: %w", err)
	}
	ids := make([]int, 0, len(payload.Elements))
	for _, e := range payload.Elements {
		ids = append(ids, e.ID)
	}
	return ids, nil
}

// truncate returns a truncated string representation for error messages.
func truncate(b []byte, maxLen int) string {
	if len(b) <= maxLen {
		return string(b)
	}
	return string(b[:maxLen]) + "..."
}
