// Package config provides centralized configuration loaded from environment
// variables. Shared by both cmd/ingest and cmd/api.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// --------------------------------------------------------------------------
// Source endpoints and fallback defaults
// --------------------------------------------------------------------------

const (
	DefaultFPLBaseURL       = "https://fantasy.premierleague.com/api"
	DefaultUnderstatBaseURL = "https://understat.com"

	// Understat serves a stripped-down page to clients without a browser
	// user agent, so the scrape client always sends one.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/126.0 Safari/537.36"

	DefaultFPLSleepSec       = 0.35
	DefaultUnderstatSleepSec = 2.5
	DefaultHTTPTimeoutSec    = 60
)

// Default Understat league and season when not overridden per call.
const (
	DefaultLeague = "EPL"
	DefaultSeason = 2023
)

// --------------------------------------------------------------------------
// Config struct — populated from environment variables
// --------------------------------------------------------------------------

type Config struct {
	// Upstream sources
	FPLBaseURL       string
	UnderstatBaseURL string
	UserAgent        string

	// Request discipline
	FPLPacing       time.Duration
	UnderstatPacing time.Duration
	HTTPTimeout     time.Duration

	// API server
	APIHost     string
	APIPort     int
	Environment string // development, staging, production

	// CORS
	CORSAllowOrigins []string

	// Cache
	CacheEnabled bool
}

// Load reads configuration from environment variables with sensible defaults.
// A pacing override that is present but not parseable as a float is a hard
// error here, not at first use.
func Load() (*Config, error) {
	fplSleep, err := envFloat("FPL_SLEEP_SEC", DefaultFPLSleepSec)
	if err != nil {
		return nil, err
	}
	understatSleep, err := envFloat("UNDERSTAT_SLEEP_SEC", DefaultUnderstatSleepSec)
	if err != nil {
		return nil, err
	}

	return &Config{
		FPLBaseURL:       envOr("FPL_BASE_URL", DefaultFPLBaseURL),
		UnderstatBaseURL: envOr("UNDERSTAT_BASE_URL", DefaultUnderstatBaseURL),
		UserAgent:        envOr("UNDERSTAT_USER_AGENT", DefaultUserAgent),

		FPLPacing:       secondsToDuration(fplSleep),
		UnderstatPacing: secondsToDuration(understatSleep),
		HTTPTimeout:     time.Duration(envInt("HTTP_TIMEOUT_SEC", DefaultHTTPTimeoutSec)) * time.Second,

		APIHost:     envOr("API_HOST", "0.0.0.0"),
		APIPort:     envInt("API_PORT", envInt("PORT", 8000)),
		Environment: envOr("ENVIRONMENT", "development"),

		CORSAllowOrigins: envList("CORS_ALLOW_ORIGINS", []string{
			"http://localhost:3000",
			"http://localhost:5173",
		}),

		CacheEnabled: envBool("CACHE_ENABLED", true),
	}, nil
}

// IsProduction returns true if running in production environment.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func secondsToDuration(sec float64) time.Duration {
	return time.Duration(sec * float64(time.Second))
}

// --------------------------------------------------------------------------
// Env helpers
// --------------------------------------------------------------------------

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return fallback
}

// envFloat reads a float override. Unlike envInt, a malformed value is an
// error rather than a silent fallback: a typo in a pacing knob must not turn
// into an unthrottled crawl.
func envFloat(key string, fallback float64) (float64, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("environment variable %s must be a float, got %q", key, v)
	}
	return f, nil
}

func envList(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}
