// Package config provides SDK configuration loaded from environment
// variables with defaults and validation. It centralizes the deployment
// parameters an embedding application needs: service endpoint and API key,
// identity storage path, logging, client-side rate limiting, and
// observability.
package config

import (
	"errors"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// Config holds all configuration values for the SDK.
type Config struct {
	// Service
	BaseURL   string // FEEDBACK_BASE_URL, e.g. https://feedback.example.com
	APIKey    string // FEEDBACK_API_KEY, sent as a bearer token
	UserEmail string // FEEDBACK_USER_EMAIL, optional contact field
	UserName  string // FEEDBACK_USER_NAME, optional display name

	// Identity persistence
	DBPath string // SQLite path for the anonymous identity store

	// Logging
	LogLevel  string // debug|info|warn|error|fatal|panic
	LogPretty bool   // pretty console logs in dev

	// Client-side throttling (0 disables)
	RateRPS   float64 // outbound requests per second
	RateBurst int     // bucket size (>= 1)

	// HTTP
	Timeout time.Duration // per-call bound; defaults to the client's fixed 10s

	// Observability
	OTEL OTELConfig
}

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from environment variables, applies defaults,
// normalizes values, and validates the result.
func Load() (Config, error) {
	cfg := Config{
		BaseURL:   getenv("FEEDBACK_BASE_URL", ""),
		APIKey:    getenv("FEEDBACK_API_KEY", ""),
		UserEmail: getenv("FEEDBACK_USER_EMAIL", ""),
		UserName:  getenv("FEEDBACK_USER_NAME", ""),

		DBPath: getenv("DB_PATH", "feedback.db"),

		LogLevel:  strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty: getbool("LOG_PRETTY", false),

		RateRPS:   getfloat("RATE_RPS", 0),
		RateBurst: getint("RATE_BURST", 1),

		Timeout: getdur("HTTP_TIMEOUT", 10*time.Second),

		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "go-feedback-sdk"),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}

	// --- normalization ---
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")

	// --- validation ---
	if cfg.BaseURL == "" {
		return cfg, errors.New("FEEDBACK_BASE_URL must not be empty")
	}
	if u, err := url.Parse(cfg.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return cfg, errors.New("FEEDBACK_BASE_URL must be an absolute URL")
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return cfg, errors.New("FEEDBACK_API_KEY must not be empty")
	}
	if strings.TrimSpace(cfg.DBPath) == "" {
		return cfg, errors.New("DB_PATH must not be empty")
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return cfg, errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	if cfg.RateRPS < 0 {
		return cfg, errors.New("RATE_RPS must be >= 0")
	}
	if cfg.RateBurst < 1 {
		return cfg, errors.New("RATE_BURST must be >= 1")
	}
	if cfg.Timeout <= 0 {
		return cfg, errors.New("HTTP_TIMEOUT must be a positive duration")
	}
	if cfg.OTEL.SampleRatio < 0 || cfg.OTEL.SampleRatio > 1 {
		return cfg, errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}

	return cfg, nil
}

// ---- helpers (no external deps) ----

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getint(k string, def int) int {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
