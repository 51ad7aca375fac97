package config

import (
	"strings"
	"testing"
	"time"
)

// setRequired puts the minimum viable environment in place.
func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("FEEDBACK_BASE_URL", "https://feedback.example.com")
	t.Setenv("FEEDBACK_API_KEY", "k")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DBPath != "feedback.db" {
		t.Fatalf("DBPath = %q", cfg.DBPath)
	}
	if cfg.LogLevel != "info" || cfg.LogPretty {
		t.Fatalf("logging defaults wrong: %q pretty=%v", cfg.LogLevel, cfg.LogPretty)
	}
	if cfg.RateRPS != 0 || cfg.RateBurst != 1 {
		t.Fatalf("rate defaults wrong: rps=%v burst=%d", cfg.RateRPS, cfg.RateBurst)
	}
	if cfg.Timeout != 10*time.Second {
		t.Fatalf("Timeout = %v", cfg.Timeout)
	}
	if cfg.OTEL.Enabled || cfg.OTEL.SampleRatio != 1.0 || !cfg.OTEL.Insecure {
		t.Fatalf("otel defaults wrong: %+v", cfg.OTEL)
	}
	if cfg.OTEL.ServiceName != "go-feedback-sdk" {
		t.Fatalf("ServiceName = %q", cfg.OTEL.ServiceName)
	}
}

func TestLoad_RequiresBaseURLAndKey(t *testing.T) {
	t.Setenv("FEEDBACK_BASE_URL", "")
	t.Setenv("FEEDBACK_API_KEY", "")
	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "FEEDBACK_BASE_URL") {
		t.Fatalf("err = %v, want base URL complaint", err)
	}

	t.Setenv("FEEDBACK_BASE_URL", "https://feedback.example.com")
	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "FEEDBACK_API_KEY") {
		t.Fatalf("err = %v, want api key complaint", err)
	}
}

func TestLoad_RejectsRelativeBaseURL(t *testing.T) {
	setRequired(t)
	t.Setenv("FEEDBACK_BASE_URL", "feedback.example.com/api")

	if _, err := Load(); err == nil {
		t.Fatal("relative base URL must be rejected")
	}
}

func TestLoad_NormalizesBaseURLAndLogLevel(t *testing.T) {
	setRequired(t)
	t.Setenv("FEEDBACK_BASE_URL", " https://feedback.example.com/ ")
	t.Setenv("LOG_LEVEL", "WARNING")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BaseURL != "https://feedback.example.com" {
		t.Fatalf("BaseURL = %q, want trimmed form", cfg.BaseURL)
	}
	if cfg.LogLevel != "warn" {
		t.Fatalf("LogLevel = %q, want warn", cfg.LogLevel)
	}
}

func TestLoad_RejectsUnknownLogLevel(t *testing.T) {
	setRequired(t)
	t.Setenv("LOG_LEVEL", "verbose")

	if _, err := Load(); err == nil {
		t.Fatal("unknown log level must be rejected")
	}
}

func TestLoad_ValidatesRateAndTimeout(t *testing.T) {
	setRequired(t)

	t.Setenv("RATE_RPS", "-1")
	if _, err := Load(); err == nil {
		t.Fatal("negative RATE_RPS must be rejected")
	}
	t.Setenv("RATE_RPS", "2.5")

	t.Setenv("RATE_BURST", "0")
	if _, err := Load(); err == nil {
		t.Fatal("RATE_BURST below 1 must be rejected")
	}
	t.Setenv("RATE_BURST", "4")

	t.Setenv("HTTP_TIMEOUT", "-3s")
	if _, err := Load(); err == nil {
		t.Fatal("non-positive HTTP_TIMEOUT must be rejected")
	}
	t.Setenv("HTTP_TIMEOUT", "30s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.RateRPS != 2.5 || cfg.RateBurst != 4 || cfg.Timeout != 30*time.Second {
		t.Fatalf("parsed values wrong: %+v", cfg)
	}
}

func TestLoad_ValidatesSampleRatio(t *testing.T) {
	setRequired(t)
	t.Setenv("OTEL_TRACES_SAMPLER_ARG", "1.5")

	if _, err := Load(); err == nil {
		t.Fatal("sample ratio above 1 must be rejected")
	}
}

func TestLoad_BadNumbersFallBackToDefaults(t *testing.T) {
	setRequired(t)
	t.Setenv("RATE_BURST", "lots")
	t.Setenv("HTTP_TIMEOUT", "soon")
	t.Setenv("LOG_PRETTY", "maybe")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.RateBurst != 1 || cfg.Timeout != 10*time.Second || cfg.LogPretty {
		t.Fatalf("unparseable values should fall back: %+v", cfg)
	}
}
