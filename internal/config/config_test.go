package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/flags_test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTPPort != "8080" {
		t.Fatalf("unexpected port: %s", cfg.HTTPPort)
	}
	if cfg.APIRateLimitPerMin != 120 {
		t.Fatalf("unexpected rate limit: %d", cfg.APIRateLimitPerMin)
	}
	if cfg.EvalCacheTTL != 0 {
		t.Fatalf("caching should default off, got %v", cfg.EvalCacheTTL)
	}
	if cfg.OTELTracingEnabled || cfg.OTELMetricsEnabled {
		t.Fatal("otel exporters should default off")
	}
	if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "*" {
		t.Fatalf("unexpected cors origins: %v", cfg.CORSAllowedOrigins)
	}
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "DATABASE_URL") {
		t.Fatalf("expected DATABASE_URL error, got %v", err)
	}
}

func TestLoadParsesEvalCacheTTL(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/flags_test")
	t.Setenv("EVAL_CACHE_TTL", "30s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.EvalCacheTTL != 30*time.Second {
		t.Fatalf("unexpected ttl: %v", cfg.EvalCacheTTL)
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := &Config{APIRateLimitPerMin: 0, EvalCacheTTL: -time.Second, OTELTraceSamplingRatio: 2}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"DATABASE_URL", "API_RATE_LIMIT_PER_MIN", "EVAL_CACHE_TTL", "OTEL_TRACE_SAMPLING_RATIO"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("expected %s in error, got %v", want, err)
		}
	}
}
