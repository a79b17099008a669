package di

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/Nyctonit/feature-flags-service/internal/config"
	"github.com/Nyctonit/feature-flags-service/internal/service"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestProvideHTTPServer(t *testing.T) {
	cfg := &config.Config{HTTPPort: "9999"}

	srv := provideHTTPServer(cfg, nil)

	if srv.Addr != ":9999" {
		t.Fatalf("expected addr :9999, got %s", srv.Addr)
	}
	if srv.ReadTimeout != 10*time.Second {
		t.Fatalf("expected read timeout 10s, got %v", srv.ReadTimeout)
	}
	if srv.Handler == nil {
		t.Fatalf("expected instrumented handler")
	}
}

func TestProvideRedisClientUnconfigured(t *testing.T) {
	client, err := provideRedisClient(&config.Config{}, discardLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client != nil {
		t.Fatalf("expected nil client without REDIS_URL")
	}
}

func TestProvideRedisClientBadURL(t *testing.T) {
	cfg := &config.Config{RedisURL: "://not-a-url"}
	if _, err := provideRedisClient(cfg, discardLogger()); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestProvideEvaluationCacheStore(t *testing.T) {
	if _, ok := provideEvaluationCacheStore(&config.Config{}, nil).(*service.NoopEvaluationCacheStore); !ok {
		t.Fatalf("expected noop store when caching is disabled")
	}

	cfg := &config.Config{EvalCacheTTL: time.Minute}
	if _, ok := provideEvaluationCacheStore(cfg, nil).(*service.InMemoryEvaluationCacheStore); !ok {
		t.Fatalf("expected in-memory store without redis")
	}
}

func TestProvideRateLimiterLocalFallback(t *testing.T) {
	cfg := &config.Config{APIRateLimitPerMin: 5}
	if provideRateLimiter(cfg, nil) == nil {
		t.Fatalf("expected a rate limiter")
	}
}
