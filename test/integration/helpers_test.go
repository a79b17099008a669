package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Nyctonit/feature-flags-service/internal/domain"
	"github.com/Nyctonit/feature-flags-service/internal/http/handler"
	"github.com/Nyctonit/feature-flags-service/internal/http/middleware"
	"github.com/Nyctonit/feature-flags-service/internal/http/router"
	"github.com/Nyctonit/feature-flags-service/internal/repository"
	"github.com/Nyctonit/feature-flags-service/internal/service"
)

type apiEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *apiError       `json:"error"`
}

type apiError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details"`
}

type flagPayload struct {
	Name              string  `json:"name"`
	Enabled           bool    `json:"enabled"`
	RolloutPercentage float64 `json:"rollout_percentage"`
	Description       string  `json:"description"`
	CreatedAt         string  `json:"created_at"`
	UpdatedAt         string  `json:"updated_at"`
}

type serverOptions struct {
	rateLimiter *middleware.RateLimiter
}

func newFlagTestServer(t *testing.T, opts serverOptions) (string, *http.Client, func()) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&domain.FeatureFlag{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	repo := repository.NewFeatureFlagRepository(db)
	svc := service.NewFeatureFlagService(repo, service.NewNoopEvaluationCacheStore(), 0)

	deps := router.Dependencies{
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		FlagHandler: handler.NewFeatureFlagHandler(svc),
		Health:      handler.NewHealthHandler("test"),
		RateLimiter: opts.rateLimiter,
	}
	srv := httptest.NewServer(router.New(deps))
	return srv.URL, srv.Client(), srv.Close
}

func doJSON(t *testing.T, client *http.Client, method, url string, body any) (*http.Response, apiEnvelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	var env apiEnvelope
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil {
			t.Fatalf("decode envelope from %q: %v", raw, err)
		}
	}
	return resp, env
}

func decodeData(t *testing.T, env apiEnvelope, into any) {
	t.Helper()
	if env.Data == nil {
		t.Fatalf("envelope has no data")
	}
	if err := json.Unmarshal(env.Data, into); err != nil {
		t.Fatalf("decode data: %v", err)
	}
}
