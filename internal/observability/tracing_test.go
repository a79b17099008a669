package observability

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/Nyctonit/feature-flags-service/internal/config"
)

func TestInitTracingDisabledBranch(t *testing.T) {
	cfg := &config.Config{OTELTracingEnabled: false}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tp, err := InitTracing(context.Background(), cfg, logger)
	if err != nil {
		t.Fatalf("init tracing disabled: %v", err)
	}
	if tp == nil {
		t.Fatal("expected tracer provider")
	}
	_ = tp.Shutdown(context.Background())
}

func TestInitTracingExporterErrorBranch(t *testing.T) {
	cfg := &config.Config{
		OTELTracingEnabled:       true,
		OTELExporterOTLPEndpoint: "%",
		OTELExporterOTLPInsecure: true,
		OTELServiceName:          "svc",
		OTELEnvironment:          "test",
		OTELTraceSamplingRatio:   1.0,
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	if _, err := InitTracing(context.Background(), cfg, logger); err == nil {
		t.Fatal("expected tracing init error for invalid endpoint")
	}
}

func TestNormalizeOTLPEndpoint(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"localhost:4318", "localhost:4318", false},
		{"http://collector:4318", "collector:4318", false},
		{"", "", true},
		{"%", "", true},
	}
	for _, tc := range cases {
		got, err := normalizeOTLPEndpoint(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("normalizeOTLPEndpoint(%q): expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("normalizeOTLPEndpoint(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("normalizeOTLPEndpoint(%q)=%q want=%q", tc.in, got, tc.want)
		}
	}
}
