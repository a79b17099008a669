package observability

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/Nyctonit/feature-flags-service/internal/config"
)

const meterName = "feature-flags-service"

// InitMetrics wires the global meter provider. Disabled metrics still return
// a provider (readerless) so shutdown stays uniform.
func InitMetrics(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*sdkmetric.MeterProvider, error) {
	if !cfg.OTELMetricsEnabled {
		mp := sdkmetric.NewMeterProvider()
		otel.SetMeterProvider(mp)
		logger.Debug("metrics disabled")
		return mp, nil
	}

	endpoint, err := normalizeOTLPEndpoint(cfg.OTELExporterOTLPEndpoint)
	if err != nil {
		return nil, err
	}
	opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(endpoint)}
	if cfg.OTELExporterOTLPInsecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create otlp metric exporter: %w", err)
	}

	res, err := buildResource(ctx, cfg)
	if err != nil {
		return nil, err
	}
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)
	logger.Info("metrics enabled", "endpoint", endpoint)
	return mp, nil
}

var (
	instrumentsOnce sync.Once
	repositoryOps   metric.Int64Counter
	flagEvaluations metric.Int64Counter
	evalCacheEvents metric.Int64Counter
)

func instruments() {
	instrumentsOnce.Do(func() {
		meter := otel.Meter(meterName)
		repositoryOps, _ = meter.Int64Counter("repository_operations_total",
			metric.WithDescription("Repository operations by entity, operation and outcome"))
		flagEvaluations, _ = meter.Int64Counter("flag_evaluations_total",
			metric.WithDescription("Flag evaluation outcomes"))
		evalCacheEvents, _ = meter.Int64Counter("flag_evaluation_cache_events_total",
			metric.WithDescription("Evaluation cache hits and misses"))
	})
}

func RecordRepositoryOperation(ctx context.Context, entity, operation, outcome string) {
	instruments()
	repositoryOps.Add(ctx, 1, metric.WithAttributes(
		attribute.String("entity", entity),
		attribute.String("operation", operation),
		attribute.String("outcome", outcome),
	))
}

func RecordFlagEvaluation(ctx context.Context, outcome string) {
	instruments()
	flagEvaluations.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func RecordEvaluationCacheEvent(ctx context.Context, event string) {
	instruments()
	evalCacheEvents.Add(ctx, 1, metric.WithAttributes(attribute.String("event", event)))
}
