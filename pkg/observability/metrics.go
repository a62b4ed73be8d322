package observability

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	ServiceName string
	// Registerer defaults to the Prometheus default registry.
	Registerer prometheus.Registerer
	// Gatherer backs the returned handler; defaults to the default registry.
	Gatherer prometheus.Gatherer
}

// InitMetrics initializes the Prometheus metrics exporter and installs the
// MeterProvider globally. Returns the provider and an HTTP handler for the
// /metrics endpoint.
func InitMetrics(cfg MetricsConfig) (*sdkmetric.MeterProvider, http.Handler, error) {
	var opts []promexporter.Option
	if cfg.Registerer != nil {
		opts = append(opts, promexporter.WithRegisterer(cfg.Registerer))
	}
	exporter, err := promexporter.New(opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("observability: prometheus exporter: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
	)
	otel.SetMeterProvider(provider)

	handler := promhttp.Handler()
	if cfg.Gatherer != nil {
		handler = promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})
	}

	return provider, handler, nil
}

// ScoringMetrics records the outcome of each scoring service.
type ScoringMetrics struct {
	scores   metric.Float64Histogram
	verdicts metric.Int64Counter
}

// NewScoringMetrics registers the scoring instruments on meter.
func NewScoringMetrics(meter metric.Meter) (*ScoringMetrics, error) {
	scores, err := meter.Float64Histogram(
		"underwriting_score",
		metric.WithDescription("Distribution of scores produced by the scoring services"),
		metric.WithExplicitBucketBoundaries(10, 20, 30, 40, 50, 60, 70, 80, 90, 100),
	)
	if err != nil {
		return nil, fmt.Errorf("observability: score histogram: %w", err)
	}
	verdicts, err := meter.Int64Counter(
		"underwriting_verdicts_total",
		metric.WithDescription("Scoring verdicts by service and outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("observability: verdict counter: %w", err)
	}
	return &ScoringMetrics{scores: scores, verdicts: verdicts}, nil
}

// Record adds one observation for service with the given verdict label,
// for example ("appetite", "referral").
func (m *ScoringMetrics) Record(ctx context.Context, service string, score int, verdict string) {
	if m == nil {
		return
	}
	svc := attribute.String("service", service)
	m.scores.Record(ctx, float64(score), metric.WithAttributes(svc))
	m.verdicts.Add(ctx, 1, metric.WithAttributes(svc, attribute.String("verdict", verdict)))
}
