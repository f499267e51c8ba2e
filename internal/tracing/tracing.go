// Package tracing provides an OpenTelemetry span helper, trimmed from
// this project's original TracingManager down to the two exporters the
// demo binary actually needs: a real OTLP/HTTP backend, or a no-op
// tracer when tracing is disabled. The Logger itself starts no spans;
// callers such as the demo binary open spans around their own work.
package tracing

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// Config configures the tracing provider.
type Config struct {
	Enabled      bool          `yaml:"enabled"`
	ServiceName  string        `yaml:"service_name"`
	Endpoint     string        `yaml:"endpoint"`
	SampleRate   float64       `yaml:"sample_rate"`
	BatchTimeout time.Duration `yaml:"batch_timeout"`
}

// DefaultConfig returns tracing disabled, matching the pipeline's
// default of no external dependencies until a caller opts in.
func DefaultConfig() Config {
	return Config{
		Enabled:      false,
		ServiceName:  "logflow",
		Endpoint:     "http://localhost:4318/v1/traces",
		SampleRate:   1.0,
		BatchTimeout: 5 * time.Second,
	}
}

// Manager owns the tracer behind StartSpan and the provider's shutdown,
// if one was started.
type Manager struct {
	config   Config
	logger   *logrus.Logger
	provider *trace.TracerProvider
	tracer   oteltrace.Tracer
}

// New builds a Manager. When cfg.Enabled is false the returned Manager
// wraps otel's no-op tracer, so callers can unconditionally call
// StartSpan without a nil check.
func New(cfg Config, logger *logrus.Logger) (*Manager, error) {
	if !cfg.Enabled {
		return &Manager{config: cfg, logger: logger, tracer: otel.Tracer("noop")}, nil
	}

	m := &Manager{config: cfg, logger: logger}
	exporter, err := otlptrace.New(context.Background(), otlptracehttp.NewClient(
		otlptracehttp.WithEndpoint(cfg.Endpoint),
	))
	if err != nil {
		return nil, fmt.Errorf("create trace exporter: %w", err)
	}

	res, err := resource.Merge(resource.Default(), resource.NewSchemaless(
		semconv.ServiceNameKey.String(cfg.ServiceName),
	))
	if err != nil {
		return nil, fmt.Errorf("build trace resource: %w", err)
	}

	m.provider = trace.NewTracerProvider(
		trace.WithBatcher(exporter, trace.WithBatchTimeout(cfg.BatchTimeout)),
		trace.WithResource(res),
		trace.WithSampler(trace.TraceIDRatioBased(cfg.SampleRate)),
	)
	otel.SetTracerProvider(m.provider)
	m.tracer = otel.Tracer(cfg.ServiceName)

	m.logger.WithFields(logrus.Fields{
		"service_name": cfg.ServiceName,
		"endpoint":     cfg.Endpoint,
	}).Info("tracing initialized")

	return m, nil
}

// StartSpan starts a span named "logflow." followed by op (the demo
// binary passes "demo.run").
func (m *Manager) StartSpan(ctx context.Context, op string) (context.Context, oteltrace.Span) {
	return m.tracer.Start(ctx, "logflow."+op)
}

// Shutdown flushes and stops the tracer provider, if one was started.
func (m *Manager) Shutdown(ctx context.Context) error {
	if m.provider == nil {
		return nil
	}
	return m.provider.Shutdown(ctx)
}
