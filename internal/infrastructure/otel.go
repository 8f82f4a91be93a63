package infrastructure

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"loanrisk/internal/config"
)

const (
	// ServiceName identifies this tool in trace output.
	ServiceName = "loanrisk-featuregen"
	// ServiceVersion is stamped on every trace resource.
	ServiceVersion = "1.0.0"
)

// InitializeTracing sets up an OpenTelemetry tracer provider with a
// stdout span exporter. A batch job has no scrape endpoint, so metric
// export is deliberately absent; spans cover the pipeline stages.
// The returned shutdown function flushes pending spans.
func InitializeTracing(cfg config.TracingConfig, logger *slog.Logger) (func(context.Context) error, error) {
	if !cfg.Enabled {
		otel.SetTracerProvider(noop.NewTracerProvider())
		return func(context.Context) error { return nil }, nil
	}

	exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(ServiceName),
		semconv.ServiceVersion(ServiceVersion),
		semconv.DeploymentEnvironmentName(cfg.Environment),
	)

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(provider)

	logger.Info("tracing initialized",
		slog.String("service", ServiceName),
		slog.String("environment", cfg.Environment))

	return provider.Shutdown, nil
}

// Tracer returns the tracer for pipeline instrumentation.
func Tracer() trace.Tracer {
	return otel.Tracer(ServiceName)
}
