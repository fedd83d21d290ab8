// Package telemetry configures the global OpenTelemetry tracer provider.
package telemetry

import (
	"context"
	"encoding/base64"
	"strings"

	"github.com/blaisecz/cognitive-sync/internal/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Exporter describes where spans are sent.
type Exporter struct {
	EndpointURL string
	Headers     map[string]string
	// Stdout pretty-prints spans instead of sending them.
	Stdout bool
}

// ExporterFor picks the span destination: an explicit OTLP endpoint wins,
// otherwise Langfuse's OTel endpoint when Langfuse is configured. ok is false
// when tracing should stay a no-op.
func ExporterFor(cfg *config.Config) (exp Exporter, ok bool) {
	if cfg.OTLPEndpoint != "" {
		return Exporter{EndpointURL: strings.TrimSuffix(cfg.OTLPEndpoint, "/") + "/v1/traces"}, true
	}
	if cfg.LangfuseEnabled() {
		auth := base64.StdEncoding.EncodeToString([]byte(cfg.LangfusePublicKey + ":" + cfg.LangfuseSecretKey))
		return Exporter{
			EndpointURL: strings.TrimSuffix(cfg.LangfuseBaseURL, "/") + "/api/public/otel/v1/traces",
			Headers:     map[string]string{"Authorization": "Basic " + auth},
		}, true
	}
	if cfg.TraceStdout {
		return Exporter{Stdout: true}, true
	}
	return Exporter{}, false
}

// InitTracer installs a batching tracer provider and returns its shutdown
// function. Without a destination the default no-op provider is kept.
func InitTracer(ctx context.Context, cfg *config.Config) (func(context.Context) error, error) {
	exp, ok := ExporterFor(cfg)
	if !ok {
		return func(context.Context) error { return nil }, nil
	}

	exporter, err := newSpanExporter(ctx, exp)
	if err != nil {
		return nil, err
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			attribute.String("service.name", cfg.ServiceName),
			attribute.String("deployment.environment", cfg.LangfuseEnv),
			attribute.String("langfuse.environment", cfg.LangfuseEnv),
		),
	)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	return tp.Shutdown, nil
}

func newSpanExporter(ctx context.Context, exp Exporter) (sdktrace.SpanExporter, error) {
	if exp.Stdout {
		return stdouttrace.New(stdouttrace.WithPrettyPrint())
	}
	opts := []otlptracehttp.Option{otlptracehttp.WithEndpointURL(exp.EndpointURL)}
	if len(exp.Headers) > 0 {
		opts = append(opts, otlptracehttp.WithHeaders(exp.Headers))
	}
	return otlptracehttp.New(ctx, opts...)
}
