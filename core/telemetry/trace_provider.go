package telemetry

import (
	"context"
	"fmt"

	"github.com/anoideaopen/fastreflect/core/config"
	"github.com/anoideaopen/fastreflect/core/logger"
	"github.com/anoideaopen/fastreflect/version"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// InstrumentationName names the tracer of the library.
const InstrumentationName = "github.com/anoideaopen/fastreflect"

// InstallTraceProvider sets the global trace provider based on http otlp exporter.
// Without an endpoint a no-op provider is installed.
func InstallTraceProvider(settings config.Tracing) error {
	var tracerProvider trace.TracerProvider = noop.NewTracerProvider()

	defer func() {
		otel.SetTracerProvider(tracerProvider)
		otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))
	}()

	if !settings.Enabled() {
		return nil
	}

	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(settings.Endpoint)}
	if settings.CACerts != "" {
		tlsCfg, err := getTLSConfig(settings.CACerts)
		if err != nil {
			return err
		}
		opts = append(opts, otlptracehttp.WithTLSClientConfig(tlsCfg))
	} else {
		opts = append(opts, otlptracehttp.WithInsecure())
	}

	exporter, err := otlptrace.New(context.Background(), otlptracehttp.NewClient(opts...))
	if err != nil {
		return fmt.Errorf("creating OTLP trace exporter: %w", err)
	}

	r, err := newResource(settings.ServiceName)
	if err != nil {
		return fmt.Errorf("creating resource: %w", err)
	}

	tracerProvider = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(r))

	logger.Logger().WithField("endpoint", settings.Endpoint).Info("trace provider installed")

	return nil
}

// newResource describes the service on top of the SDK defaults.
func newResource(serviceName string) (*resource.Resource, error) {
	return resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(version.Version())))
}

// Tracer returns the tracer of the library from the global provider.
func Tracer() trace.Tracer {
	return otel.Tracer(InstrumentationName)
}
