// Package telemetry sets up tracing and error reporting. Both are optional
// and stay disabled when their endpoint is not configured.
package telemetry

import (
	"context"
	"time"

	"github.com/getsentry/sentry-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"

	"github.com/anonto42/codecircle/backend/pkg/logger"
)

const ServiceName = "codecircle-backend"

// Options selects which telemetry sinks are enabled.
type Options struct {
	Env          string
	SentryDSN    string
	OTLPEndpoint string
}

// Telemetry owns the initialized sinks.
type Telemetry struct {
	tracerProvider *sdktrace.TracerProvider
	sentry         bool
}

// Init starts the configured sinks. The returned Telemetry is never nil and
// Shutdown must be called on exit.
func Init(ctx context.Context, opts Options) (*Telemetry, error) {
	t := &Telemetry{}

	if opts.OTLPEndpoint != "" {
		exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(opts.OTLPEndpoint))
		if err != nil {
			return t, err
		}
		res := resource.NewSchemaless(
			attribute.String("service.name", ServiceName),
			attribute.String("deployment.environment", opts.Env),
		)
		t.tracerProvider = sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(exporter),
			sdktrace.WithResource(res),
		)
		otel.SetTracerProvider(t.tracerProvider)
		otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		))
		logger.Info("tracing enabled", zap.String("endpoint", opts.OTLPEndpoint))
	}

	if opts.SentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:              opts.SentryDSN,
			Environment:      opts.Env,
			AttachStacktrace: true,
		})
		if err != nil {
			return t, err
		}
		t.sentry = true
		logger.Info("sentry enabled")
	}

	return t, nil
}

// TracingEnabled reports whether spans are exported.
func (t *Telemetry) TracingEnabled() bool {
	return t.tracerProvider != nil
}

// Shutdown flushes pending spans and events.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	if t.sentry {
		sentry.Flush(2 * time.Second)
	}
	if t.tracerProvider != nil {
		return t.tracerProvider.Shutdown(ctx)
	}
	return nil
}

// CaptureError reports err to Sentry. It is a no-op when Sentry is not set up.
func CaptureError(err error) {
	if sentry.CurrentHub().Client() == nil {
		return
	}
	sentry.CaptureException(err)
}
