package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"aiteddy-hq/guardian/pkg/config"
)

// DefaultTracerName is used when the configuration names no service.
const DefaultTracerName = "guardian"

// New returns a tracer from the globally installed provider, or a no-op
// tracer when tracing is disabled. Exporter setup belongs to the host
// process; guardian only creates spans.
func New(cfg config.TracingConfig) trace.Tracer {
	if !cfg.Enabled {
		return noop.NewTracerProvider().Tracer(DefaultTracerName)
	}
	name := cfg.ServiceName
	if name == "" {
		name = DefaultTracerName
	}
	return otel.Tracer(name)
}

// FromProvider returns a tracer from an explicit provider.
func FromProvider(tp trace.TracerProvider, name string) trace.Tracer {
	if tp == nil {
		return noop.NewTracerProvider().Tracer(DefaultTracerName)
	}
	if name == "" {
		name = DefaultTracerName
	}
	return tp.Tracer(name)
}

// TraceID returns the trace ID from the context as a string, or "".
func TraceID(ctx context.Context) string {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return ""
	}
	return sc.TraceID().String()
}

// SetError marks the span as failed and records the error.
func SetError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.SetAttributes(
		attribute.Bool("error", true),
		attribute.String(AttrErrorMessage, err.Error()),
	)
	span.RecordError(err)
}

// SetStatus sets the span status based on an error.
// If err is nil, status is set to OK, otherwise to Error.
func SetStatus(span trace.Span, err error) {
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
}
