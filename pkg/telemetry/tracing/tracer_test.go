package tracing

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"aiteddy-hq/guardian/pkg/config"
)

func TestNew_Disabled(t *testing.T) {
	tracer := New(config.TracingConfig{Enabled: false})
	ctx, span := tracer.Start(context.Background(), "op")
	defer span.End()

	if span.SpanContext().IsValid() {
		t.Error("disabled tracer produced a recording span")
	}
	if TraceID(ctx) != "" {
		t.Errorf("TraceID = %q, want empty", TraceID(ctx))
	}
}

func TestFromProvider_RecordsAttributes(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	tracer := FromProvider(tp, "test")

	ctx, span := tracer.Start(context.Background(), "guardian.analyze_content")
	SetRequestAttributes(span, "sess-1", 6, 42)
	SetDecisionAttributes(span, "id-1", "safe", "educational", true, false)
	SetBiasAttributes(span, "pattern", false, 0.1)
	SetStatus(span, nil)
	if TraceID(ctx) == "" {
		t.Error("TraceID empty for a recording span")
	}
	span.End()

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	attrs := make(map[string]any)
	for _, kv := range spans[0].Attributes() {
		attrs[string(kv.Key)] = kv.Value.AsInterface()
	}
	if attrs[AttrChildAge] != int64(6) {
		t.Errorf("%s = %v", AttrChildAge, attrs[AttrChildAge])
	}
	if attrs[AttrRiskLevel] != "safe" || attrs[AttrIsSafe] != true {
		t.Errorf("decision attributes = %v", attrs)
	}
	if attrs[AttrSessionID] != "sess-1" {
		t.Errorf("%s = %v", AttrSessionID, attrs[AttrSessionID])
	}
	if spans[0].Status().Code != codes.Ok {
		t.Errorf("status = %v", spans[0].Status())
	}
}

func TestSetError(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	_, span := FromProvider(tp, "").Start(context.Background(), "op")
	SetError(span, nil)
	SetError(span, errors.New("boom"))
	SetStatus(span, errors.New("boom"))
	span.End()

	got := recorder.Ended()[0]
	if got.Status().Code != codes.Error {
		t.Errorf("status = %v, want error", got.Status())
	}
	if len(got.Events()) != 1 {
		t.Errorf("recorded %d events, want 1 exception", len(got.Events()))
	}
}
