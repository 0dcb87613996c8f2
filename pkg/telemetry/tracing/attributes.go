package tracing

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys use the "guardian.*" namespace. Reply text and child
// names are never attached to spans.
const (
	AttrAnalysisID = "guardian.analysis_id"
	AttrSessionID  = "guardian.session_id"
	AttrChildAge   = "guardian.child_age"
	AttrTextLength = "guardian.text.length"

	AttrRiskLevel = "guardian.risk_level"
	AttrIsSafe    = "guardian.is_safe"
	AttrCategory  = "guardian.content_category"
	AttrDegraded  = "guardian.degraded"

	AttrHasBias   = "guardian.bias.detected"
	AttrBiasScore = "guardian.bias.score"
	AttrMethod    = "guardian.bias.method"

	AttrBatchSize = "guardian.batch.size"

	AttrErrorMessage = "error.message"
)

// SetRequestAttributes records who an analysis is for.
func SetRequestAttributes(span trace.Span, sessionID string, childAge, textLength int) {
	attrs := []attribute.KeyValue{
		attribute.Int(AttrChildAge, childAge),
		attribute.Int(AttrTextLength, textLength),
	}
	if sessionID != "" {
		attrs = append(attrs, attribute.String(AttrSessionID, sessionID))
	}
	span.SetAttributes(attrs...)
}

// SetDecisionAttributes records a content decision.
func SetDecisionAttributes(span trace.Span, analysisID, risk, category string, safe, degraded bool) {
	span.SetAttributes(
		attribute.String(AttrAnalysisID, analysisID),
		attribute.String(AttrRiskLevel, risk),
		attribute.String(AttrCategory, category),
		attribute.Bool(AttrIsSafe, safe),
		attribute.Bool(AttrDegraded, degraded),
	)
}

// SetBiasAttributes records a bias decision.
func SetBiasAttributes(span trace.Span, method string, hasBias bool, score float64) {
	span.SetAttributes(
		attribute.String(AttrMethod, method),
		attribute.Bool(AttrHasBias, hasBias),
		attribute.Float64(AttrBiasScore, score),
	)
}

// SetBatchAttributes records the size of a batch.
func SetBatchAttributes(span trace.Span, size int) {
	span.SetAttributes(attribute.Int(AttrBatchSize, size))
}
