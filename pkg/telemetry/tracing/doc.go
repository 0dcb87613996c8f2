// Package tracing creates OpenTelemetry spans for guardian analyses.
//
// Spans go to whatever provider the host process installed with
// otel.SetTracerProvider. When tracing is disabled a no-op tracer is used
// and span calls cost almost nothing.
//
//	tracer := tracing.New(cfg.Telemetry.Tracing)
//	ctx, span := tracer.Start(ctx, "guardian.analyze_content")
//	defer span.End()
//	tracing.SetRequestAttributes(span, cc.SessionID, cc.ChildAge, len(text))
package tracing
