// Package telemetry groups guardian's observability packages.
//
//   - logging: slog loggers with child-PII redaction and context fields
//   - metrics: analysis counters, snapshots and Prometheus collectors
//   - tracing: OpenTelemetry spans on the host's tracer provider
//   - health: readiness checks for rules, audit storage and embeddings
package telemetry
