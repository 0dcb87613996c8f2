// Package health runs readiness checks for a guardian engine.
//
// Checks are registered by name as required or optional. CheckReadiness runs
// them concurrently, each bounded by the checker timeout, and folds the
// results into a Report:
//
//   - ready: every check passed
//   - degraded: an optional check failed (e.g. the embedding endpoint is
//     down and bias scoring fell back to patterns)
//   - unhealthy: a required check failed
//
// Usage:
//
//	checker := health.New(2 * time.Second)
//	checker.RegisterCheck("rules", rulesCheck)
//	checker.RegisterOptionalCheck("audit", store.Ping)
//	report := checker.CheckReadiness(ctx)
package health
