// Package metrics records guardian engine statistics.
//
// A Collector keeps mutex-guarded in-process counters, readable through
// Snapshot, and optionally mirrors them into Prometheus collectors on a
// private registry exposed by Handler.
//
// # Usage
//
//	collector := metrics.NewCollector(metrics.Options{Enabled: true}, nil)
//
//	collector.RecordAnalysis(metrics.KindContent, "safe", false, 3*time.Millisecond)
//	collector.RecordBias(true, time.Millisecond)
//	collector.RecordFailure(metrics.KindContent)
//	collector.RecordBatch(16)
//
//	snap := collector.Snapshot()
//	fmt.Println(snap.TotalAnalyses, snap.UnsafeRate())
//
// # Prometheus Metrics
//
//   - guardian_analyses_total{kind,risk_level}
//   - guardian_unsafe_total{kind}
//   - guardian_analysis_duration_seconds{kind}
//   - guardian_failures_total{kind}
//   - guardian_degraded_total
//   - guardian_bias_checks_total{outcome}
//   - guardian_bias_duration_seconds
//   - guardian_batch_items
package metrics
