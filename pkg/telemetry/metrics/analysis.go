package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// AnalysisMetrics tracks content-safety analyses.
//
// Metrics:
//   - guardian_analyses_total: analyses by kind and risk level
//   - guardian_unsafe_total: analyses judged unsafe, by kind
//   - guardian_analysis_duration_seconds: analysis latency histogram
//   - guardian_failures_total: fail-safe results by kind
//   - guardian_degraded_total: analyses over the latency budget
type AnalysisMetrics struct {
	analysesTotal *prometheus.CounterVec
	unsafeTotal   *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	failuresTotal *prometheus.CounterVec
	degradedTotal prometheus.Counter
}

// NewAnalysisMetrics creates and registers analysis metrics with the provided registry.
func NewAnalysisMetrics(opts Options, registry *prometheus.Registry) *AnalysisMetrics {
	am := &AnalysisMetrics{
		analysesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: opts.Namespace,
				Name:      "analyses_total",
				Help:      "Total number of content analyses",
			},
			[]string{"kind", "risk_level"},
		),

		unsafeTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: opts.Namespace,
				Name:      "unsafe_total",
				Help:      "Total number of analyses judged unsafe",
			},
			[]string{"kind"},
		),

		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: opts.Namespace,
				Name:      "analysis_duration_seconds",
				Help:      "Duration of analyses in seconds",
				Buckets:   opts.DurationBuckets,
			},
			[]string{"kind"},
		),

		failuresTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: opts.Namespace,
				Name:      "failures_total",
				Help:      "Total number of analyses that fell back to a fail-safe result",
			},
			[]string{"kind"},
		),

		degradedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: opts.Namespace,
				Name:      "degraded_total",
				Help:      "Total number of analyses that exceeded the processing budget",
			},
		),
	}

	registry.MustRegister(
		am.analysesTotal,
		am.unsafeTotal,
		am.duration,
		am.failuresTotal,
		am.degradedTotal,
	)

	return am
}

// RecordAnalysis records one completed analysis.
func (am *AnalysisMetrics) RecordAnalysis(kind, risk string, unsafe bool, duration time.Duration) {
	am.analysesTotal.WithLabelValues(kind, risk).Inc()
	if unsafe {
		am.unsafeTotal.WithLabelValues(kind).Inc()
	}
	am.duration.WithLabelValues(kind).Observe(duration.Seconds())
}

// RecordFailure records a fail-safe result.
func (am *AnalysisMetrics) RecordFailure(kind string) {
	am.failuresTotal.WithLabelValues(kind).Inc()
}

// RecordDegraded records an analysis over budget.
func (am *AnalysisMetrics) RecordDegraded() {
	am.degradedTotal.Inc()
}
