package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// BiasMetrics tracks bias checks and batches.
//
// Metrics:
//   - guardian_bias_checks_total: bias checks by outcome
//   - guardian_bias_duration_seconds: bias check latency histogram
//   - guardian_batch_items: batch size histogram
type BiasMetrics struct {
	checksTotal *prometheus.CounterVec
	duration    prometheus.Histogram
	batchItems  prometheus.Histogram
}

// NewBiasMetrics creates and registers bias and batch metrics.
func NewBiasMetrics(opts Options, registry *prometheus.Registry) *BiasMetrics {
	bm := &BiasMetrics{
		checksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: opts.Namespace,
				Name:      "bias_checks_total",
				Help:      "Total number of bias checks by outcome",
			},
			[]string{"outcome"},
		),

		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: opts.Namespace,
				Name:      "bias_duration_seconds",
				Help:      "Duration of bias checks in seconds",
				Buckets:   opts.DurationBuckets,
			},
		),

		batchItems: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: opts.Namespace,
				Name:      "batch_items",
				Help:      "Number of items per batch",
				Buckets:   prometheus.ExponentialBuckets(1, 2, 10), // 1 to 512
			},
		),
	}

	registry.MustRegister(bm.checksTotal, bm.duration, bm.batchItems)
	return bm
}

// RecordBias records one bias check.
func (bm *BiasMetrics) RecordBias(hasBias bool, duration time.Duration) {
	outcome := "clean"
	if hasBias {
		outcome = "biased"
	}
	bm.checksTotal.WithLabelValues(outcome).Inc()
	bm.duration.Observe(duration.Seconds())
}

// RecordBatch records a batch of size items.
func (bm *BiasMetrics) RecordBatch(size int) {
	bm.batchItems.Observe(float64(size))
}
