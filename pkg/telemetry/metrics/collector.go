package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Kinds of analysis reported to the collector.
const (
	KindContent    = "content"
	KindBias       = "bias"
	KindIntegrated = "integrated"
	KindBatch      = "batch"
)

// Options configure a Collector.
type Options struct {
	// Enabled registers Prometheus collectors. The in-process Snapshot
	// counters are kept either way.
	Enabled bool

	// Namespace prefixes every metric name.
	// Default: "guardian"
	Namespace string

	// DurationBuckets are the latency histogram buckets in seconds.
	DurationBuckets []float64
}

// Collector records engine statistics. Every method is safe for concurrent
// use, and a nil *Collector ignores all calls.
type Collector struct {
	opts     Options
	registry *prometheus.Registry

	analysisMetrics *AnalysisMetrics
	biasMetrics     *BiasMetrics

	mu    sync.Mutex
	stats Snapshot
}

// NewCollector creates a collector. If registry is nil a private registry
// is created, so several collectors can coexist in one process.
func NewCollector(opts Options, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	if opts.Namespace == "" {
		opts.Namespace = "guardian"
	}
	if len(opts.DurationBuckets) == 0 {
		// Analyses are pattern matching: sub-millisecond to a few hundred ms.
		opts.DurationBuckets = []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1}
	}

	c := &Collector{
		opts:     opts,
		registry: registry,
		stats:    newSnapshot(),
	}
	if opts.Enabled {
		c.analysisMetrics = NewAnalysisMetrics(opts, registry)
		c.biasMetrics = NewBiasMetrics(opts, registry)
	}
	return c
}

// RecordAnalysis records a completed content analysis.
func (c *Collector) RecordAnalysis(kind, risk string, unsafe bool, duration time.Duration) {
	if c == nil {
		return
	}

	c.mu.Lock()
	c.stats.TotalAnalyses++
	if unsafe {
		c.stats.UnsafeDetected++
	}
	c.stats.RiskCounts[risk]++
	c.stats.AverageProcessingMS = rollingMean(c.stats.AverageProcessingMS, durationMS(duration), c.stats.TotalAnalyses)
	c.mu.Unlock()

	if c.analysisMetrics != nil {
		c.analysisMetrics.RecordAnalysis(kind, risk, unsafe, duration)
	}
}

// RecordBias records a completed bias check.
func (c *Collector) RecordBias(hasBias bool, duration time.Duration) {
	if c == nil {
		return
	}

	c.mu.Lock()
	c.stats.BiasChecks++
	if hasBias {
		c.stats.BiasDetected++
	}
	c.stats.AverageBiasMS = rollingMean(c.stats.AverageBiasMS, durationMS(duration), c.stats.BiasChecks)
	c.mu.Unlock()

	if c.biasMetrics != nil {
		c.biasMetrics.RecordBias(hasBias, duration)
	}
}

// RecordFailure records an analysis that fell back to a fail-safe result.
func (c *Collector) RecordFailure(kind string) {
	if c == nil {
		return
	}

	c.mu.Lock()
	c.stats.Failures[kind]++
	c.mu.Unlock()

	if c.analysisMetrics != nil {
		c.analysisMetrics.RecordFailure(kind)
	}
}

// RecordDegraded records an analysis that exceeded its processing budget.
func (c *Collector) RecordDegraded() {
	if c == nil {
		return
	}

	c.mu.Lock()
	c.stats.Degraded++
	c.mu.Unlock()

	if c.analysisMetrics != nil {
		c.analysisMetrics.RecordDegraded()
	}
}

// RecordBatch records a batch of size items.
func (c *Collector) RecordBatch(size int) {
	if c == nil {
		return
	}

	c.mu.Lock()
	c.stats.Batches++
	c.stats.BatchItems += int64(size)
	c.mu.Unlock()

	if c.biasMetrics != nil {
		c.biasMetrics.RecordBatch(size)
	}
}

// Snapshot returns a copy of the in-process counters.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return newSnapshot()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats.clone()
}

// Reset clears the in-process counters. Prometheus counters are monotonic
// and are not affected.
func (c *Collector) Reset() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.stats = newSnapshot()
	c.mu.Unlock()
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

func durationMS(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}

func rollingMean(mean, sample float64, n int64) float64 {
	if n <= 0 {
		return 0
	}
	return mean + (sample-mean)/float64(n)
}
