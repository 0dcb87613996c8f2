package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func newTestCollector() *Collector {
	return NewCollector(Options{Enabled: true, Namespace: "test"}, prometheus.NewRegistry())
}

func TestCollector_RecordAnalysis(t *testing.T) {
	c := newTestCollector()

	c.RecordAnalysis(KindContent, "safe", false, 2*time.Millisecond)
	c.RecordAnalysis(KindContent, "high_risk", true, 4*time.Millisecond)

	snap := c.Snapshot()
	if snap.TotalAnalyses != 2 || snap.UnsafeDetected != 1 {
		t.Errorf("totals = %d/%d, want 2/1", snap.TotalAnalyses, snap.UnsafeDetected)
	}
	if snap.RiskCounts["high_risk"] != 1 {
		t.Errorf("high_risk count = %d", snap.RiskCounts["high_risk"])
	}
	if snap.AverageProcessingMS != 3 {
		t.Errorf("AverageProcessingMS = %v, want 3", snap.AverageProcessingMS)
	}
	if snap.UnsafeRate() != 0.5 {
		t.Errorf("UnsafeRate = %v", snap.UnsafeRate())
	}

	if got := testutil.ToFloat64(c.analysisMetrics.analysesTotal.WithLabelValues(KindContent, "safe")); got != 1 {
		t.Errorf("analyses_total{safe} = %v", got)
	}
	if got := testutil.ToFloat64(c.analysisMetrics.unsafeTotal.WithLabelValues(KindContent)); got != 1 {
		t.Errorf("unsafe_total = %v", got)
	}
}

func TestCollector_RecordBiasAndFailures(t *testing.T) {
	c := newTestCollector()

	c.RecordBias(true, time.Millisecond)
	c.RecordBias(false, time.Millisecond)
	c.RecordFailure(KindBias)
	c.RecordDegraded()
	c.RecordBatch(4)

	snap := c.Snapshot()
	if snap.BiasChecks != 2 || snap.BiasDetected != 1 || snap.BiasRate() != 0.5 {
		t.Errorf("bias stats = %+v", snap)
	}
	if snap.Failures[KindBias] != 1 || snap.Degraded != 1 {
		t.Errorf("failures = %v degraded = %d", snap.Failures, snap.Degraded)
	}
	if snap.Batches != 1 || snap.BatchItems != 4 {
		t.Errorf("batches = %d items = %d", snap.Batches, snap.BatchItems)
	}

	if got := testutil.ToFloat64(c.biasMetrics.checksTotal.WithLabelValues("biased")); got != 1 {
		t.Errorf("bias_checks_total{biased} = %v", got)
	}
	if got := testutil.ToFloat64(c.analysisMetrics.failuresTotal.WithLabelValues(KindBias)); got != 1 {
		t.Errorf("failures_total = %v", got)
	}
	if got := testutil.ToFloat64(c.analysisMetrics.degradedTotal); got != 1 {
		t.Errorf("degraded_total = %v", got)
	}
}

func TestCollector_SnapshotIsCopy(t *testing.T) {
	c := newTestCollector()
	c.RecordAnalysis(KindContent, "safe", false, time.Millisecond)

	snap := c.Snapshot()
	snap.RiskCounts["safe"] = 100
	if c.Snapshot().RiskCounts["safe"] != 1 {
		t.Error("mutating a snapshot changed the collector")
	}

	c.Reset()
	if c.Snapshot().TotalAnalyses != 0 {
		t.Error("Reset did not clear counters")
	}
}

func TestCollector_Disabled(t *testing.T) {
	c := NewCollector(Options{}, nil)
	c.RecordAnalysis(KindContent, "safe", false, time.Millisecond)

	if c.analysisMetrics != nil {
		t.Error("prometheus metrics registered while disabled")
	}
	if c.Snapshot().TotalAnalyses != 1 {
		t.Error("snapshot counters should work without prometheus")
	}
}

func TestCollector_Nil(t *testing.T) {
	var c *Collector
	c.RecordAnalysis(KindContent, "safe", false, time.Millisecond)
	c.RecordBias(true, time.Millisecond)
	c.RecordFailure(KindContent)
	c.RecordBatch(1)
	if c.Snapshot().TotalAnalyses != 0 {
		t.Error("nil collector snapshot should be empty")
	}
}

func TestCollector_Concurrent(t *testing.T) {
	c := newTestCollector()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c.RecordAnalysis(KindContent, "safe", i%2 == 0, time.Millisecond)
			c.RecordBias(i%3 == 0, time.Millisecond)
		}(i)
	}
	wg.Wait()

	snap := c.Snapshot()
	if snap.TotalAnalyses != 50 || snap.UnsafeDetected != 25 || snap.BiasChecks != 50 {
		t.Errorf("concurrent totals = %+v", snap)
	}
}

func TestCollector_Handler(t *testing.T) {
	c := newTestCollector()
	c.RecordAnalysis(KindContent, "safe", false, time.Millisecond)

	srv := httptest.NewServer(c.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	if !strings.Contains(string(body), "test_analyses_total") {
		t.Errorf("metrics output missing analyses_total:\n%s", body)
	}
}
