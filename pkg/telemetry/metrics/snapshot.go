package metrics

// Snapshot is a read-only copy of the collector's counters.
type Snapshot struct {
	TotalAnalyses       int64            `json:"total_analyses"`
	UnsafeDetected      int64            `json:"unsafe_detected"`
	RiskCounts          map[string]int64 `json:"risk_counts"`
	AverageProcessingMS float64          `json:"average_processing_time_ms"`
	Degraded            int64            `json:"degraded"`

	BiasChecks    int64   `json:"bias_checks"`
	BiasDetected  int64   `json:"bias_detected"`
	AverageBiasMS float64 `json:"average_bias_time_ms"`

	Failures map[string]int64 `json:"failures"`

	Batches    int64 `json:"batches"`
	BatchItems int64 `json:"batch_items"`
}

func newSnapshot() Snapshot {
	return Snapshot{
		RiskCounts: make(map[string]int64),
		Failures:   make(map[string]int64),
	}
}

func (s Snapshot) clone() Snapshot {
	out := s
	out.RiskCounts = make(map[string]int64, len(s.RiskCounts))
	for k, v := range s.RiskCounts {
		out.RiskCounts[k] = v
	}
	out.Failures = make(map[string]int64, len(s.Failures))
	for k, v := range s.Failures {
		out.Failures[k] = v
	}
	return out
}

// UnsafeRate is the share of analyses judged unsafe.
func (s Snapshot) UnsafeRate() float64 {
	if s.TotalAnalyses == 0 {
		return 0
	}
	return float64(s.UnsafeDetected) / float64(s.TotalAnalyses)
}

// BiasRate is the share of bias checks that found bias.
func (s Snapshot) BiasRate() float64 {
	if s.BiasChecks == 0 {
		return 0
	}
	return float64(s.BiasDetected) / float64(s.BiasChecks)
}
