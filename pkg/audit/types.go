package audit

import (
	"context"
	"io"
	"time"
)

// Record kinds.
const (
	KindContent = "content"
	KindBias    = "bias"
)

// Record is one audited safety decision. It never holds the reply text or
// any child identity beyond the session ID and age; the reply is kept as a
// SHA-256 digest so a decision can be matched to a transcript kept elsewhere.
type Record struct {
	// ID is the unique record identifier (UUID).
	ID string `json:"id"`

	// AnalysisID links the record to the analysis result that produced it.
	// Empty for bias checks.
	AnalysisID string `json:"analysis_id,omitempty"`

	// Kind is KindContent or KindBias.
	Kind string `json:"kind"`

	// AnalyzedAt is the timestamp of the analysis result.
	AnalyzedAt time.Time `json:"analyzed_at"`

	// RecordedAt is when the record was written.
	RecordedAt time.Time `json:"recorded_at"`

	SessionID string `json:"session_id,omitempty"`
	ChildAge  int    `json:"child_age"`

	TextDigest string `json:"text_digest"`
	TextLength int    `json:"text_length"`

	IsSafe          bool    `json:"is_safe"`
	RiskLevel       string  `json:"risk_level"`
	ContentCategory string  `json:"content_category,omitempty"`
	ToxicityScore   float64 `json:"toxicity_score"`

	HasBias    bool    `json:"has_bias"`
	BiasScore  float64 `json:"bias_score"`
	BiasMethod string  `json:"bias_method,omitempty"`

	// Concerns are the category-level reasons behind the decision, such as
	// "toxicity:insult" or "bias:gender".
	Concerns []string `json:"concerns,omitempty"`

	ParentNotified bool    `json:"parent_notified"`
	Degraded       bool    `json:"degraded"`
	Failure        string  `json:"failure,omitempty"`
	ProcessingMS   float64 `json:"processing_ms"`

	// DecisionDigest is a canonical digest of the decision fields. Two
	// records with the same TextDigest and DecisionDigest were decided the
	// same way.
	DecisionDigest string `json:"decision_digest"`
}

// Query filters audit records. Zero values mean "no filter".
type Query struct {
	StartTime *time.Time
	EndTime   *time.Time

	SessionID string
	Kind      string

	// MinRisk keeps records at or above this risk level name
	// ("low_risk", "high_risk", ...).
	MinRisk string

	// UnsafeOnly keeps records with IsSafe false.
	UnsafeOnly bool

	// BiasOnly keeps records with HasBias true.
	BiasOnly bool

	// Limit caps the result size. 0 means no limit.
	Limit  int
	Offset int

	// SortOrder is "asc" or "desc" on AnalyzedAt. Default: desc.
	SortOrder string
}

// Storage persists audit records.
type Storage interface {
	// Store writes one record.
	Store(ctx context.Context, record *Record) error

	// Query returns matching records.
	Query(ctx context.Context, query *Query) ([]*Record, error)

	// Count returns the number of matching records.
	Count(ctx context.Context, query *Query) (int64, error)

	// Delete removes matching records and returns how many were removed.
	Delete(ctx context.Context, query *Query) (int64, error)

	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error

	Close() error
}

// Exporter writes records in an external format.
type Exporter interface {
	Export(ctx context.Context, records []*Record, w io.Writer) error
}
