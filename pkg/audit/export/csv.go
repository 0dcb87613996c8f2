package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"aiteddy-hq/guardian/pkg/audit"
)

// CSVExporter writes records as CSV, one row per record. Concerns are joined
// with ";".
type CSVExporter struct {
	IncludeHeader bool
}

// NewCSVExporter creates a CSV exporter.
func NewCSVExporter(includeHeader bool) *CSVExporter {
	return &CSVExporter{IncludeHeader: includeHeader}
}

// Header is the CSV column order.
var Header = []string{
	"id", "analysis_id", "kind", "analyzed_at", "recorded_at",
	"session_id", "child_age", "text_digest", "text_length",
	"is_safe", "risk_level", "content_category", "toxicity_score",
	"has_bias", "bias_score", "bias_method", "concerns",
	"parent_notified", "degraded", "failure", "processing_ms",
	"decision_digest",
}

// Export writes records to w.
func (e *CSVExporter) Export(ctx context.Context, records []*audit.Record, w io.Writer) error {
	writer := csv.NewWriter(w)

	if e.IncludeHeader {
		if err := writer.Write(Header); err != nil {
			return &audit.ExportError{Format: "csv", RecordCount: len(records), Cause: err}
		}
	}
	for i, record := range records {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := writer.Write(recordToRow(record)); err != nil {
			return &audit.ExportError{Format: "csv", RecordCount: i, Cause: err}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return &audit.ExportError{Format: "csv", RecordCount: len(records), Cause: err}
	}
	return nil
}

func recordToRow(r *audit.Record) []string {
	formatTime := func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.UTC().Format(time.RFC3339Nano)
	}
	formatFloat := func(f float64) string {
		return strconv.FormatFloat(f, 'f', 4, 64)
	}

	return []string{
		r.ID,
		r.AnalysisID,
		r.Kind,
		formatTime(r.AnalyzedAt),
		formatTime(r.RecordedAt),
		r.SessionID,
		strconv.Itoa(r.ChildAge),
		r.TextDigest,
		strconv.Itoa(r.TextLength),
		strconv.FormatBool(r.IsSafe),
		r.RiskLevel,
		r.ContentCategory,
		formatFloat(r.ToxicityScore),
		strconv.FormatBool(r.HasBias),
		formatFloat(r.BiasScore),
		r.BiasMethod,
		strings.Join(r.Concerns, ";"),
		strconv.FormatBool(r.ParentNotified),
		strconv.FormatBool(r.Degraded),
		r.Failure,
		fmt.Sprintf("%.2f", r.ProcessingMS),
		r.DecisionDigest,
	}
}

// New returns the exporter for format: "json", "jsonl" or "csv".
func New(format string) (audit.Exporter, error) {
	switch format {
	case "json", "":
		return NewJSONExporter(true, false), nil
	case "jsonl":
		return NewJSONExporter(false, true), nil
	case "csv":
		return NewCSVExporter(true), nil
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
}
