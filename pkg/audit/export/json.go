package export

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"aiteddy-hq/guardian/pkg/audit"
)

// JSONExporter writes records as a JSON array, or as one object per line
// when Lines is set.
type JSONExporter struct {
	Pretty bool
	Lines  bool
}

// NewJSONExporter creates a JSON exporter.
func NewJSONExporter(pretty, lines bool) *JSONExporter {
	return &JSONExporter{Pretty: pretty, Lines: lines}
}

// Export writes records to w. An empty set is written as "[]" in array mode
// and as nothing in lines mode.
func (e *JSONExporter) Export(ctx context.Context, records []*audit.Record, w io.Writer) error {
	if e.Lines {
		enc := json.NewEncoder(w)
		for i, record := range records {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := enc.Encode(record); err != nil {
				return &audit.ExportError{Format: "jsonl", RecordCount: i, Cause: err}
			}
		}
		return nil
	}

	if records == nil {
		records = []*audit.Record{}
	}
	var (
		data []byte
		err  error
	)
	if e.Pretty {
		data, err = json.MarshalIndent(records, "", "  ")
	} else {
		data, err = json.Marshal(records)
	}
	if err != nil {
		return &audit.ExportError{Format: "json", RecordCount: len(records), Cause: err}
	}
	if _, err := fmt.Fprintf(w, "%s\n", data); err != nil {
		return &audit.ExportError{Format: "json", RecordCount: len(records), Cause: err}
	}
	return nil
}
