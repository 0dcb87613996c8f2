package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
)

// OutputFormat represents the output format for command results.
type OutputFormat string

const (
	// FormatText is a short human-readable summary (default).
	FormatText OutputFormat = "text"
	// FormatJSON is indented JSON.
	FormatJSON OutputFormat = "json"
	// FormatJSONL is one compact JSON document per line.
	FormatJSONL OutputFormat = "jsonl"
	// FormatCSV is comma-separated values with a header row.
	FormatCSV OutputFormat = "csv"
)

// ParseFormat validates s against the formats a command supports. An empty
// string selects the first allowed format.
func ParseFormat(s string, allowed ...OutputFormat) (OutputFormat, error) {
	if len(allowed) == 0 {
		allowed = []OutputFormat{FormatText, FormatJSON}
	}
	if s == "" {
		return allowed[0], nil
	}
	f := OutputFormat(strings.ToLower(s))
	if !slices.Contains(allowed, f) {
		names := make([]string, len(allowed))
		for i, a := range allowed {
			names[i] = string(a)
		}
		return "", fmt.Errorf("unsupported format %q (supported: %s)", s, strings.Join(names, ", "))
	}
	return f, nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// OpenOutput creates path for writing, or returns stdout when path is empty
// or "-". Closing stdout is a no-op.
func OpenOutput(path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopCloser{os.Stdout}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, nil
}

// WriteJSON encodes v followed by a newline.
func WriteJSON(w io.Writer, v any, indent bool) error {
	enc := json.NewEncoder(w)
	if indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

// WriteJSONLines writes each item as one compact JSON line.
func WriteJSONLines[T any](w io.Writer, items []T) error {
	enc := json.NewEncoder(w)
	for i, item := range items {
		if err := enc.Encode(item); err != nil {
			return fmt.Errorf("failed to encode item %d: %w", i, err)
		}
	}
	return nil
}
