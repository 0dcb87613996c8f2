package logging

import (
	"log/slog"
	"regexp"
	"strings"
)

// Redactor masks child PII in log values.
type Redactor struct {
	patterns []redactPattern
}

// redactPattern contains a compiled regex and replacement string.
type redactPattern struct {
	name        string
	regex       *regexp.Regexp
	replacement string
}

// Pattern is an additional redaction rule.
type Pattern struct {
	Name        string
	Regex       string
	Replacement string
}

// Built-in pattern names.
const (
	PatternEmail   = "email"
	PatternPhone   = "phone"
	PatternAddress = "street_address"
	PatternAPIKey  = "api_key"
	PatternBearer  = "bearer_token"
)

// Applied in order; phone runs after email so digits inside an address
// local part are not matched twice.
var defaultPatterns = []Pattern{
	{PatternEmail, `[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`, "[email]"},
	{PatternBearer, `Bearer\s+[a-zA-Z0-9\-._~+/]+=*`, "Bearer ***"},
	{PatternAPIKey, `sk-[a-zA-Z0-9]{8,}`, "sk-***"},
	{PatternPhone, `(?:\+?\d{1,2}[-.\s]?)?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}\b`, "[phone]"},
	{PatternAddress, `(?i)\b\d{1,5}\s+(?:[a-z]+\s){1,3}(?:street|st|avenue|ave|road|rd|lane|ln|drive|dr|court|ct|boulevard|blvd|way)\b\.?`, "[address]"},
}

// Values under these keys are masked entirely.
var (
	sensitiveKeys = map[string]bool{
		"child_name": true, "name": true, "address": true,
		"phone": true, "email": true, "authorization": true,
	}
	secretKeyParts = []string{"password", "secret", "token", "api_key", "apikey"}
)

// NewRedactor creates a Redactor with the built-in patterns followed by
// extra. Extra patterns that do not compile are skipped.
func NewRedactor(extra ...Pattern) *Redactor {
	r := &Redactor{}
	for _, p := range append(append([]Pattern(nil), defaultPatterns...), extra...) {
		re, err := regexp.Compile(p.Regex)
		if err != nil {
			continue
		}
		r.patterns = append(r.patterns, redactPattern{name: p.Name, regex: re, replacement: p.Replacement})
	}
	return r
}

// RedactString masks PII inside a free-text value.
func (r *Redactor) RedactString(value string) string {
	if r == nil || value == "" {
		return value
	}
	for _, p := range r.patterns {
		value = p.regex.ReplaceAllString(value, p.replacement)
	}
	return value
}

// RedactAttr returns a with sensitive keys masked and string values
// scrubbed. Groups are processed recursively.
func (r *Redactor) RedactAttr(a slog.Attr) slog.Attr {
	if r == nil {
		return a
	}
	v := a.Value.Resolve()
	switch v.Kind() {
	case slog.KindGroup:
		attrs := v.Group()
		out := make([]any, len(attrs))
		for i, ga := range attrs {
			out[i] = r.RedactAttr(ga)
		}
		return slog.Group(a.Key, out...)
	case slog.KindString:
		if isSensitiveKey(a.Key) {
			return slog.String(a.Key, maskValue(v.String()))
		}
		if isIDKey(a.Key) {
			return slog.Attr{Key: a.Key, Value: v}
		}
		return slog.String(a.Key, r.RedactString(v.String()))
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return slog.String(a.Key, r.RedactString(err.Error()))
		}
		if isSensitiveKey(a.Key) {
			return slog.String(a.Key, "***")
		}
		return slog.Attr{Key: a.Key, Value: v}
	default:
		if isSensitiveKey(a.Key) {
			return slog.String(a.Key, "***")
		}
		return slog.Attr{Key: a.Key, Value: v}
	}
}

func isSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	if sensitiveKeys[lower] {
		return true
	}
	for _, part := range secretKeyParts {
		if strings.Contains(lower, part) {
			return true
		}
	}
	return false
}

// isIDKey reports keys holding opaque identifiers, which are never scrubbed.
func isIDKey(key string) bool {
	lower := strings.ToLower(key)
	return lower == "id" || strings.HasSuffix(lower, "_id")
}

// maskValue keeps the first rune so operators can tell values apart.
func maskValue(v string) string {
	if v == "" {
		return ""
	}
	r := []rune(v)
	if len(r) <= 2 {
		return "***"
	}
	return string(r[0]) + "***"
}
