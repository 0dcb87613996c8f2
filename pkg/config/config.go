package config

import "time"

// Config is the root configuration for the guardian engine.
// It is loaded from a versioned JSON or YAML document and is immutable
// once validated.
type Config struct {
	// Version identifies the document format. Only "1" is supported.
	Version string `yaml:"version"`

	// Safety contains the content-safety policy.
	Safety SafetyConfig `yaml:"safety"`

	// Bias selects and configures the bias scorer.
	Bias BiasConfig `yaml:"bias"`

	// Rules controls where pattern packs are loaded from.
	Rules RulesConfig `yaml:"rules"`

	// Telemetry contains logging, metrics and tracing settings.
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Audit controls the decision audit trail.
	Audit AuditConfig `yaml:"audit"`
}

// SafetyConfig is the decision policy shared by every analysis.
type SafetyConfig struct {
	// MinAge and MaxAge bound the supported child ages.
	// Default: 3 and 12
	MinAge int `yaml:"min_age"`
	MaxAge int `yaml:"max_age"`

	// ToxicityThreshold is the lower edge of the LOW_RISK band.
	// Default: 0.1
	ToxicityThreshold float64 `yaml:"toxicity_threshold"`

	// MediumRiskThreshold is the lower edge of the MEDIUM_RISK band.
	// Default: 0.25
	MediumRiskThreshold float64 `yaml:"medium_risk_threshold"`

	// HighRiskThreshold is the safety gate: content scoring at or above it
	// is unsafe.
	// Default: 0.3
	HighRiskThreshold float64 `yaml:"high_risk_threshold"`

	// CriticalThreshold is the lower edge of the CRITICAL band.
	// Default: 0.7
	CriticalThreshold float64 `yaml:"critical_threshold"`

	// BiasThreshold: an overall bias score above it is biased.
	// Default: 0.3
	BiasThreshold float64 `yaml:"bias_threshold"`

	// BiasPatternCountThreshold: more detected bias patterns than this is
	// biased even when no score crosses BiasThreshold.
	// Default: 2
	BiasPatternCountThreshold int `yaml:"bias_pattern_count_threshold"`

	// EnableStrictMode also notifies parents about MEDIUM_RISK content for
	// children aged five and under.
	// Default: true
	EnableStrictMode bool `yaml:"enable_strict_mode"`

	// EnableEducationalBoost adds a small bonus to educational content for
	// young children.
	// Default: true
	EnableEducationalBoost bool `yaml:"enable_educational_boost"`

	// MaxProcessingTimeMS is the latency budget of a single analysis.
	// Exceeding it marks the result degraded.
	// Default: 500
	MaxProcessingTimeMS float64 `yaml:"max_processing_time_ms"`

	// NotifyParentsOnRisk enables parent notification for HIGH_RISK and
	// CRITICAL content.
	// Default: true
	NotifyParentsOnRisk bool `yaml:"notify_parents_on_risk"`

	// BatchConcurrency bounds the number of items analyzed at once.
	// Default: 8
	BatchConcurrency int `yaml:"batch_concurrency"`
}

// MaxProcessingTime returns the latency budget as a duration.
func (s SafetyConfig) MaxProcessingTime() time.Duration {
	return time.Duration(s.MaxProcessingTimeMS * float64(time.Millisecond))
}

// BiasConfig selects the bias scorer.
type BiasConfig struct {
	// Scorer is "pattern" or "embedding". The embedding scorer falls back to
	// pattern matching when the endpoint is unreachable at startup.
	// Default: "pattern"
	Scorer string `yaml:"scorer"`

	// Embedding configures the embeddings endpoint used by the embedding scorer.
	Embedding EmbeddingConfig `yaml:"embedding"`
}

// EmbeddingConfig describes an OpenAI-compatible embeddings endpoint.
type EmbeddingConfig struct {
	// BaseURL is the API root, e.g. "http://localhost:11434/v1".
	BaseURL string `yaml:"base_url"`

	// APIKey is sent as a bearer token when set.
	APIKey string `yaml:"api_key"`

	// Model is the embedding model name.
	// Default: "text-embedding-3-small"
	Model string `yaml:"model"`

	// Timeout bounds each embeddings request.
	// Default: 5s
	Timeout time.Duration `yaml:"timeout"`
}

// RulesConfig controls pattern-pack loading.
type RulesConfig struct {
	// Path is a pattern-pack file or a directory of packs merged over the
	// built-in tables. Empty uses the built-in tables only.
	Path string `yaml:"path"`

	// Watch reloads the packs when they change on disk.
	// Default: false
	Watch bool `yaml:"watch"`

	// Debounce coalesces bursts of file events.
	// Default: 200ms
	Debounce time.Duration `yaml:"debounce"`
}

// TelemetryConfig contains observability settings.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing contains tracing configuration.
	Tracing TracingConfig `yaml:"tracing"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text"
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`

	// RedactPII masks child names, emails, phone numbers and addresses.
	// Default: true
	RedactPII bool `yaml:"redact_pii"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether Prometheus collectors are registered.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path a host process should mount the handler on.
	// Default: "/metrics"
	Path string `yaml:"path"`
}

// TracingConfig contains tracing configuration. Spans go to the globally
// installed OpenTelemetry provider.
type TracingConfig struct {
	// Enabled controls whether analyses start spans.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// ServiceName names the tracer.
	// Default: "guardian"
	ServiceName string `yaml:"service_name"`
}

// AuditConfig controls the decision audit trail.
type AuditConfig struct {
	// Enabled turns on audit recording.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Backend is "memory" or "sqlite".
	// Default: "sqlite"
	Backend string `yaml:"backend"`

	// SQLite configures the SQLite backend.
	SQLite SQLiteConfig `yaml:"sqlite"`

	// BufferSize is the size of the asynchronous record queue.
	// Default: 1000
	BufferSize int `yaml:"buffer_size"`

	// Retention controls how long records are kept.
	Retention RetentionConfig `yaml:"retention"`
}

// SQLiteConfig configures the SQLite audit store.
type SQLiteConfig struct {
	// Driver is "sqlite" (pure Go) or "sqlite3" (cgo).
	// Default: "sqlite"
	Driver string `yaml:"driver"`

	// Path is the database file.
	// Default: "data/audit.db"
	Path string `yaml:"path"`

	// BusyTimeout is the SQLite busy timeout.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// RetentionConfig controls audit pruning.
type RetentionConfig struct {
	// Days is how long records are kept. Zero or a negative value keeps
	// records forever.
	// Default: 30
	Days int `yaml:"days"`

	// Schedule is the cron expression for the pruning job.
	// Default: "0 3 * * *"
	Schedule string `yaml:"schedule"`
}
