package config

import "time"

// Default values for configuration fields.
const (
	DefaultVersion = "1"

	// Safety defaults
	DefaultMinAge                    = 3
	DefaultMaxAge                    = 12
	DefaultToxicityThreshold         = 0.1
	DefaultMediumRiskThreshold       = 0.25
	DefaultHighRiskThreshold         = 0.3
	DefaultCriticalThreshold         = 0.7
	DefaultBiasThreshold             = 0.3
	DefaultBiasPatternCountThreshold = 2
	DefaultEnableStrictMode          = true
	DefaultEnableEducationalBoost    = true
	DefaultMaxProcessingTimeMS       = 500.0
	DefaultNotifyParentsOnRisk       = true
	DefaultBatchConcurrency          = 8

	// Bias defaults
	DefaultBiasScorer       = "pattern"
	DefaultEmbeddingModel   = "text-embedding-3-small"
	DefaultEmbeddingTimeout = 5 * time.Second

	// Rules defaults
	DefaultRulesDebounce = 200 * time.Millisecond

	// Telemetry defaults
	DefaultLoggingLevel       = "info"
	DefaultLoggingFormat      = "json"
	DefaultLoggingRedactPII   = true
	DefaultMetricsEnabled     = true
	DefaultMetricsPath        = "/metrics"
	DefaultTracingServiceName = "guardian"

	// Audit defaults
	DefaultAuditBackend           = "sqlite"
	DefaultAuditSQLiteDriver      = "sqlite"
	DefaultAuditSQLitePath        = "data/audit.db"
	DefaultAuditSQLiteBusyTimeout = 5 * time.Second
	DefaultAuditBufferSize        = 1000
	DefaultAuditRetentionDays     = 30
	DefaultAuditRetentionSchedule = "0 3 * * *"
)

// newSeeded returns a Config holding every default for which zero (or
// false) is itself a meaningful setting. Decoding a document over it keeps
// an explicit 0 or false, and Validate sees exactly what the document said.
func newSeeded() Config {
	return Config{
		Safety: SafetyConfig{
			MinAge:                    DefaultMinAge,
			MaxAge:                    DefaultMaxAge,
			ToxicityThreshold:         DefaultToxicityThreshold,
			MediumRiskThreshold:       DefaultMediumRiskThreshold,
			HighRiskThreshold:         DefaultHighRiskThreshold,
			CriticalThreshold:         DefaultCriticalThreshold,
			BiasThreshold:             DefaultBiasThreshold,
			BiasPatternCountThreshold: DefaultBiasPatternCountThreshold,
			EnableStrictMode:          DefaultEnableStrictMode,
			EnableEducationalBoost:    DefaultEnableEducationalBoost,
			MaxProcessingTimeMS:       DefaultMaxProcessingTimeMS,
			NotifyParentsOnRisk:       DefaultNotifyParentsOnRisk,
			BatchConcurrency:          DefaultBatchConcurrency,
		},
		Telemetry: TelemetryConfig{
			Logging: LoggingConfig{RedactPII: DefaultLoggingRedactPII},
			Metrics: MetricsConfig{Enabled: DefaultMetricsEnabled},
		},
		Audit: AuditConfig{
			Retention: RetentionConfig{Days: DefaultAuditRetentionDays},
		},
	}
}

// Default returns a fully defaulted configuration.
func Default() *Config {
	cfg := newSeeded()
	ApplyDefaults(&cfg)
	return &cfg
}

// ApplyDefaults fills the fields where a zero value means "not set": names,
// paths, durations and sizes. Safety thresholds and ages are seeded before
// decoding instead, because 0 is a valid threshold and an explicit 0 age
// must reach Validate. ApplyDefaults is idempotent.
func ApplyDefaults(cfg *Config) {
	if cfg.Version == "" {
		cfg.Version = DefaultVersion
	}

	// Bias defaults
	if cfg.Bias.Scorer == "" {
		cfg.Bias.Scorer = DefaultBiasScorer
	}
	if cfg.Bias.Embedding.Model == "" {
		cfg.Bias.Embedding.Model = DefaultEmbeddingModel
	}
	if cfg.Bias.Embedding.Timeout == 0 {
		cfg.Bias.Embedding.Timeout = DefaultEmbeddingTimeout
	}

	// Rules defaults
	if cfg.Rules.Debounce == 0 {
		cfg.Rules.Debounce = DefaultRulesDebounce
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Telemetry.Tracing.ServiceName == "" {
		cfg.Telemetry.Tracing.ServiceName = DefaultTracingServiceName
	}

	// Audit defaults
	if cfg.Audit.Backend == "" {
		cfg.Audit.Backend = DefaultAuditBackend
	}
	if cfg.Audit.SQLite.Driver == "" {
		cfg.Audit.SQLite.Driver = DefaultAuditSQLiteDriver
	}
	if cfg.Audit.SQLite.Path == "" {
		cfg.Audit.SQLite.Path = DefaultAuditSQLitePath
	}
	if cfg.Audit.SQLite.BusyTimeout == 0 {
		cfg.Audit.SQLite.BusyTimeout = DefaultAuditSQLiteBusyTimeout
	}
	if cfg.Audit.BufferSize == 0 {
		cfg.Audit.BufferSize = DefaultAuditBufferSize
	}
	if cfg.Audit.Retention.Schedule == "" {
		cfg.Audit.Retention.Schedule = DefaultAuditRetentionSchedule
	}
}
