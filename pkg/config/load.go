package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a JSON or YAML file at the specified
// path. JSON documents are first checked against the embedded schema. It
// applies default values, validates the configuration, and returns any errors.
// The configuration is not modified by environment variables; use
// LoadConfigWithEnvOverrides for that functionality.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}
	return Parse(path, data)
}

// Parse decodes a configuration document. path is only used to pick the
// format and in error messages.
func Parse(path string, data []byte) (*Config, error) {
	if isJSONDocument(path, data) {
		if err := ValidateSchema(data); err != nil {
			return nil, fmt.Errorf("configuration file %q: %w", path, err)
		}
	}

	// JSON is a subset of YAML, so one decoder reads both formats.
	cfg := newSeeded()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a file and applies
// environment variable overrides. Environment variables follow the naming
// convention GUARDIAN_SECTION_FIELD (e.g., GUARDIAN_SAFETY_HIGH_RISK_THRESHOLD).
// Environment variables always take precedence over file-based configuration.
//
// The loading sequence is:
// 1. Load the document from file
// 2. Apply default values
// 3. Apply environment variable overrides
// 4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Values that fail to parse are ignored.
func applyEnvOverrides(cfg *Config) {
	// Safety overrides
	envInt("GUARDIAN_SAFETY_MIN_AGE", &cfg.Safety.MinAge)
	envInt("GUARDIAN_SAFETY_MAX_AGE", &cfg.Safety.MaxAge)
	envFloat("GUARDIAN_SAFETY_TOXICITY_THRESHOLD", &cfg.Safety.ToxicityThreshold)
	envFloat("GUARDIAN_SAFETY_MEDIUM_RISK_THRESHOLD", &cfg.Safety.MediumRiskThreshold)
	envFloat("GUARDIAN_SAFETY_HIGH_RISK_THRESHOLD", &cfg.Safety.HighRiskThreshold)
	envFloat("GUARDIAN_SAFETY_CRITICAL_THRESHOLD", &cfg.Safety.CriticalThreshold)
	envFloat("GUARDIAN_SAFETY_BIAS_THRESHOLD", &cfg.Safety.BiasThreshold)
	envInt("GUARDIAN_SAFETY_BIAS_PATTERN_COUNT_THRESHOLD", &cfg.Safety.BiasPatternCountThreshold)
	envBool("GUARDIAN_SAFETY_ENABLE_STRICT_MODE", &cfg.Safety.EnableStrictMode)
	envBool("GUARDIAN_SAFETY_ENABLE_EDUCATIONAL_BOOST", &cfg.Safety.EnableEducationalBoost)
	envFloat("GUARDIAN_SAFETY_MAX_PROCESSING_TIME_MS", &cfg.Safety.MaxProcessingTimeMS)
	envBool("GUARDIAN_SAFETY_NOTIFY_PARENTS_ON_RISK", &cfg.Safety.NotifyParentsOnRisk)
	envInt("GUARDIAN_SAFETY_BATCH_CONCURRENCY", &cfg.Safety.BatchConcurrency)

	// Bias overrides
	envString("GUARDIAN_BIAS_SCORER", &cfg.Bias.Scorer)
	envString("GUARDIAN_BIAS_EMBEDDING_BASE_URL", &cfg.Bias.Embedding.BaseURL)
	envString("GUARDIAN_BIAS_EMBEDDING_API_KEY", &cfg.Bias.Embedding.APIKey)
	envString("GUARDIAN_BIAS_EMBEDDING_MODEL", &cfg.Bias.Embedding.Model)
	envDuration("GUARDIAN_BIAS_EMBEDDING_TIMEOUT", &cfg.Bias.Embedding.Timeout)

	// Rules overrides
	envString("GUARDIAN_RULES_PATH", &cfg.Rules.Path)
	envBool("GUARDIAN_RULES_WATCH", &cfg.Rules.Watch)

	// Telemetry overrides
	if val := os.Getenv("GUARDIAN_TELEMETRY_LOGGING_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = strings.ToLower(val)
	}
	if val := os.Getenv("GUARDIAN_TELEMETRY_LOGGING_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = strings.ToLower(val)
	}
	envBool("GUARDIAN_TELEMETRY_LOGGING_REDACT_PII", &cfg.Telemetry.Logging.RedactPII)
	envBool("GUARDIAN_TELEMETRY_METRICS_ENABLED", &cfg.Telemetry.Metrics.Enabled)
	envBool("GUARDIAN_TELEMETRY_TRACING_ENABLED", &cfg.Telemetry.Tracing.Enabled)

	// Audit overrides
	envBool("GUARDIAN_AUDIT_ENABLED", &cfg.Audit.Enabled)
	envString("GUARDIAN_AUDIT_BACKEND", &cfg.Audit.Backend)
	envString("GUARDIAN_AUDIT_SQLITE_DRIVER", &cfg.Audit.SQLite.Driver)
	envString("GUARDIAN_AUDIT_SQLITE_PATH", &cfg.Audit.SQLite.Path)
	envInt("GUARDIAN_AUDIT_RETENTION_DAYS", &cfg.Audit.Retention.Days)
}

func envString(key string, dst *string) {
	if val := os.Getenv(key); val != "" {
		*dst = val
	}
}

func envInt(key string, dst *int) {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			*dst = n
		}
	}
}

func envFloat(key string, dst *float64) {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			*dst = f
		}
	}
}

func envBool(key string, dst *bool) {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			*dst = b
		}
	}
}

func envDuration(key string, dst *time.Duration) {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			*dst = d
		}
	}
}
