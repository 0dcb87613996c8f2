package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/robfig/cron/v3"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "safety.min_age").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
// It implements the error interface and provides access to all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. It returns nil if the configuration is valid.
// Out-of-range values are rejected, never clamped.
func Validate(cfg *Config) error {
	var errs []FieldError

	if cfg.Version != DefaultVersion {
		errs = append(errs, FieldError{
			Field:   "version",
			Message: fmt.Sprintf("unsupported version %q: must be %q", cfg.Version, DefaultVersion),
		})
	}

	errs = append(errs, validateSafety(&cfg.Safety)...)
	errs = append(errs, validateBias(&cfg.Bias)...)
	errs = append(errs, validateRules(&cfg.Rules)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)
	errs = append(errs, validateAudit(&cfg.Audit)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

func validateSafety(cfg *SafetyConfig) []FieldError {
	var errs []FieldError

	if cfg.MinAge < 1 || cfg.MinAge > 18 {
		errs = append(errs, FieldError{
			Field:   "safety.min_age",
			Message: fmt.Sprintf("must be between 1 and 18, got %d", cfg.MinAge),
		})
	}
	if cfg.MaxAge < 1 || cfg.MaxAge > 18 {
		errs = append(errs, FieldError{
			Field:   "safety.max_age",
			Message: fmt.Sprintf("must be between 1 and 18, got %d", cfg.MaxAge),
		})
	}
	if cfg.MinAge > cfg.MaxAge {
		errs = append(errs, FieldError{
			Field:   "safety.min_age",
			Message: fmt.Sprintf("min_age (%d) must not exceed max_age (%d)", cfg.MinAge, cfg.MaxAge),
		})
	}

	thresholds := []struct {
		field string
		value float64
	}{
		{"safety.toxicity_threshold", cfg.ToxicityThreshold},
		{"safety.medium_risk_threshold", cfg.MediumRiskThreshold},
		{"safety.high_risk_threshold", cfg.HighRiskThreshold},
		{"safety.critical_threshold", cfg.CriticalThreshold},
		{"safety.bias_threshold", cfg.BiasThreshold},
	}
	inRange := true
	for _, th := range thresholds {
		if th.value < 0 || th.value > 1 {
			inRange = false
			errs = append(errs, FieldError{
				Field:   th.field,
				Message: fmt.Sprintf("must be between 0.0 and 1.0, got %v", th.value),
			})
		}
	}

	// The risk bands must be contiguous and ordered.
	if inRange {
		for i := 0; i < 3; i++ {
			lo, hi := thresholds[i], thresholds[i+1]
			if lo.value > hi.value {
				errs = append(errs, FieldError{
					Field:   hi.field,
					Message: fmt.Sprintf("must not be lower than %s (%v > %v)", lo.field, lo.value, hi.value),
				})
			}
		}
	}

	if cfg.BiasPatternCountThreshold < 0 {
		errs = append(errs, FieldError{
			Field:   "safety.bias_pattern_count_threshold",
			Message: "must not be negative",
		})
	}
	if cfg.MaxProcessingTimeMS <= 0 {
		errs = append(errs, FieldError{
			Field:   "safety.max_processing_time_ms",
			Message: "must be positive",
		})
	}
	if cfg.BatchConcurrency < 1 {
		errs = append(errs, FieldError{
			Field:   "safety.batch_concurrency",
			Message: "must be at least 1",
		})
	}

	return errs
}

func validateBias(cfg *BiasConfig) []FieldError {
	var errs []FieldError

	switch cfg.Scorer {
	case "pattern":
	case "embedding":
		if cfg.Embedding.BaseURL == "" {
			errs = append(errs, FieldError{
				Field:   "bias.embedding.base_url",
				Message: "base URL is required for the embedding scorer",
			})
		} else if u, err := url.Parse(cfg.Embedding.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, FieldError{
				Field:   "bias.embedding.base_url",
				Message: fmt.Sprintf("invalid URL %q", cfg.Embedding.BaseURL),
			})
		}
	default:
		errs = append(errs, FieldError{
			Field:   "bias.scorer",
			Message: fmt.Sprintf("invalid scorer %q: must be 'pattern' or 'embedding'", cfg.Scorer),
		})
	}

	if cfg.Embedding.Timeout < 0 {
		errs = append(errs, FieldError{
			Field:   "bias.embedding.timeout",
			Message: "timeout must not be negative",
		})
	}

	return errs
}

func validateRules(cfg *RulesConfig) []FieldError {
	var errs []FieldError

	if cfg.Watch && cfg.Path == "" {
		errs = append(errs, FieldError{
			Field:   "rules.watch",
			Message: "watching requires rules.path",
		})
	}
	if cfg.Debounce < 0 {
		errs = append(errs, FieldError{
			Field:   "rules.debounce",
			Message: "debounce must not be negative",
		})
	}

	return errs
}

func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Logging.Level] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("invalid logging level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.Logging.Level),
		})
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[cfg.Logging.Format] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("invalid logging format %q: must be 'json' or 'text'", cfg.Logging.Format),
		})
	}

	if cfg.Metrics.Enabled && !strings.HasPrefix(cfg.Metrics.Path, "/") {
		errs = append(errs, FieldError{
			Field:   "telemetry.metrics.path",
			Message: "metrics path must start with /",
		})
	}

	return errs
}

func validateAudit(cfg *AuditConfig) []FieldError {
	var errs []FieldError

	switch cfg.Backend {
	case "memory":
	case "sqlite":
		if cfg.SQLite.Driver != "sqlite" && cfg.SQLite.Driver != "sqlite3" {
			errs = append(errs, FieldError{
				Field:   "audit.sqlite.driver",
				Message: fmt.Sprintf("invalid driver %q: must be 'sqlite' or 'sqlite3'", cfg.SQLite.Driver),
			})
		}
		if cfg.SQLite.Path == "" {
			errs = append(errs, FieldError{
				Field:   "audit.sqlite.path",
				Message: "database path is required",
			})
		}
	default:
		errs = append(errs, FieldError{
			Field:   "audit.backend",
			Message: fmt.Sprintf("invalid backend %q: must be 'memory' or 'sqlite'", cfg.Backend),
		})
	}

	if cfg.BufferSize < 1 {
		errs = append(errs, FieldError{
			Field:   "audit.buffer_size",
			Message: "buffer size must be at least 1",
		})
	}

	if cfg.Retention.Days > 0 {
		if _, err := cron.ParseStandard(cfg.Retention.Schedule); err != nil {
			errs = append(errs, FieldError{
				Field:   "audit.retention.schedule",
				Message: fmt.Sprintf("invalid cron expression %q: %v", cfg.Retention.Schedule, err),
			})
		}
	}

	return errs
}
