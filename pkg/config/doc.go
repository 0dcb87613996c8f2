// Package config loads and validates the guardian configuration document.
//
// A configuration is a versioned JSON or YAML document. JSON documents are
// checked against an embedded JSON Schema before decoding; every document
// then receives defaults and field validation. Invalid values are rejected,
// never clamped, and a rejected configuration must stop startup.
//
// # Loading
//
//	cfg, err := config.LoadConfig("guardian.json")
//
//	cfg, err := config.LoadConfigWithEnvOverrides("guardian.yaml")
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention GUARDIAN_SECTION_FIELD:
//
//   - GUARDIAN_SAFETY_HIGH_RISK_THRESHOLD overrides safety.high_risk_threshold
//   - GUARDIAN_BIAS_SCORER overrides bias.scorer
//   - GUARDIAN_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// # Precedence
//
//  1. Default values (defined in defaults.go)
//  2. Values from the document
//  3. Environment variable overrides
//  4. Validation (fails fast if invalid)
//
// # Example
//
//	{
//	  "version": "1",
//	  "safety": {
//	    "min_age": 3,
//	    "max_age": 12,
//	    "toxicity_threshold": 0.1,
//	    "high_risk_threshold": 0.3,
//	    "critical_threshold": 0.7,
//	    "max_processing_time_ms": 500
//	  },
//	  "bias": {"scorer": "pattern"},
//	  "audit": {"enabled": true, "backend": "sqlite"}
//	}
//
// Validation errors include field paths:
//
//	configuration validation failed with 2 errors:
//	  - safety.max_age: must be between 1 and 18, got 21
//	  - safety.critical_threshold: must not be lower than safety.high_risk_threshold (0.3 > 0.2)
package config
