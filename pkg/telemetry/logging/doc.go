// Package logging builds the structured loggers used across guardian.
//
// New returns a plain *slog.Logger whose handler:
//   - adds request_id, session, child_age and analysis_id from the context
//   - masks child PII when redaction is enabled
//
// # Usage
//
//	logger, err := logging.New(logging.Config{
//	    Level:     "info",
//	    Format:    "json",
//	    RedactPII: true,
//	})
//
//	ctx = logging.WithSession(ctx, "sess-42")
//	logger.InfoContext(ctx, "analysis complete",
//	    "child_name", "Maya",     // masked to M***
//	    "risk_level", "safe",
//	)
//
// # PII Redaction
//
// Attributes named child_name, name, address, phone, email or a secret are
// masked entirely. Other string values are scrubbed for email addresses,
// phone numbers, street addresses and API tokens:
//
//   - maya@example.com → [email]
//   - 555-123-4567 → [phone]
//   - 12 Oak Tree Lane → [address]
package logging
