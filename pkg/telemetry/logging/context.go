package logging

import (
	"context"
	"log/slog"
)

// Context keys for common log fields.
type contextKey string

const (
	// RequestIDKey is the context key for request IDs.
	RequestIDKey contextKey = "request_id"

	// SessionKey is the context key for conversation session identifiers.
	SessionKey contextKey = "session"

	// ChildAgeKey is the context key for the age of the child being served.
	ChildAgeKey contextKey = "child_age"

	// AnalysisIDKey is the context key for analysis identifiers.
	AnalysisIDKey contextKey = "analysis_id"
)

// WithRequestID adds a request ID to the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// GetRequestID retrieves the request ID from the context.
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// WithSession adds a session identifier to the context.
func WithSession(ctx context.Context, session string) context.Context {
	return context.WithValue(ctx, SessionKey, session)
}

// GetSession retrieves the session identifier from the context.
func GetSession(ctx context.Context) string {
	if session, ok := ctx.Value(SessionKey).(string); ok {
		return session
	}
	return ""
}

// WithChildAge adds the child's age to the context.
func WithChildAge(ctx context.Context, age int) context.Context {
	return context.WithValue(ctx, ChildAgeKey, age)
}

// GetChildAge retrieves the child's age from the context, or 0.
func GetChildAge(ctx context.Context) int {
	if age, ok := ctx.Value(ChildAgeKey).(int); ok {
		return age
	}
	return 0
}

// WithAnalysisID adds an analysis identifier to the context.
func WithAnalysisID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, AnalysisIDKey, id)
}

// GetAnalysisID retrieves the analysis identifier from the context.
func GetAnalysisID(ctx context.Context) string {
	if id, ok := ctx.Value(AnalysisIDKey).(string); ok {
		return id
	}
	return ""
}

// contextAttrs extracts the known fields from ctx.
func contextAttrs(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	var attrs []slog.Attr
	if v := GetRequestID(ctx); v != "" {
		attrs = append(attrs, slog.String(string(RequestIDKey), v))
	}
	if v := GetSession(ctx); v != "" {
		attrs = append(attrs, slog.String(string(SessionKey), v))
	}
	if v := GetChildAge(ctx); v != 0 {
		attrs = append(attrs, slog.Int(string(ChildAgeKey), v))
	}
	if v := GetAnalysisID(ctx); v != "" {
		attrs = append(attrs, slog.String(string(AnalysisIDKey), v))
	}
	return attrs
}
