package logging

import (
	"context"
	"log/slog"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldEventType classifies warnings and errors for filtering.
	FieldEventType = "event_type"
	// FieldErrorHint suggests the next step to the reader of a warning or error.
	FieldErrorHint = "error_hint"
	// FieldImpact is the standardized key for user-facing consequence of a warning.
	FieldImpact = "impact"
	// FieldScript is the standardized key for the script file being worked on.
	FieldScript = "script"
	// FieldCommitID is the standardized key for history commit identifiers.
	FieldCommitID = "commit_id"
	// FieldSessionID is the standardized key for editing session identifiers.
	FieldSessionID = "session_id"
)

type contextKey int

const (
	scriptKey contextKey = iota
	sessionKey
)

// WithScript records the script path on ctx for loggers derived with WithContext.
func WithScript(ctx context.Context, path string) context.Context {
	return context.WithValue(ctx, scriptKey, path)
}

// WithSession records an editing session id on ctx.
func WithSession(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionKey, id)
}

// scriptFromContext returns the script path stored by WithScript.
func scriptFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	path, ok := ctx.Value(scriptKey).(string)
	return path, ok && path != ""
}

// contextFields extracts the script and session attributes carried by ctx.
func contextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 2)
	if path, ok := scriptFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldScript, path))
	}
	if id, ok := ctx.Value(sessionKey).(string); ok && id != "" {
		fields = append(fields, slog.String(FieldSessionID, id))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := contextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(attrsToArgs(fields)...)
}
