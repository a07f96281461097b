package logging

import (
	"context"

	"github.com/rs/zerolog"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey int

const (
	loggerKey contextKey = iota
	runIDKey
)

// WithLogger adds a logger to the context.
func WithLogger(ctx context.Context, logger *zerolog.Logger) context.Context {
	if logger == nil {
		logger = Default()
	}
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext extracts the logger from context, or returns the default logger.
func FromContext(ctx context.Context) *zerolog.Logger {
	if ctx == nil {
		return Default()
	}

	if logger, ok := ctx.Value(loggerKey).(*zerolog.Logger); ok && logger != nil {
		return logger
	}

	return Default()
}

// Ctx is a shorter alias for FromContext.
func Ctx(ctx context.Context) *zerolog.Logger {
	return FromContext(ctx)
}

// WithRunID tags the context, and its logger, with the id of one reconciliation run.
func WithRunID(ctx context.Context, runID string) context.Context {
	ctx = context.WithValue(ctx, runIDKey, runID)
	return WithField(ctx, "run_id", runID)
}

// RunID extracts the run id from context.
func RunID(ctx context.Context) string {
	if id, ok := ctx.Value(runIDKey).(string); ok {
		return id
	}
	return ""
}

// WithFields adds structured fields to the logger in the context.
func WithFields(ctx context.Context, fields map[string]any) context.Context {
	logCtx := FromContext(ctx).With()
	for key, value := range fields {
		logCtx = addFieldToContext(logCtx, key, value)
	}
	newLogger := logCtx.Logger()
	return WithLogger(ctx, &newLogger)
}

// WithField adds a single field to the logger in the context.
func WithField(ctx context.Context, key string, value any) context.Context {
	logCtx := addFieldToContext(FromContext(ctx).With(), key, value)
	newLogger := logCtx.Logger()
	return WithLogger(ctx, &newLogger)
}

// addFieldToContext adds a field to the logger context based on its type.
func addFieldToContext(ctx zerolog.Context, key string, value any) zerolog.Context {
	switch v := value.(type) {
	case string:
		return ctx.Str(key, v)
	case int:
		return ctx.Int(key, v)
	case int64:
		return ctx.Int64(key, v)
	case float64:
		return ctx.Float64(key, v)
	case bool:
		return ctx.Bool(key, v)
	case error:
		if key == "error" || key == "err" {
			return ctx.Err(v)
		}
		return ctx.Str(key, v.Error())
	default:
		return ctx.Interface(key, v)
	}
}

// WithCollection adds the remote collection URI to the logger.
func WithCollection(ctx context.Context, uri string) context.Context {
	return WithField(ctx, "collection", uri)
}

// WithDataset adds a dataset path to the logger.
func WithDataset(ctx context.Context, path string) context.Context {
	return WithField(ctx, "dataset", path)
}

// WithOperation adds operation context to the logger.
func WithOperation(ctx context.Context, operation string) context.Context {
	return WithField(ctx, "operation", operation)
}
