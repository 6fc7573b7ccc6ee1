package logger

import (
	"context"

	"github.com/oklog/ulid/v2"
)

// contextKey is a type for context keys to avoid collisions.
type contextKey string

const (
	loggerKey contextKey = "myke.logger"
	runIDKey  contextKey = "myke.run_id"
	taskKey   contextKey = "myke.task"
)

// WithLogger adds a logger to the context.
func WithLogger(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext extracts the logger from context.
// Returns the default logger if none is set.
func FromContext(ctx context.Context) Logger {
	if l, ok := ctx.Value(loggerKey).(Logger); ok {
		return l
	}
	return Default()
}

// NewRunID returns a fresh, time-sortable invocation ID.
func NewRunID() string {
	return ulid.Make().String()
}

// WithRunID adds an invocation ID to the context.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey, runID)
}

// RunIDFromContext extracts the invocation ID from context.
func RunIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(runIDKey).(string); ok {
		return id
	}
	return ""
}

// WithTask records the task being dispatched.
func WithTask(ctx context.Context, task string) context.Context {
	return context.WithValue(ctx, taskKey, task)
}

// TaskFromContext returns the task being dispatched, if any.
func TaskFromContext(ctx context.Context) string {
	if name, ok := ctx.Value(taskKey).(string); ok {
		return name
	}
	return ""
}

// L returns the context logger bound to ctx, so records carry the
// run ID and task stored in it.
func L(ctx context.Context) Logger {
	return FromContext(ctx).WithContext(ctx)
}
