package common

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Context keys for storing values in context
type contextKey string

const (
	ContextKeyRunID   contextKey = "run_id"
	ContextKeyProject contextKey = "project"
)

// WithRunID adds a scoring run ID to the context
func WithRunID(ctx context.Context, runID uuid.UUID) context.Context {
	return context.WithValue(ctx, ContextKeyRunID, runID)
}

// RunIDFromContext extracts the run ID from context, or uuid.Nil
func RunIDFromContext(ctx context.Context) uuid.UUID {
	if id, ok := ctx.Value(ContextKeyRunID).(uuid.UUID); ok {
		return id
	}
	return uuid.Nil
}

// WithProject adds a harness project name to the context
func WithProject(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, ContextKeyProject, name)
}

// ProjectFromContext extracts the harness project name from context
func ProjectFromContext(ctx context.Context) string {
	if name, ok := ctx.Value(ContextKeyProject).(string); ok {
		return name
	}
	return ""
}

// ContextLogger attaches the harness project carried by ctx, if any, to logger.
func ContextLogger(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if name := ProjectFromContext(ctx); name != "" {
		return logger.With("project", name)
	}
	return logger
}

// WithTimeout creates a context with the specified timeout; zero means no deadline.
func WithTimeout(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, timeout)
}
