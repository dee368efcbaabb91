// Package ctxslog passes a slog.Logger through context.Context, so
// that concurrently evaluated targets can log with their own
// attributes attached without threading a logger through every call.
package ctxslog

import (
	"context"
	"log/slog"
)

// key is an unexported type to prevent collisions with context keys
// from other packages.
type key struct{}

var loggerKey = key{}

// WithLogger returns a new context with the provided logger embedded.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext extracts the logger from a context, falling back to the
// process wide default logger if none was embedded.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}
