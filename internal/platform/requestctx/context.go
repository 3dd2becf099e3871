package requestctx

import (
	"context"

	"go.uber.org/zap"
)

type contextKey string

const (
	loggerContextKey contextKey = "github.com/cdmoen/Museum/internal/platform/requestctx/logger"
	htmxContextKey   contextKey = "github.com/cdmoen/Museum/internal/platform/requestctx/htmx"
)

var noopLogger = zap.NewNop()

// WithLogger stores the logger in context for downstream consumers.
func WithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if logger == nil {
		logger = noopLogger
	}
	return context.WithValue(ctx, loggerContextKey, logger)
}

// Logger retrieves the zap logger from context or returns a no-op logger.
func Logger(ctx context.Context) *zap.Logger {
	if ctx == nil {
		return noopLogger
	}
	if logger, ok := ctx.Value(loggerContextKey).(*zap.Logger); ok && logger != nil {
		return logger
	}
	return noopLogger
}

// NoopLogger exposes the shared noop logger instance used across the package.
func NoopLogger() *zap.Logger { return noopLogger }

// WithHTMX marks the request as issued by htmx.
func WithHTMX(ctx context.Context, is bool) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, htmxContextKey, is)
}

// IsHTMX reports whether the request was issued by htmx.
func IsHTMX(ctx context.Context) bool {
	if ctx == nil {
		return false
	}
	v, _ := ctx.Value(htmxContextKey).(bool)
	return v
}
