// Package logging provides the base slog logger and the context carrier used
// to thread call-scoped loggers through the service layer.
package logging

import (
	"context"
	"log/slog"
	"os"
)

// contextKey is a private type to prevent collisions with other context values.
type contextKey string

const loggerKey = contextKey("logger")

// NewLogger builds the process-wide base logger. Production gets JSON for log
// shippers, everything else a human-readable text handler.
func NewLogger(production bool) *slog.Logger {
	if production {
		return slog.New(slog.NewJSONHandler(os.Stdout, nil))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// IntoContext stores a call-scoped logger in the context.
func IntoContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromCtx retrieves the call-scoped logger, falling back to slog.Default when
// none was attached.
func FromCtx(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}
