package cli

import (
	"context"

	"github.com/charmbracelet/log"
)

type ctxKey string

const loggerKey ctxKey = "logger"

// withLogger stores a logger in the context for downstream use.
func withLogger(ctx context.Context, logger *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// loggerFromContext retrieves the logger from the context, falling back to
// the default logger when none was stored.
func loggerFromContext(ctx context.Context) *log.Logger {
	if logger, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return logger
	}
	return log.Default()
}
