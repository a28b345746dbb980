package middleware

import (
	"context"
	"log/slog"
	"time"

	"rentops/internal/app/commands"
)

// Logging records the outcome and latency of every command.
func Logging(logger *slog.Logger) CommandMiddleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next commands.Bus) commands.Bus {
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			start := time.Now()
			res, err := next.Dispatch(ctx, cmd)
			attrs := []any{"command", cmd.Key(), "duration", time.Since(start)}
			if err != nil {
				logger.WarnContext(ctx, "command rejected", append(attrs, "error", err)...)
				return nil, err
			}
			logger.DebugContext(ctx, "command handled", attrs...)
			return res, nil
		})
	}
}
