package middleware

import (
	"context"
	"log/slog"
	"time"

	"fitryne/internal/app/commands"
	"fitryne/internal/app/queries"
)

// Observer receives one call per handled message.
type Observer interface {
	ObserveMessage(kind, key string, took time.Duration, err error)
}

// ObserveCommands logs and reports every dispatched command. Either argument may be nil.
func ObserveCommands(logger *slog.Logger, obs Observer) CommandMiddleware {
	return func(next commands.Bus) commands.Bus {
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			start := time.Now()
			res, err := next.Dispatch(ctx, cmd)
			report(ctx, logger, obs, "command", cmd.Key(), time.Since(start), err)
			return res, err
		})
	}
}

// ObserveQueries is ObserveCommands for the query side.
func ObserveQueries(logger *slog.Logger, obs Observer) QueryMiddleware {
	return func(next queries.Bus) queries.Bus {
		return queryFunc(func(ctx context.Context, q queries.Query) (any, error) {
			start := time.Now()
			res, err := next.Ask(ctx, q)
			report(ctx, logger, obs, "query", q.Key(), time.Since(start), err)
			return res, err
		})
	}
}

func report(ctx context.Context, logger *slog.Logger, obs Observer, kind, key string, took time.Duration, err error) {
	if obs != nil {
		obs.ObserveMessage(kind, key, took, err)
	}
	if logger == nil {
		return
	}
	if err != nil {
		logger.WarnContext(ctx, kind+" failed", "key", key, "duration", took, "error", err)
		return
	}
	logger.DebugContext(ctx, kind+" handled", "key", key, "duration", took)
}
