package middleware

import (
	"context"

	"rentops/internal/app/commands"
	"rentops/internal/app/queries"
)

type CommandMiddleware func(next commands.Bus) commands.Bus

type QueryMiddleware func(next queries.Bus) queries.Bus

// ChainCommands wraps base with mws; the first middleware is the outermost.
func ChainCommands(base commands.Bus, mws ...CommandMiddleware) commands.Bus {
	wrapped := base
	for i := len(mws) - 1; i >= 0; i-- {
		wrapped = mws[i](wrapped)
	}
	return wrapped
}

func ChainQueries(base queries.Bus, mws ...QueryMiddleware) queries.Bus {
	wrapped := base
	for i := len(mws) - 1; i >= 0; i-- {
		wrapped = mws[i](wrapped)
	}
	return wrapped
}

type commandFunc func(ctx context.Context, cmd commands.Command) (any, error)

func (f commandFunc) Dispatch(ctx context.Context, cmd commands.Command) (any, error) {
	return f(ctx, cmd)
}

type queryFunc func(ctx context.Context, query queries.Query) (any, error)

func (f queryFunc) Ask(ctx context.Context, q queries.Query) (any, error) {
	return f(ctx, q)
}

// Before runs check ahead of every command and every query.
func Before(check func(ctx context.Context, message any) error) (CommandMiddleware, QueryMiddleware) {
	cmd := func(next commands.Bus) commands.Bus {
		return commandFunc(func(ctx context.Context, c commands.Command) (any, error) {
			if err := check(ctx, c); err != nil {
				return nil, err
			}
			return next.Dispatch(ctx, c)
		})
	}
	query := func(next queries.Bus) queries.Bus {
		return queryFunc(func(ctx context.Context, q queries.Query) (any, error) {
			if err := check(ctx, q); err != nil {
				return nil, err
			}
			return next.Ask(ctx, q)
		})
	}
	return cmd, query
}
