package async

import (
	"context"
	"runtime/debug"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/sync/errgroup"
)

// ForEach runs handler for every item concurrently and waits until all of them
// have returned.
//
// Behavior:
//   - limit <= 0 starts every handler at once, otherwise at most limit run together
//   - a failing handler does not cancel its siblings
//   - returns the first error in completion order
//   - a panicking handler is recovered, logged with its stack and reported as an error
//   - once ctx is done, items not yet started are skipped and ctx.Err() is reported
//   - a cancellation after every item has run does not fail the call
func ForEach[T any](ctx context.Context, limit int, items []T, handler func(ctx context.Context, item T) error) error {
	var eg errgroup.Group
	if limit > 0 {
		eg.SetLimit(limit)
	}

	skipped := false
	for _, item := range items {
		if ctx.Err() != nil {
			skipped = true
			break
		}
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return safeCall(ctx, item, handler)
		})
	}

	if err := eg.Wait(); err != nil {
		return err
	}
	if skipped {
		return ctx.Err()
	}
	return nil
}

func safeCall[T any](ctx context.Context, item T, handler func(ctx context.Context, item T) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			stack := debug.Stack()
			ctxlog.From(ctx).Error("panic in async handler",
				"recover", r,
				"stack", string(stack))
			err = goerr.New("panic in async handler", goerr.V("recover", r))
		}
	}()

	return handler(ctx, item)
}
