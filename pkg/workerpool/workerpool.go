// Package workerpool runs work items concurrently on a bounded number of goroutines.
package workerpool

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Process calls process for every item on at most workers goroutines. The
// first error cancels the context passed to the remaining calls, stops
// scheduling and is returned. Items are not started once ctx is done.
func Process[T any](
	ctx context.Context,
	workers int,
	items []T,
	process func(context.Context, T) error,
) error {
	if workers < 1 {
		workers = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, item := range items {
		item := item
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			return process(gctx, item)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}
