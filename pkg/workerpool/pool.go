// Package workerpool runs independent tasks on a bounded number of goroutines.
package workerpool

import (
	"context"

	"golang.org/x/sync/errgroup"
)

const DefaultWorkers = 4

// Map calls fn for every item using at most workers goroutines and returns the
// results in input order. fn reports failures through its result type, so a
// failing task never cancels its siblings. Map returns once every task is done.
func Map[T, R any](ctx context.Context, workers int, items []T, fn func(ctx context.Context, item T) R) []R {
	if workers <= 0 {
		workers = DefaultWorkers
	}

	results := make([]R, len(items))

	var g errgroup.Group
	g.SetLimit(workers)

	for i, item := range items {
		g.Go(func() error {
			results[i] = fn(ctx, item)
			return nil
		})
	}

	_ = g.Wait()
	return results
}
