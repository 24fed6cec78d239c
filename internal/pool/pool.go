// Package pool provides the bounded worker-pool primitive used for adapter
// fan-out, enrichment and persistence parallelism.
package pool

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// ForEach runs fn for every index in [0,n) on at most workers goroutines
// and waits for all of them. Errors from fn are collected per task and do
// not cancel the remaining tasks; callers that want settled semantics pass
// fns that handle their own failures and return nil.
func ForEach(ctx context.Context, n, workers int, fn func(ctx context.Context, i int) error) []error {
	if workers < 1 {
		workers = 1
	}
	errs := make([]error, n)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			errs[i] = fn(ctx, i)
			// Collect instead of propagating so one failed task never
			// cancels its siblings.
			return nil
		})
	}
	_ = g.Wait()
	return errs
}

// Map runs fn for every input on at most workers goroutines and returns the
// results in input order. Failed tasks yield the zero value of T.
func Map[I, T any](ctx context.Context, inputs []I, workers int, fn func(ctx context.Context, in I) (T, error)) ([]T, []error) {
	results := make([]T, len(inputs))
	errs := ForEach(ctx, len(inputs), workers, func(ctx context.Context, i int) error {
		out, err := fn(ctx, inputs[i])
		if err != nil {
			return err
		}
		results[i] = out
		return nil
	})
	return results, errs
}
