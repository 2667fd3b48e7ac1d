package batch

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the ceiling used when a caller passes limit <= 0
const DefaultConcurrency = 6

// Result is the outcome of processing one item
type Result[R any] struct {
	Value R
	Err   error
}

// MapWithLimit calls fn once for every item with at most limit calls in
// flight and returns the results in input order once all of them finished.
// A failing or panicking item only sets its own Result.Err. Items not yet
// started when ctx is done are reported with ctx.Err() instead of running.
func MapWithLimit[T, R any](ctx context.Context, limit int, items []T, fn func(context.Context, T) (R, error)) []Result[R] {
	results := make([]Result[R], len(items))
	if len(items) == 0 {
		return results
	}
	if limit <= 0 {
		limit = DefaultConcurrency
	}

	var g errgroup.Group
	g.SetLimit(limit)

	for i, item := range items {
		if err := ctx.Err(); err != nil {
			results[i].Err = err
			continue
		}
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					results[i] = Result[R]{Err: fmt.Errorf("item %d panicked: %v", i, r)}
				}
			}()
			value, err := fn(ctx, item)
			results[i] = Result[R]{Value: value, Err: err}
			return nil
		})
	}

	_ = g.Wait()
	return results
}
