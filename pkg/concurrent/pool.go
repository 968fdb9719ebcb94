package concurrent

import (
	"context"
	"sync"
)

const defaultConcurrency = 10

// ParallelMap applies fn to every item with at most maxConcurrency calls in flight.
// results[i] always corresponds to items[i], whatever order the calls finish in.
// Items not yet started when ctx is done are skipped and reported through the returned error.
func ParallelMap[T, R any](ctx context.Context, items []T, fn func(context.Context, int, T) R, maxConcurrency int) ([]R, error) {
	if len(items) == 0 {
		return nil, nil
	}
	if maxConcurrency <= 0 {
		maxConcurrency = defaultConcurrency
	}

	results := make([]R, len(items))
	skipped := make([]bool, len(items))

	var wg sync.WaitGroup
	sem := make(chan struct{}, maxConcurrency)

	for i, item := range items {
		wg.Add(1)
		go func(idx int, val T) {
			defer wg.Done()

			if ctx.Err() != nil {
				skipped[idx] = true
				return
			}
			select {
			case <-ctx.Done():
				skipped[idx] = true
				return
			case sem <- struct{}{}:
				defer func() { <-sem }()
				results[idx] = fn(ctx, idx, val)
			}
		}(i, item)
	}

	wg.Wait()

	for _, s := range skipped {
		if s {
			return results, ctx.Err()
		}
	}
	return results, nil
}
