package pipeline

import (
	"context"
	"sync"
)

// runBatch executes units in fixed-size waves of at most concurrency calls,
// waiting for every call in a wave to settle before the next wave starts.
// Results keep input order regardless of completion timing. A single unit
// failure fails the whole batch; callers needing per-unit tolerance wrap
// execute.
//
// Cancellation is cooperative and checked at wave boundaries only: calls from
// an already-dispatched wave are awaited, then their results are discarded.
// The returned error is the cancellation cause, so a run cancelled through
// context.WithCancelCause surfaces entity.ErrRunCancelled rather than the
// generic context error.
func runBatch[T any](
	ctx context.Context,
	units []T,
	execute func(context.Context, T) (string, error),
	concurrency int,
	onProgress func(completed, total int),
) ([]string, error) {
	if concurrency < 1 {
		concurrency = 1
	}

	results := make([]string, len(units))
	errs := make([]error, len(units))

	for start := 0; start < len(units); start += concurrency {
		if ctx.Err() != nil {
			return nil, context.Cause(ctx)
		}

		end := min(start+concurrency, len(units))

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			i := i
			wg.Add(1)
			go func() {
				defer wg.Done()
				results[i], errs[i] = execute(ctx, units[i])
			}()
		}
		wg.Wait()

		if ctx.Err() != nil {
			return nil, context.Cause(ctx)
		}

		for i := start; i < end; i++ {
			if errs[i] != nil {
				return nil, errs[i]
			}
		}

		if onProgress != nil {
			onProgress(end, len(units))
		}
	}

	return results, nil
}
