// Package batch fans independent per-document work out over a bounded
// worker pool. Documents share no mutable state, so each file is
// processed in isolation and results are reassembled in input order.
package batch

import (
	"context"
)

// Worker pool size for parallel document processing.
const defaultMaxWorkers = 8

// Result pairs one item's output with its error. Batch runs report
// per-document failures instead of aborting, so errors travel with
// their slot rather than short-circuiting the run.
type Result[R any] struct {
	Value R
	Err   error
}

// WorkerPool bounds concurrent document processing.
type WorkerPool struct {
	maxWorkers int
	semaphore  chan struct{}
}

// NewWorkerPool creates a pool with the specified maximum workers.
func NewWorkerPool(maxWorkers int) *WorkerPool {
	if maxWorkers <= 0 {
		maxWorkers = defaultMaxWorkers
	}
	return &WorkerPool{
		maxWorkers: maxWorkers,
		semaphore:  make(chan struct{}, maxWorkers),
	}
}

// Acquire claims a worker slot, blocking while the pool is full.
func (wp *WorkerPool) Acquire(ctx context.Context) error {
	select {
	case wp.semaphore <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release frees a worker slot.
func (wp *WorkerPool) Release() {
	<-wp.semaphore
}

// ParallelProcess runs processFn over every item with at most
// maxWorkers in flight. Results keep input order and carry per-item
// errors. onProgress, if non-nil, is called after each completion with
// the number done so far; it is observational only and must not
// influence results.
func ParallelProcess[T any, R any](
	ctx context.Context,
	items []T,
	maxWorkers int,
	onProgress func(done, total int),
	processFn func(context.Context, int, T) (R, error),
) []Result[R] {
	results := make([]Result[R], len(items))
	if len(items) == 0 {
		return results
	}

	wp := NewWorkerPool(maxWorkers)

	type slot struct {
		index int
		value R
		err   error
	}
	resultChan := make(chan slot, len(items))

	launched := 0
	for i, item := range items {
		if err := wp.Acquire(ctx); err != nil {
			// Context cancelled: mark the remaining items instead of
			// leaving silent gaps.
			for j := i; j < len(items); j++ {
				results[j].Err = err
			}
			break
		}
		launched++

		go func(idx int, itm T) {
			defer wp.Release()

			select {
			case <-ctx.Done():
				var zero R
				resultChan <- slot{index: idx, value: zero, err: ctx.Err()}
				return
			default:
			}

			val, err := processFn(ctx, idx, itm)
			resultChan <- slot{index: idx, value: val, err: err}
		}(i, item)
	}

	for done := 0; done < launched; done++ {
		res := <-resultChan
		results[res.index] = Result[R]{Value: res.value, Err: res.err}
		if onProgress != nil {
			onProgress(done+1, len(items))
		}
	}
	close(resultChan)

	return results
}
