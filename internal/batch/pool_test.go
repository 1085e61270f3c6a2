package batch

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestWorkerPool(t *testing.T) {
	ctx := context.Background()
	wp := NewWorkerPool(2)

	if err := wp.Acquire(ctx); err != nil {
		t.Fatalf("failed to acquire first worker: %v", err)
	}
	if err := wp.Acquire(ctx); err != nil {
		t.Fatalf("failed to acquire second worker: %v", err)
	}

	// Third acquire blocks until a slot frees; verify via timeout.
	ctx2, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	if err := wp.Acquire(ctx2); err == nil {
		t.Error("expected timeout error when pool is full, got nil")
	}

	wp.Release()
	if err := wp.Acquire(ctx); err != nil {
		t.Fatalf("failed to acquire worker after release: %v", err)
	}
}

func TestParallelProcess(t *testing.T) {
	ctx := context.Background()
	items := []int{1, 2, 3, 4, 5}

	results := ParallelProcess(ctx, items, 3, nil, func(ctx context.Context, idx int, item int) (int, error) {
		return item * 2, nil
	})

	if len(results) != len(items) {
		t.Fatalf("expected %d results, got %d", len(items), len(results))
	}
	for i, res := range results {
		if res.Err != nil {
			t.Errorf("result %d has error: %v", i, res.Err)
		}
		if res.Value != items[i]*2 {
			t.Errorf("result[%d] = %d, want %d", i, res.Value, items[i]*2)
		}
	}
}

func TestParallelProcessIsolatesErrors(t *testing.T) {
	ctx := context.Background()
	items := []int{1, 2, 3}
	testErr := errors.New("processing error")

	results := ParallelProcess(ctx, items, 2, nil, func(ctx context.Context, idx int, item int) (int, error) {
		if item == 2 {
			return 0, testErr
		}
		return item, nil
	})

	if results[1].Err == nil {
		t.Error("expected error in slot 1")
	}
	// One bad item must not poison its neighbors.
	if results[0].Err != nil || results[2].Err != nil {
		t.Errorf("healthy slots carry errors: %v, %v", results[0].Err, results[2].Err)
	}
}

func TestParallelProcessProgress(t *testing.T) {
	ctx := context.Background()
	items := []string{"a", "b", "c", "d"}

	var calls atomic.Int32
	var lastDone atomic.Int32
	results := ParallelProcess(ctx, items, 2, func(done, total int) {
		calls.Add(1)
		lastDone.Store(int32(done))
		if total != len(items) {
			t.Errorf("progress total = %d, want %d", total, len(items))
		}
	}, func(ctx context.Context, idx int, item string) (string, error) {
		return item, nil
	})

	if len(results) != len(items) {
		t.Fatalf("expected %d results, got %d", len(items), len(results))
	}
	if got := calls.Load(); got != int32(len(items)) {
		t.Errorf("progress called %d times, want %d", got, len(items))
	}
	if lastDone.Load() != int32(len(items)) {
		t.Errorf("final done = %d, want %d", lastDone.Load(), len(items))
	}
}

func TestParallelProcessContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	items := []int{1, 2, 3}
	results := ParallelProcess(ctx, items, 1, nil, func(ctx context.Context, idx int, item int) (int, error) {
		return item, nil
	})

	for i, res := range results {
		if res.Err == nil {
			t.Errorf("slot %d: expected cancellation error", i)
		}
	}
}

func TestParallelProcessEmpty(t *testing.T) {
	results := ParallelProcess(context.Background(), nil, 4, nil, func(ctx context.Context, idx int, item int) (int, error) {
		t.Error("processFn should not be called for empty input")
		return 0, nil
	})
	if len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
}
