package pool

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
)

func TestForEachRunsAllTasks(t *testing.T) {
	var count atomic.Int64
	errs := ForEach(context.Background(), 20, 4, func(ctx context.Context, i int) error {
		count.Add(1)
		return nil
	})
	if count.Load() != 20 {
		t.Errorf("ran %d tasks, want 20", count.Load())
	}
	for i, err := range errs {
		if err != nil {
			t.Errorf("task %d: unexpected error %v", i, err)
		}
	}
}

func TestForEachFailureDoesNotCancelSiblings(t *testing.T) {
	var completed atomic.Int64
	errs := ForEach(context.Background(), 10, 2, func(ctx context.Context, i int) error {
		if i == 0 {
			return errors.New("boom")
		}
		completed.Add(1)
		return nil
	})
	if completed.Load() != 9 {
		t.Errorf("completed %d siblings, want 9", completed.Load())
	}
	if errs[0] == nil {
		t.Error("expected error at index 0")
	}
}

func TestForEachBoundsConcurrency(t *testing.T) {
	const workers = 3
	var mu sync.Mutex
	var active, peak int

	ForEach(context.Background(), 30, workers, func(ctx context.Context, i int) error {
		mu.Lock()
		active++
		if active > peak {
			peak = active
		}
		mu.Unlock()

		mu.Lock()
		active--
		mu.Unlock()
		return nil
	})

	if peak > workers {
		t.Errorf("peak concurrency %d exceeded limit %d", peak, workers)
	}
}

func TestMapPreservesOrder(t *testing.T) {
	inputs := []int{1, 2, 3, 4, 5}
	results, errs := Map(context.Background(), inputs, 3, func(ctx context.Context, in int) (string, error) {
		if in == 3 {
			return "", errors.New("skip")
		}
		return fmt.Sprintf("v%d", in), nil
	})

	want := []string{"v1", "v2", "", "v4", "v5"}
	for i := range want {
		if results[i] != want[i] {
			t.Errorf("results[%d] = %q, want %q", i, results[i], want[i])
		}
	}
	if errs[2] == nil {
		t.Error("expected error for failed input")
	}
}
