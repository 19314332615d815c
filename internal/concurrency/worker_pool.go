package concurrency

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"

	"pdfcmd/internal/common"
)

// NewWorkerPool creates a new worker pool instance. A non-positive
// maxWorkers picks a size from the CPU count.
func NewWorkerPool(maxWorkers int, logger *slog.Logger) *WorkerPool {
	if maxWorkers <= 0 {
		maxWorkers = calculateOptimalWorkerCount()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkerPool{
		maxWorkers: maxWorkers,
		logger:     logger,
	}
}

// Size returns the maximum number of concurrent workers
func (wp *WorkerPool) Size() int {
	return wp.maxWorkers
}

// Run executes task for every index in [0, n) and returns one error slot per
// index. Tasks not yet started when ctx is cancelled get ctx.Err().
func (wp *WorkerPool) Run(ctx context.Context, n int, task Task) []error {
	errs := make([]error, n)
	if n == 0 {
		return errs
	}

	size := wp.maxWorkers
	if size > n {
		size = n
	}

	pool, err := ants.NewPool(size)
	if err != nil {
		wp.logger.Error("Failed to create worker pool", "error", err)
		for i := range errs {
			errs[i] = fmt.Errorf("failed to create worker pool: %w", err)
		}
		return errs
	}
	defer pool.Release()

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		index := i
		wg.Add(1)

		err := pool.Submit(func() {
			defer wg.Done()

			select {
			case <-ctx.Done():
				errs[index] = ctx.Err()
				return
			default:
			}

			errs[index] = task(ctx, index)
		})
		if err != nil {
			wg.Done()
			wp.logger.Error("Failed to submit task", "index", index, "error", err)
			errs[index] = fmt.Errorf("failed to submit task: %w", err)
		}
	}

	wg.Wait()
	return errs
}

// FirstError returns the lowest-index error and its index, or -1 and nil
func FirstError(errs []error) (int, error) {
	for i, err := range errs {
		if err != nil {
			return i, err
		}
	}
	return -1, nil
}

// calculateOptimalWorkerCount determines the optimal number of workers
func calculateOptimalWorkerCount() int {
	maxConcurrency := runtime.NumCPU()
	if maxConcurrency > common.MaxConcurrencyLimit {
		maxConcurrency = common.MaxConcurrencyLimit
	}
	return maxConcurrency
}
