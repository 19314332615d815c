package concurrency

import (
	"context"
	"log/slog"
)

// Task processes the work item at index. Its error is stored in the slot
// for that index.
type Task func(ctx context.Context, index int) error

// WorkerPool runs indexed tasks on a bounded pool of goroutines
type WorkerPool struct {
	maxWorkers int
	logger     *slog.Logger
}
