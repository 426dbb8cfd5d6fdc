package pathtracer

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// ThreadPool dispatches independent groups of work across a bounded number
// of worker goroutines and waits for all of them to finish, the Go
// idiomatic substitute for the original renderer's hand-rolled
// ring-buffer-of-jobs/condvar/atomic-counter Threadpool: golang.org/x/sync/errgroup
// already provides the "bounded concurrency, fail-fast, wait for all"
// contract a condvar-based dispatch/wait_all pair was built to express.
type ThreadPool struct {
	workerCount int
}

// NewThreadPool returns a pool that runs at most workerCount jobs
// concurrently. workerCount <= 0 is treated as 1.
func NewThreadPool(workerCount int) *ThreadPool {
	if workerCount <= 0 {
		workerCount = 1
	}
	return &ThreadPool{workerCount: workerCount}
}

// Dispatch splits [0, jobCount) into contiguous groups of groupSize items
// and runs fn(start, end) for each group concurrently, honoring the pool's
// worker cap. It blocks until every group has run, and returns the first
// error any group returned (if any); a returned error does not cancel
// groups already in flight; fn should itself watch ctx.Done() if it can
// run long enough for cancellation to matter.
func (tp *ThreadPool) Dispatch(ctx context.Context, jobCount, groupSize int, fn func(ctx context.Context, start, end int) error) error {
	if groupSize <= 0 {
		groupSize = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(tp.workerCount)

	for start := 0; start < jobCount; start += groupSize {
		end := start + groupSize
		if end > jobCount {
			end = jobCount
		}
		start, end := start, end
		g.Go(func() error {
			return fn(gctx, start, end)
		})
	}

	return g.Wait()
}

// WorkerCount reports the pool's concurrency cap.
func (tp *ThreadPool) WorkerCount() int {
	return tp.workerCount
}
