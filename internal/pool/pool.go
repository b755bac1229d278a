// Package pool provides three interchangeable worker pool implementations
// that dispatch no-argument, no-return jobs: a thread-per-job pool, a
// bounded shared-queue pool with panic-resilient workers, and a
// work-stealing pool built on golang.org/x/sync/errgroup.
package pool

import (
	kvserrors "github.com/bitcaskdb/kvs/pkg/errors"
	"go.uber.org/zap"
)

// Job is a unit of dispatched work: a closure with no arguments and no
// return value, the same contract a server connection loop uses to hand
// off a client request to a pool worker.
type Job func()

// Pool dispatches jobs to workers. Implementations differ in scheduling
// strategy: the naive and shared-queue pools' Spawn never blocks the
// caller waiting for a worker to become free (the shared queue grows
// without bound instead), while the work-stealing pool's Spawn blocks
// while size jobs are already running.
type Pool interface {
	// Spawn enqueues job for execution. It returns once the job has been
	// handed off, not once it has run.
	Spawn(job Job)
}

// New constructs a pool of the given kind ("naive", "shared-queue", or
// "work-stealing") with size workers. naive ignores size. The other two
// kinds fail if size is not positive. log receives shared-queue panic
// reports; it may be nil.
func New(kind string, size int, log *zap.SugaredLogger) (Pool, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	switch kind {
	case "naive":
		return NewNaivePool(), nil
	case "shared-queue":
		return NewSharedQueuePoolWithLogger(size, log)
	case "work-stealing":
		return NewWorkStealingPool(size)
	default:
		return nil, kvserrors.NewFieldFormatError("kind", kind, `"naive", "shared-queue", or "work-stealing"`)
	}
}
