package pool

import (
	"context"

	kvserrors "github.com/bitcaskdb/kvs/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// WorkStealingPool delegates scheduling to golang.org/x/sync/errgroup, the
// Go ecosystem's nearest equivalent to a work-stealing thread pool:
// SetLimit bounds concurrently-running goroutines while the Go runtime
// scheduler itself handles load-balancing idle Ms across Ps, which is the
// work-stealing behavior the spec asks for.
//
// Unlike SharedQueuePool, a job's panic is not recovered here — errgroup
// has no panic-recovery contract, and a panicking job crashes the process
// the way an unrecovered panic in any other goroutine would. Callers that
// need panic isolation per job should use SharedQueuePool instead.
type WorkStealingPool struct {
	group *errgroup.Group
}

// NewWorkStealingPool constructs a WorkStealingPool limited to size
// concurrently-running jobs. It fails if size is not positive.
func NewWorkStealingPool(size int) (*WorkStealingPool, error) {
	if size <= 0 {
		return nil, kvserrors.NewPoolSizeError("work-stealing", size)
	}

	group, _ := errgroup.WithContext(context.Background())
	group.SetLimit(size)
	return &WorkStealingPool{group: group}, nil
}

// Spawn schedules job through the errgroup. SetLimit means Spawn may
// block briefly if size jobs are already running, which differs from the
// other two pools' strictly non-blocking Spawn — a work-stealing backend
// exerts exactly this kind of back-pressure by design.
func (p *WorkStealingPool) Spawn(job Job) {
	p.group.Go(func() error {
		job()
		return nil
	})
}

// Wait blocks until every spawned job has completed. Primarily useful in
// tests; the server does not call it on its request-serving pool.
func (p *WorkStealingPool) Wait() error {
	return p.group.Wait()
}
