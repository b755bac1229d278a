package pool

import (
	"sync"

	kvserrors "github.com/bitcaskdb/kvs/pkg/errors"
	"go.uber.org/zap"
)

// SharedQueuePool spawns a fixed number of long-lived worker goroutines
// that drain jobs from an unbounded shared queue. A worker that panics
// while running a job recovers, logs, and keeps draining — the worker is
// never replaced, so the pool's parallelism never decays under panics.
type SharedQueuePool struct {
	queue *unboundedQueue
	log   *zap.SugaredLogger
}

// NewSharedQueuePool constructs a SharedQueuePool with size workers. It
// fails if size is not positive, since a pool with zero workers can never
// drain its queue.
func NewSharedQueuePool(size int) (*SharedQueuePool, error) {
	return NewSharedQueuePoolWithLogger(size, zap.NewNop().Sugar())
}

// NewSharedQueuePoolWithLogger is NewSharedQueuePool with an explicit
// logger for panic-recovery reporting.
func NewSharedQueuePoolWithLogger(size int, log *zap.SugaredLogger) (*SharedQueuePool, error) {
	if size <= 0 {
		return nil, kvserrors.NewPoolSizeError("shared-queue", size)
	}

	p := &SharedQueuePool{queue: newUnboundedQueue(), log: log}
	for i := 0; i < size; i++ {
		go p.worker()
	}
	return p, nil
}

// Spawn enqueues job. The queue is unbounded, so this never blocks.
func (p *SharedQueuePool) Spawn(job Job) {
	p.queue.push(job)
}

// Close stops accepting new jobs and lets every worker drain and exit
// once the queue empties.
func (p *SharedQueuePool) Close() {
	p.queue.closeQueue()
}

func (p *SharedQueuePool) worker() {
	for {
		job, ok := p.queue.pop()
		if !ok {
			return
		}
		p.runJob(job)
	}
}

// runJob recovers a panicking job so the worker survives to process the
// next one — the spec requires the worker not be replaced per job, only
// that the panic not take the whole pool down with it.
func (p *SharedQueuePool) runJob(job Job) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Errorw("worker recovered from panicking job", "panic", r)
		}
	}()
	job()
}

// unboundedQueue is a simple condition-variable-backed FIFO queue with no
// capacity limit, the Go equivalent of the unbounded MPMC channel the
// spec calls for — Go's built-in channels are always bounded, so Spawn
// over a fixed-size channel would eventually block the caller.
type unboundedQueue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  []Job
	closed bool
}

func newUnboundedQueue() *unboundedQueue {
	q := &unboundedQueue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

func (q *unboundedQueue) push(job Job) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.items = append(q.items, job)
	q.cond.Signal()
}

func (q *unboundedQueue) pop() (Job, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.items) == 0 && !q.closed {
		q.cond.Wait()
	}
	if len(q.items) == 0 {
		return nil, false
	}
	job := q.items[0]
	q.items = q.items[1:]
	return job, true
}

func (q *unboundedQueue) closeQueue() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	q.cond.Broadcast()
}
