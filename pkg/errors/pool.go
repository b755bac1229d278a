package errors

// PoolError is a specialized error type for worker pool construction and
// dispatch failures.
type PoolError struct {
	*baseError
	poolKind string // Which pool implementation raised the error ("naive", "shared-queue", "work-stealing").
	workers  int    // The requested worker count, for sizing failures.
}

// NewPoolError creates a new pool-specific error.
func NewPoolError(err error, code ErrorCode, msg string) *PoolError {
	return &PoolError{baseError: NewBaseError(err, code, msg)}
}

// WithPoolKind records which pool implementation raised the error.
func (pe *PoolError) WithPoolKind(kind string) *PoolError {
	pe.poolKind = kind
	return pe
}

// WithWorkers records the requested worker count.
func (pe *PoolError) WithWorkers(n int) *PoolError {
	pe.workers = n
	return pe
}

// PoolKind returns which pool implementation raised the error.
func (pe *PoolError) PoolKind() string {
	return pe.poolKind
}

// Workers returns the requested worker count that triggered the error.
func (pe *PoolError) Workers() int {
	return pe.workers
}

// NewPoolSizeError creates the error returned when a pool is constructed
// with a non-positive worker count.
func NewPoolSizeError(kind string, n int) *PoolError {
	return NewPoolError(nil, ErrorCodePoolSizeInvalid, "pool requires a positive worker count").
		WithPoolKind(kind).
		WithWorkers(n)
}
