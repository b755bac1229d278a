package pool

// NaivePool spawns a fresh goroutine per job. Construction is infallible
// and ignores any requested size — there is no fixed worker count to
// validate.
type NaivePool struct{}

// NewNaivePool constructs a NaivePool.
func NewNaivePool() *NaivePool {
	return &NaivePool{}
}

// Spawn runs job on a brand new goroutine.
func (p *NaivePool) Spawn(job Job) {
	go job()
}
