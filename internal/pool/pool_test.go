package pool

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNaivePoolRunsAllJobs(t *testing.T) {
	p := NewNaivePool()
	var n atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		p.Spawn(func() {
			defer wg.Done()
			n.Add(1)
		})
	}
	wg.Wait()
	require.EqualValues(t, 50, n.Load())
}

func TestSharedQueuePoolRejectsNonPositiveSize(t *testing.T) {
	_, err := NewSharedQueuePool(0)
	require.Error(t, err)

	_, err = NewSharedQueuePool(-1)
	require.Error(t, err)
}

func TestSharedQueuePoolRunsAllJobs(t *testing.T) {
	p, err := NewSharedQueuePool(4)
	require.NoError(t, err)

	var n atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		p.Spawn(func() {
			defer wg.Done()
			n.Add(1)
		})
	}
	wg.Wait()
	require.EqualValues(t, 200, n.Load())
}

func TestSharedQueuePoolSurvivesPanickingJob(t *testing.T) {
	p, err := NewSharedQueuePool(2)
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(1)
	p.Spawn(func() {
		defer wg.Done()
		panic("boom")
	})
	wg.Wait()

	// The pool's workers must still be alive to run a job afterward.
	done := make(chan struct{})
	p.Spawn(func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("pool did not survive a panicking job")
	}
}

func TestWorkStealingPoolRejectsNonPositiveSize(t *testing.T) {
	_, err := NewWorkStealingPool(0)
	require.Error(t, err)
}

func TestWorkStealingPoolRunsAllJobs(t *testing.T) {
	p, err := NewWorkStealingPool(4)
	require.NoError(t, err)

	var n atomic.Int64
	for i := 0; i < 100; i++ {
		p.Spawn(func() {
			n.Add(1)
		})
	}
	require.NoError(t, p.Wait())
	require.EqualValues(t, 100, n.Load())
}

func TestNewRejectsUnknownKind(t *testing.T) {
	_, err := New("bogus", 4, nil)
	require.Error(t, err)
}
