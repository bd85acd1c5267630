package queue

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

func TestAddRunsTask(t *testing.T) {
	q := newQueue(1, 10)

	ran := false
	err := q.Add(func() error {
		ran = true
		return nil
	})

	require.NoError(t, err)
	assert.True(t, ran)
}

func TestAddReturnsTaskError(t *testing.T) {
	q := newQueue(1, 10)
	boom := errors.New("task failed")

	err := q.Add(func() error { return boom })

	assert.ErrorIs(t, err, boom)
}

func TestTasksRunInSubmissionOrder(t *testing.T) {
	q := newQueue(1, 100)

	var mu sync.Mutex
	var order []int

	gate := make(chan struct{})
	started := make(chan struct{})
	go func() {
		q.Add(func() error {
			close(started)
			<-gate
			return nil
		})
	}()
	<-started

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			q.Add(func() error {
				mu.Lock()
				order = append(order, i)
				mu.Unlock()
				return nil
			})
		}()
		// Submission order is only defined for submissions that happened
		// before the next one, so space them out.
		waitFor(t, func() bool { return q.Size() == i+2 })
	}

	close(gate)
	wg.Wait()

	require.Len(t, order, 10)
	for i, v := range order {
		assert.Equal(t, i, v)
	}
}

func TestMutualExclusionNoLostUpdates(t *testing.T) {
	q := newQueue(1, 100)

	// Simulated account row: each task does a read-then-write cycle the
	// way a balance credit does. Without serialization these cycles
	// interleave and drop updates.
	var balance int64
	var cycles int32

	const n = 30
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := q.Add(func() error {
				current := atomic.LoadInt64(&balance)
				time.Sleep(time.Millisecond) // widen the race window
				atomic.StoreInt64(&balance, current+1000)
				atomic.AddInt32(&cycles, 1)
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(30000), balance)
	assert.Equal(t, int32(n), cycles)
}

func TestConcurrencyLimit(t *testing.T) {
	q := newQueue(2, 100)

	var running, peak int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			q.Add(func() error {
				cur := atomic.AddInt32(&running, 1)
				for {
					p := atomic.LoadInt32(&peak)
					if cur <= p || atomic.CompareAndSwapInt32(&peak, p, cur) {
						break
					}
				}
				time.Sleep(5 * time.Millisecond)
				atomic.AddInt32(&running, -1)
				return nil
			})
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(2))
}

func TestCapacityExceeded(t *testing.T) {
	q := newQueue(1, 2)

	gate := make(chan struct{})
	started := make(chan struct{})

	results := make(chan error, 3)
	go func() {
		results <- q.Add(func() error {
			close(started)
			<-gate
			return nil
		})
	}()
	<-started

	// One task running, fill the two pending slots.
	for i := 0; i < 2; i++ {
		go func() {
			results <- q.Add(func() error { return nil })
		}()
	}
	waitFor(t, func() bool { return q.Size() == 3 })

	// Fourth submission finds the backlog full.
	err := q.Add(func() error { return nil })
	assert.ErrorIs(t, err, ErrCapacityExceeded)

	// The accepted tasks are unaffected by the rejection.
	close(gate)
	for i := 0; i < 3; i++ {
		assert.NoError(t, <-results)
	}
}

func TestFailingTaskDoesNotAbortSiblings(t *testing.T) {
	q := newQueue(1, 10)
	boom := errors.New("first task failed")

	gate := make(chan struct{})
	started := make(chan struct{})

	firstErr := make(chan error, 1)
	go func() {
		firstErr <- q.Add(func() error {
			close(started)
			<-gate
			return boom
		})
	}()
	<-started

	siblingRan := make(chan struct{})
	siblingErr := make(chan error, 1)
	go func() {
		siblingErr <- q.Add(func() error {
			close(siblingRan)
			return nil
		})
	}()
	waitFor(t, func() bool { return q.Size() == 2 })

	close(gate)

	assert.ErrorIs(t, <-firstErr, boom)
	assert.NoError(t, <-siblingErr)
	<-siblingRan
}

func TestRegistrySharesQueues(t *testing.T) {
	r := NewRegistry()

	q1 := r.Get("account:1", 1, 100)
	q2 := r.Get("account:1", 1, 100)
	q3 := r.Get("account:2", 1, 100)

	assert.Same(t, q1, q2)
	assert.NotSame(t, q1, q3)
	assert.Equal(t, 2, r.Len())
}

func TestRegistryDistinguishesParameters(t *testing.T) {
	r := NewRegistry()

	q1 := r.Get("account:1", 1, 100)
	q2 := r.Get("account:1", 2, 100)

	assert.NotSame(t, q1, q2)
}

func TestRegistryReset(t *testing.T) {
	r := NewRegistry()

	q1 := r.Get("account:1", 1, 100)
	r.Reset()
	q2 := r.Get("account:1", 1, 100)

	assert.NotSame(t, q1, q2)
}
