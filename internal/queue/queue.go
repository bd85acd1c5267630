package queue

import (
	"errors"
	"sync"
)

// ErrCapacityExceeded is returned when a queue already has maxPending
// tasks waiting to start. Callers treat it as a retry-later signal
// (HTTP 429 at the edge).
var ErrCapacityExceeded = errors.New("queue capacity exceeded")

// Task is a unit of work executed by a queue.
type Task func() error

type waiter struct {
	task Task
	done chan error
}

// Queue runs tasks in FIFO submission order with at most concurrency
// of them running at once. With concurrency 1 it gives strict mutual
// exclusion per key, which is how balance mutations for one account
// are kept from interleaving.
//
// State lives in process memory only. A horizontally scaled deployment
// needs a row lock from the store for the same guarantee.
type Queue struct {
	mu          sync.Mutex
	concurrency int
	maxPending  int
	running     int
	pending     []*waiter
}

func newQueue(concurrency, maxPending int) *Queue {
	if concurrency < 1 {
		concurrency = 1
	}
	if maxPending < 1 {
		maxPending = 1
	}
	return &Queue{
		concurrency: concurrency,
		maxPending:  maxPending,
	}
}

// Add enqueues the task and blocks the caller until it has run,
// returning the task's own error. A task failure rejects only its own
// caller; queued siblings still run in order. When maxPending tasks
// are already waiting to start, Add rejects immediately with
// ErrCapacityExceeded instead of growing the backlog.
func (q *Queue) Add(task Task) error {
	q.mu.Lock()
	if len(q.pending) >= q.maxPending {
		q.mu.Unlock()
		return ErrCapacityExceeded
	}
	w := &waiter{task: task, done: make(chan error, 1)}
	q.pending = append(q.pending, w)
	q.pump()
	q.mu.Unlock()

	return <-w.done
}

// Size reports queued plus running tasks.
func (q *Queue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending) + q.running
}

// pump starts eligible tasks. Callers must hold q.mu.
func (q *Queue) pump() {
	for q.running < q.concurrency && len(q.pending) > 0 {
		w := q.pending[0]
		q.pending = q.pending[1:]
		q.running++
		go q.run(w)
	}
}

func (q *Queue) run(w *waiter) {
	err := w.task()

	q.mu.Lock()
	q.running--
	q.pump()
	q.mu.Unlock()

	w.done <- err
}
