package queue

import (
	"fmt"
	"sync"
)

// Registry hands out shared queues by name. Queues are created lazily
// on first use and live for the life of the registry; repeated Get
// calls with the same name/concurrency/maxPending share state.
//
// The registry only coordinates in-memory scheduling, never business
// truth, so it is safe as process-wide state. It is still passed in
// explicitly so tests can build isolated registries.
type Registry struct {
	mu     sync.Mutex
	queues map[string]*Queue
}

func NewRegistry() *Registry {
	return &Registry{queues: make(map[string]*Queue)}
}

// Get returns the queue registered under the name/concurrency/maxPending
// combination, creating it if absent.
func (r *Registry) Get(name string, concurrency, maxPending int) *Queue {
	key := fmt.Sprintf("%s:%d:%d", name, concurrency, maxPending)

	r.mu.Lock()
	defer r.mu.Unlock()

	q, ok := r.queues[key]
	if !ok {
		q = newQueue(concurrency, maxPending)
		r.queues[key] = q
	}
	return q
}

// Reset drops every queue. Meant for tests; pending tasks in dropped
// queues still finish.
func (r *Registry) Reset() {
	r.mu.Lock()
	r.queues = make(map[string]*Queue)
	r.mu.Unlock()
}

// Len reports the number of live queues.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.queues)
}
