package cache

import (
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Cache is a small in-memory TTL cache with collapsing of concurrent
// fetches for the same key. Cached values are display-only snapshots;
// the database row stays the source of truth, so mutating code paths
// must read the store directly and call Delete after writing.
type Cache[T any] struct {
	mu      sync.RWMutex
	entries map[string]entry[T]
	group   singleflight.Group
	now     func() time.Time
}

type entry[T any] struct {
	value  T
	expiry time.Time
}

func New[T any]() *Cache[T] {
	return &Cache[T]{
		entries: make(map[string]entry[T]),
		now:     time.Now,
	}
}

// Get returns a live cached value. Expired entries are dropped.
func (c *Cache[T]) Get(key string) (T, bool) {
	var zero T

	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return zero, false
	}

	if e.expiry.Before(c.now()) {
		c.Delete(key)
		return zero, false
	}
	return e.value, true
}

// Set stores a value expiring ttl from now.
func (c *Cache[T]) Set(key string, value T, ttl time.Duration) {
	c.mu.Lock()
	c.entries[key] = entry[T]{value: value, expiry: c.now().Add(ttl)}
	c.mu.Unlock()
}

// Delete removes the entry immediately. This is the invalidation
// primitive used after balance writes.
func (c *Cache[T]) Delete(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// ReadThrough returns a live cached value, or fetches one via supplier
// and caches it for ttl. Concurrent calls for the same uncached key
// share a single supplier invocation; a supplier error propagates to
// every waiter and nothing is cached, so the next call retries.
//
// ttl <= 0 disables caching: every call goes straight to supplier.
func (c *Cache[T]) ReadThrough(key string, ttl time.Duration, supplier func() (T, error)) (T, error) {
	if ttl <= 0 {
		return supplier()
	}

	if v, ok := c.Get(key); ok {
		return v, nil
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		// A waiter may land here just after the flight it missed
		// finished populating the entry.
		if v, ok := c.Get(key); ok {
			return v, nil
		}

		val, err := supplier()
		if err != nil {
			return nil, err
		}
		c.Set(key, val, ttl)
		return val, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}
