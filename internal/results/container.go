// Package results holds the most recent result of each request kind, tagged
// with the generation of the request that produced it.
package results

import (
	"sync"
	"time"
)

// Generation identifies a request. Generations increase in issue order.
type Generation uint64

// Snapshot is a held result.
type Snapshot[T any] struct {
	Generation Generation
	Data       T
	UpdatedAt  time.Time
}

// Container keeps the newest applied result of one kind. A response is only
// applied if no newer request's response has been applied before it.
type Container[T any] struct {
	mu       sync.RWMutex
	issued   Generation
	current  Snapshot[T]
	held     bool
	inFlight int
	now      func() time.Time
}

// NewContainer creates an empty container.
func NewContainer[T any]() *Container[T] {
	return &Container[T]{now: time.Now}
}

// Begin issues the generation for a new request.
func (c *Container[T]) Begin() Generation {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.issued++
	return c.issued
}

// Commit applies data produced by the request gen. It returns false and
// leaves the container unchanged when the response is stale.
func (c *Container[T]) Commit(gen Generation, data T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.held && gen <= c.current.Generation {
		return false
	}
	c.current = Snapshot[T]{Generation: gen, Data: data, UpdatedAt: c.now()}
	c.held = true
	return true
}

// Latest returns the held result, if any.
func (c *Container[T]) Latest() (Snapshot[T], bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current, c.held
}

// Issued returns the last generation handed out.
func (c *Container[T]) Issued() Generation {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.issued
}

// Track marks a request as in flight until the returned release func runs.
// Release is idempotent so it can be deferred unconditionally.
func (c *Container[T]) Track() (release func()) {
	c.mu.Lock()
	c.inFlight++
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			c.inFlight--
			c.mu.Unlock()
		})
	}
}

// Loading reports whether any request is in flight.
func (c *Container[T]) Loading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.inFlight > 0
}

// InFlight returns the number of requests in flight.
func (c *Container[T]) InFlight() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.inFlight
}
