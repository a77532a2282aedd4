// Package notify implements the update-coalescing primitive that bounds
// how often buffer mutations reach consumers.
package notify

import (
	"sync"
	"time"
)

// Coalescer batches marks occurring within one window into a single
// downstream notification. At most one timer is in flight; its handle is
// guarded by the same mutex as the subscriber set. Flush bypasses the
// window for rare, latency-sensitive events such as status transitions.
type Coalescer struct {
	mu     sync.Mutex
	window time.Duration
	timer  *time.Timer
	subs   map[int]func()
	nextID int
	closed bool
}

func NewCoalescer(window time.Duration) *Coalescer {
	if window <= 0 {
		window = 100 * time.Millisecond
	}
	return &Coalescer{
		window: window,
		subs:   make(map[int]func()),
	}
}

// Subscribe registers fn for notifications and returns its cancel
// function. Callbacks run on the coalescer's timer goroutine (or the
// Flush caller) and must not block.
func (c *Coalescer) Subscribe(fn func()) (cancel func()) {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.subs[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

// Mark records a mutation. If no timer is pending one is started; every
// mark until it fires is covered by that single notification, so each
// mutation is observed within one window's latency.
func (c *Coalescer) Mark() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.timer != nil {
		return
	}
	c.timer = time.AfterFunc(c.window, c.fire)
}

func (c *Coalescer) fire() {
	c.mu.Lock()
	c.timer = nil
	fns := c.snapshotSubs()
	c.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// Flush notifies immediately, cancelling any pending timer so covered
// marks are not delivered twice.
func (c *Coalescer) Flush() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	fns := c.snapshotSubs()
	c.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// Close stops the pending timer and drops all subscribers. Marks after
// Close are no-ops.
func (c *Coalescer) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.subs = map[int]func(){}
}

func (c *Coalescer) snapshotSubs() []func() {
	fns := make([]func(), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	return fns
}
