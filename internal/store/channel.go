package store

import (
	"sync"
	"time"

	"github.com/SirFelix/TDA/internal/domain"
)

// Channel is one bounded, ordered time-series buffer. Inserts are
// throttled by a minimum inter-sample spacing and capped by front
// eviction, so memory and downstream update rate stay bounded no matter
// how fast the producer runs.
type Channel struct {
	mu          sync.Mutex
	samples     []domain.Sample
	capacity    int
	minInterval time.Duration
	last        time.Time
	hasLast     bool
}

func NewChannel(capacity int, minInterval time.Duration) *Channel {
	if capacity <= 0 {
		capacity = 1
	}
	return &Channel{
		samples:     make([]domain.Sample, 0, capacity),
		capacity:    capacity,
		minInterval: minInterval,
	}
}

// Append inserts s unless it arrives closer than the minimum interval
// after the previously accepted sample. It reports whether the sample
// was accepted. Over-capacity trimming removes from the front in one
// batched copy rather than one entry at a time.
func (c *Channel) Append(s domain.Sample) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.minInterval > 0 && c.hasLast && s.Timestamp.Sub(c.last) < c.minInterval {
		return false
	}

	c.samples = append(c.samples, s)
	if excess := len(c.samples) - c.capacity; excess > 0 {
		c.samples = append(c.samples[:0], c.samples[excess:]...)
	}
	c.last = s.Timestamp
	c.hasLast = true
	return true
}

// Snapshot returns an independent copy of the buffered samples in
// insertion order. Internal storage is never exposed to callers.
func (c *Channel) Snapshot() []domain.Sample {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.Sample, len(c.samples))
	copy(out, c.samples)
	return out
}

func (c *Channel) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.samples)
}

// Clear empties the buffer and resets the throttle so the next insert
// is always accepted.
func (c *Channel) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.samples = c.samples[:0]
	c.hasLast = false
}
