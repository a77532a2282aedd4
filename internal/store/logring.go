package store

import "sync"

// LogRing is the bounded append-only buffer of human-readable entries.
// It has its own lifecycle, independent of the numeric channels.
type LogRing struct {
	mu       sync.Mutex
	lines    []string
	capacity int
}

func NewLogRing(capacity int) *LogRing {
	if capacity <= 0 {
		capacity = 1
	}
	return &LogRing{
		lines:    make([]string, 0, capacity),
		capacity: capacity,
	}
}

func (r *LogRing) Append(line string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, line)
	if excess := len(r.lines) - r.capacity; excess > 0 {
		r.lines = append(r.lines[:0], r.lines[excess:]...)
	}
}

func (r *LogRing) Snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.lines))
	copy(out, r.lines)
	return out
}

func (r *LogRing) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.lines)
}

func (r *LogRing) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = r.lines[:0]
}
