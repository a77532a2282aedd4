// Package store holds the engine-owned bounded buffers: one windowed
// sample buffer per channel plus the textual log ring. Buffers outlive
// individual connections; data persists across reconnects until Clear.
package store

import (
	"sort"
	"time"

	"github.com/SirFelix/TDA/internal/domain"
	"github.com/SirFelix/TDA/internal/ports"
)

// Store routes appends and snapshots to per-channel buffers. The channel
// set is fixed at construction, so the map itself is read-only and all
// serialization happens per channel rather than behind one global lock.
type Store struct {
	channels map[string]*Channel
	log      *LogRing
}

// chartFed marks the channels driven into live charts; these default to
// the chart minimum inter-sample interval, the rig table channels do not.
var chartFed = map[string]bool{
	domain.ChannelSerial:           true,
	domain.ChannelRawPressure:      true,
	domain.ChannelFilteredPressure: true,
	domain.ChannelTractorSpeed:     true,
}

// pairedCapacity is the reduced default for the raw/filtered pressure
// pair so their combined footprint stays close to one full channel.
const pairedCapacity = 1700

// New builds a Store with the default channel registry, applying any
// per-channel overrides from the tuning block.
func New(t ports.Tuning) *Store {
	channels := make(map[string]*Channel)
	add := func(name string, capacity int, interval time.Duration) {
		if o, ok := t.Channels[name]; ok {
			if o.Capacity > 0 {
				capacity = o.Capacity
			}
			if o.MinInterval != 0 {
				interval = o.MinInterval
			}
		}
		channels[name] = NewChannel(capacity, interval)
	}

	defCap := t.DefaultCapacity
	if defCap <= 0 {
		defCap = 2000
	}
	for _, name := range []string{
		domain.ChannelSerial,
		domain.ChannelRawPressure,
		domain.ChannelFilteredPressure,
		domain.ChannelTractorSpeed,
	} {
		capacity := defCap
		if name == domain.ChannelRawPressure || name == domain.ChannelFilteredPressure {
			capacity = pairedCapacity
		}
		var interval time.Duration
		if chartFed[name] {
			interval = t.ChartInterval
		}
		add(name, capacity, interval)
	}
	for _, name := range domain.RIGChannels {
		add(name, defCap, 0)
	}

	logCap := t.LogCapacity
	if logCap <= 0 {
		logCap = 500
	}

	return &Store{
		channels: channels,
		log:      NewLogRing(logCap),
	}
}

// Append inserts s into the named channel and reports whether it was
// accepted. Unknown channels are rejected rather than silently created
// so a typo cannot grow unbounded state.
func (s *Store) Append(name string, sample domain.Sample) bool {
	ch, ok := s.channels[name]
	if !ok {
		return false
	}
	return ch.Append(sample)
}

// Snapshot returns a copy of the named channel's samples; nil for an
// unknown channel.
func (s *Store) Snapshot(name string) []domain.Sample {
	ch, ok := s.channels[name]
	if !ok {
		return nil
	}
	return ch.Snapshot()
}

func (s *Store) Len(name string) int {
	ch, ok := s.channels[name]
	if !ok {
		return 0
	}
	return ch.Len()
}

// TotalLen sums the buffered sample count across all channels.
func (s *Store) TotalLen() int {
	var n int
	for _, ch := range s.channels {
		n += ch.Len()
	}
	return n
}

// Channels lists the channel ids in sorted order.
func (s *Store) Channels() []string {
	names := make([]string, 0, len(s.channels))
	for name := range s.channels {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *Store) AppendLog(line string) {
	s.log.Append(line)
}

func (s *Store) LogSnapshot() []string {
	return s.log.Snapshot()
}

func (s *Store) LogLen() int {
	return s.log.Len()
}

// Clear empties every channel and the log ring. Connection state is
// untouched.
func (s *Store) Clear() {
	for _, ch := range s.channels {
		ch.Clear()
	}
	s.log.Clear()
}
