package ports

import "time"

// ChannelTuning bounds one buffer. A zero MinInterval keeps the
// channel's default spacing; a negative value disables the insert
// throttle entirely.
type ChannelTuning struct {
	Capacity    int           `yaml:"capacity"`
	MinInterval time.Duration `yaml:"min_interval"`
}

// Tuning collects the bounded-memory and bounded-latency knobs of the
// ingestion engine.
type Tuning struct {
	DefaultCapacity int           `yaml:"default_capacity"`
	LogCapacity     int           `yaml:"log_capacity"`
	ChartInterval   time.Duration `yaml:"chart_min_interval"`
	CoalesceWindow  time.Duration `yaml:"coalesce_window"`
	OpenTimeout     time.Duration `yaml:"open_timeout"`

	// Channels holds per-channel overrides keyed by channel id.
	Channels map[string]ChannelTuning `yaml:"channels"`
}
