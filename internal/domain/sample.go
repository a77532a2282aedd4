package domain

import "time"

// Sample is the canonical unit of buffered telemetry in TDA.
type Sample struct {
	Timestamp time.Time `json:"ts"`
	Value     float64   `json:"value"`
}

// Missing is the sentinel stored for fields a producer omitted. The rig
// feed reports sparse rows, so absence is data and must stay visible to
// consumers rather than being skipped.
const Missing float64 = -1
