package decode

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/SirFelix/TDA/internal/domain"
)

// envelope is the raw wire shape of one network message.
type envelope struct {
	Source string                     `json:"source"`
	Type   string                     `json:"type"`
	Params map[string]json.RawMessage `json:"params"`
}

// Record is the tagged union produced by the network decoder. Every
// envelope is decoded exactly once at this boundary; routing switches
// over the concrete type with an explicit ignore arm.
type Record interface{ isRecord() }

// DAQData carries the pressure/speed fields of one DAQ envelope. The
// wire timestamp is seconds; it is converted to a millisecond instant
// here so no consumer re-applies the scaling.
type DAQData struct {
	Timestamp   time.Time
	RawPressure *float64 // nil when the field is absent
	Filtered    float64  // domain.Missing when absent
	Speed       *float64 // nil when the field is absent
}

// RIGData is one composite rig row. The wire timestamp is already in
// milliseconds and is consumed as-is, deliberately unlike the DAQ path.
type RIGData struct {
	Timestamp time.Time
	Values    [7]float64 // wire order, domain.Missing for absent fields
}

// Ack is a producer acknowledgement; it is logged and nothing else.
type Ack struct {
	Source string
}

// Ignored is any (source, type) pair without routing semantics.
type Ignored struct {
	Source string
	Type   string
}

func (DAQData) isRecord() {}
func (RIGData) isRecord() {}
func (Ack) isRecord()     {}
func (Ignored) isRecord() {}

// rigFields lists the rig param keys in the same order as
// domain.RIGChannels.
var rigFields = []string{
	"ct_pressure",
	"wh_pressure",
	"ct_depth",
	"ct_weight",
	"ct_speed",
	"ct_fluid_rate",
	"n2_fluid_rate",
}

// ParseEnvelope decodes one network message into a Record. A syntax
// error or a data/feed envelope missing its timestamp yields an error;
// the caller logs it and moves on.
func ParseEnvelope(raw []byte) (Record, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("malformed envelope: %w", err)
	}

	if env.Type == "acknowledgement" {
		return Ack{Source: env.Source}, nil
	}
	if env.Type != "data" {
		return Ignored{Source: env.Source, Type: env.Type}, nil
	}

	switch env.Source {
	case "DAQ":
		return parseDAQ(env.Params)
	case "RIG":
		return parseRIG(env.Params)
	default:
		return Ignored{Source: env.Source, Type: env.Type}, nil
	}
}

func parseDAQ(params map[string]json.RawMessage) (Record, error) {
	secs, ok := numParam(params, "timestamp")
	if !ok {
		return nil, fmt.Errorf("DAQ data: missing or non-numeric timestamp")
	}

	rec := DAQData{
		// Seconds on the wire; truncate to milliseconds.
		Timestamp: time.UnixMilli(int64(secs * 1000)),
		Filtered:  domain.Missing,
	}
	if v, ok := numParam(params, "raw_pressure"); ok {
		rec.RawPressure = &v
		if f, ok := numParam(params, "filtered_pressure"); ok {
			rec.Filtered = f
		}
	}
	if v, ok := numParam(params, "tractor_speed"); ok {
		rec.Speed = &v
	}
	return rec, nil
}

func parseRIG(params map[string]json.RawMessage) (Record, error) {
	ms, ok := numParam(params, "timestamp")
	if !ok {
		return nil, fmt.Errorf("RIG data: missing or non-numeric timestamp")
	}

	rec := RIGData{Timestamp: time.UnixMilli(int64(ms))}
	for i, key := range rigFields {
		rec.Values[i] = domain.Missing
		if v, ok := numParam(params, key); ok {
			rec.Values[i] = v
		}
	}
	return rec, nil
}

// numParam extracts a numeric param. Params may legitimately hold
// strings; those simply don't count as numbers.
func numParam(params map[string]json.RawMessage, key string) (float64, bool) {
	raw, ok := params[key]
	if !ok {
		return 0, false
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, false
	}
	return v, true
}
