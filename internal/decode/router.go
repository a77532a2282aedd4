package decode

import (
	"fmt"
	"strconv"
	"time"

	"github.com/SirFelix/TDA/internal/domain"
	"github.com/SirFelix/TDA/internal/ports"
)

// Router applies the routing table: serial lines and network envelopes
// in, buffer mutations and log entries out. A decode or validation
// failure costs at most the offending record.
type Router struct {
	sink   Sink
	obs    ports.Observability
	onData func()
	now    func() time.Time
	acc    LineAccumulator
}

// Sink is what the router mutates. It is satisfied by *store.Store.
type Sink interface {
	Append(channel string, s domain.Sample) bool
	AppendLog(line string)
}

// NewRouter wires a router to its sink. onData is invoked after every
// accepted mutation so the caller can mark its coalescer; now supplies
// arrival timestamps for serial samples.
func NewRouter(sink Sink, obs ports.Observability, onData func(), now func() time.Time) *Router {
	if now == nil {
		now = time.Now
	}
	if onData == nil {
		onData = func() {}
	}
	return &Router{sink: sink, obs: obs, onData: onData, now: now}
}

// RouteChunk feeds one raw serial chunk through line framing and routes
// every completed line.
func (r *Router) RouteChunk(chunk []byte) {
	for _, line := range r.acc.Feed(chunk) {
		r.RouteLine(line)
	}
}

// RouteLine handles one framed serial line: numeric lines become scalar
// samples, anything else lands verbatim in the log ring.
func (r *Router) RouteLine(line string) {
	v, err := strconv.ParseFloat(line, 64)
	if err != nil {
		r.sink.AppendLog(line)
		r.obs.IncCounter(ports.MetricLogLines, 1)
		r.onData()
		return
	}

	if r.sink.Append(domain.ChannelSerial, domain.Sample{Timestamp: r.now(), Value: v}) {
		r.obs.IncCounter(ports.MetricSamplesIngested, 1)
		r.onData()
	} else {
		r.obs.IncCounter(ports.MetricSamplesThrottled, 1)
	}
}

// RouteMessage decodes one network message and applies its routing
// semantics. Malformed or invalid messages append one log entry and
// mutate no channel.
func (r *Router) RouteMessage(raw []byte) {
	rec, err := ParseEnvelope(raw)
	if err != nil {
		r.sink.AppendLog(fmt.Sprintf("decode error: %v", err))
		r.obs.IncCounter(ports.MetricDecodeErrors, 1)
		r.onData()
		return
	}

	switch rec := rec.(type) {
	case DAQData:
		r.routeDAQ(rec)
	case RIGData:
		r.routeRIG(rec)
	case Ack:
		r.sink.AppendLog(fmt.Sprintf("acknowledgement from %s", rec.Source))
		r.onData()
	case Ignored:
		r.obs.IncCounter(ports.MetricRecordsIgnored, 1)
	default:
		// New record types must opt in to routing explicitly.
		r.obs.IncCounter(ports.MetricRecordsIgnored, 1)
	}
}

func (r *Router) routeDAQ(rec DAQData) {
	var accepted, throttled int

	if rec.RawPressure != nil {
		// The pressure pair shares one timestamp so both channels stay
		// aligned for dual-trace charts.
		if r.sink.Append(domain.ChannelRawPressure, domain.Sample{Timestamp: rec.Timestamp, Value: *rec.RawPressure}) {
			accepted++
		} else {
			throttled++
		}
		if r.sink.Append(domain.ChannelFilteredPressure, domain.Sample{Timestamp: rec.Timestamp, Value: rec.Filtered}) {
			accepted++
		} else {
			throttled++
		}
	}
	if rec.Speed != nil {
		if r.sink.Append(domain.ChannelTractorSpeed, domain.Sample{Timestamp: rec.Timestamp, Value: *rec.Speed}) {
			accepted++
		} else {
			throttled++
		}
	}

	r.finishRecord(accepted, throttled)
}

func (r *Router) routeRIG(rec RIGData) {
	var accepted, throttled int
	for i, name := range domain.RIGChannels {
		if r.sink.Append(name, domain.Sample{Timestamp: rec.Timestamp, Value: rec.Values[i]}) {
			accepted++
		} else {
			throttled++
		}
	}
	r.finishRecord(accepted, throttled)
}

func (r *Router) finishRecord(accepted, throttled int) {
	if accepted > 0 {
		r.obs.IncCounter(ports.MetricSamplesIngested, float64(accepted))
		r.onData()
	}
	if throttled > 0 {
		r.obs.IncCounter(ports.MetricSamplesThrottled, float64(throttled))
	}
}

// ResetFraming drops any partial serial line, called on teardown so a
// reconnect does not stitch two transmissions together.
func (r *Router) ResetFraming() {
	r.acc.Reset()
}
