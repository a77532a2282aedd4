// Package observability backs the observability port with Prometheus
// metrics and structured slog logging.
package observability

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/SirFelix/TDA/internal/ports"
)

type PromObs struct {
	log      *slog.Logger
	counters map[string]prometheus.Counter
	gauges   map[string]prometheus.Gauge
	histos   map[string]prometheus.Observer
}

// NewPromObs registers the engine's metric set on the default registerer.
func NewPromObs() *PromObs {
	return NewPromObsWith(prometheus.DefaultRegisterer, slog.Default())
}

// NewPromObsWith allows tests and embedders to scope registration.
func NewPromObsWith(reg prometheus.Registerer, log *slog.Logger) *PromObs {
	ingested := prometheus.NewCounter(prometheus.CounterOpts{
		Name: ports.MetricSamplesIngested,
		Help: "Samples accepted into a channel buffer.",
	})
	throttled := prometheus.NewCounter(prometheus.CounterOpts{
		Name: ports.MetricSamplesThrottled,
		Help: "Samples dropped by the per-channel minimum-interval throttle.",
	})
	decodeErrs := prometheus.NewCounter(prometheus.CounterOpts{
		Name: ports.MetricDecodeErrors,
		Help: "Malformed lines or envelopes recovered into the log ring.",
	})
	ignored := prometheus.NewCounter(prometheus.CounterOpts{
		Name: ports.MetricRecordsIgnored,
		Help: "Well-formed records with no routing semantics.",
	})
	cmdSent := prometheus.NewCounter(prometheus.CounterOpts{
		Name: ports.MetricCommandsSent,
		Help: "Commands written to the active transport.",
	})
	cmdDropped := prometheus.NewCounter(prometheus.CounterOpts{
		Name: ports.MetricCommandsDropped,
		Help: "Commands discarded because no connection was active.",
	})
	logLines := prometheus.NewCounter(prometheus.CounterOpts{
		Name: ports.MetricLogLines,
		Help: "Non-numeric lines appended to the log ring.",
	})
	buffered := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: ports.MetricBufferedSamples,
		Help: "Samples currently buffered across all channels.",
	})
	logLen := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: ports.MetricLogLength,
		Help: "Entries currently held by the log ring.",
	})
	status := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: ports.MetricConnectionStatus,
		Help: "Connection status (0 disconnected, 1 connecting, 2 connected, 3 lost).",
	})
	openLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    ports.MetricOpenLatency,
		Help:    "Transport open duration.",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
	})

	reg.MustRegister(ingested, throttled, decodeErrs, ignored,
		cmdSent, cmdDropped, logLines, buffered, logLen, status, openLatency)

	return &PromObs{
		log: log,
		counters: map[string]prometheus.Counter{
			ports.MetricSamplesIngested:  ingested,
			ports.MetricSamplesThrottled: throttled,
			ports.MetricDecodeErrors:     decodeErrs,
			ports.MetricRecordsIgnored:   ignored,
			ports.MetricCommandsSent:     cmdSent,
			ports.MetricCommandsDropped:  cmdDropped,
			ports.MetricLogLines:         logLines,
		},
		gauges: map[string]prometheus.Gauge{
			ports.MetricBufferedSamples:  buffered,
			ports.MetricLogLength:        logLen,
			ports.MetricConnectionStatus: status,
		},
		histos: map[string]prometheus.Observer{
			ports.MetricOpenLatency: openLatency,
		},
	}
}

func (p *PromObs) LogInfo(msg string, fields ...ports.Field) {
	p.log.Info(msg, slogArgs(fields)...)
}

func (p *PromObs) LogError(msg string, err error, fields ...ports.Field) {
	args := slogArgs(fields)
	if err != nil {
		args = append(args, slog.Any("err", err))
	}
	p.log.Error(msg, args...)
}

func (p *PromObs) IncCounter(name string, v float64) {
	if c, ok := p.counters[name]; ok {
		c.Add(v)
	}
}

func (p *PromObs) SetGauge(name string, v float64) {
	if g, ok := p.gauges[name]; ok {
		g.Set(v)
	}
}

func (p *PromObs) ObserveLatency(name string, seconds float64) {
	if h, ok := p.histos[name]; ok {
		h.Observe(seconds)
	}
}

func slogArgs(fields []ports.Field) []any {
	args := make([]any, 0, len(fields)*2)
	for _, f := range fields {
		args = append(args, slog.Any(f.Key, f.Value))
	}
	return args
}

var _ ports.Observability = (*PromObs)(nil)
