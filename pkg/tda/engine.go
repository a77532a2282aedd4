// Package tda exposes the real-time ingestion engine: transports in,
// decoded samples into bounded per-channel buffers, coalesced change
// notifications out. The engine is an explicitly constructed instance
// owned by the application's composition root; consumers receive a
// handle rather than reaching a global.
package tda

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/SirFelix/TDA/internal/adapters/observability"
	"github.com/SirFelix/TDA/internal/adapters/serialtp"
	"github.com/SirFelix/TDA/internal/adapters/wstp"
	"github.com/SirFelix/TDA/internal/app/session"
	"github.com/SirFelix/TDA/internal/decode"
	"github.com/SirFelix/TDA/internal/domain"
	"github.com/SirFelix/TDA/internal/notify"
	"github.com/SirFelix/TDA/internal/ports"
	"github.com/SirFelix/TDA/internal/store"
)

// TransportFactory builds a transport for one connection attempt.
type TransportFactory func(cfg TransportConfig) Transport

// Option customizes the dependencies used by Engine.
type Option func(*overrides)

type overrides struct {
	factory TransportFactory
	obs     Observability
	now     func() time.Time
}

// WithTransportFactory injects a custom transport constructor
// (simulators, replay files, test scripts).
func WithTransportFactory(f TransportFactory) Option {
	return func(o *overrides) { o.factory = f }
}

// WithObservability plugs in a custom metrics/logging backend.
func WithObservability(obs Observability) Option {
	return func(o *overrides) { o.obs = obs }
}

// WithClock overrides the arrival-timestamp source used for serial
// samples.
func WithClock(now func() time.Time) Option {
	return func(o *overrides) { o.now = now }
}

// Engine wires transport → decoder → buffers → coalescer and exposes
// the consumer query and command surfaces.
type Engine struct {
	cfg       *Config
	obs       ports.Observability
	store     *store.Store
	coalescer *notify.Coalescer
	machine   *session.Machine

	metricsSrv  *http.Server
	gaugeStopCh chan struct{}
}

// New builds an engine with the default adapters (serial + websocket
// transports, Prometheus observability). Buffers are engine-owned and
// survive reconnects until Clear.
func New(cfg *Config, opts ...Option) (*Engine, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var o overrides
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	obs := o.obs
	if obs == nil {
		obs = observability.NewPromObs()
	}

	st := store.New(cfg.Tuning)
	coalescer := notify.NewCoalescer(cfg.Tuning.CoalesceWindow)

	e := &Engine{
		cfg:       cfg,
		obs:       obs,
		store:     st,
		coalescer: coalescer,
	}

	router := decode.NewRouter(st, obs, coalescer.Mark, o.now)

	factory := o.factory
	if factory == nil {
		factory = defaultFactory
	}
	e.machine = session.New(
		func(c domain.TransportConfig) ports.Transport { return factory(c) },
		router,
		obs,
		cfg.Tuning.OpenTimeout,
		e.onStatus,
	)

	return e, nil
}

// FromConfigFile loads YAML from disk and builds an engine, so a
// composition root can say config → engine in one call.
func FromConfigFile(path string, opts ...Option) (*Engine, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}
	return New(cfg, opts...)
}

func defaultFactory(cfg TransportConfig) Transport {
	switch cfg.Kind {
	case domain.TransportSerial:
		return serialtp.New(cfg.Serial)
	default:
		return wstp.New(cfg.Network)
	}
}

// onStatus runs after every connection transition. Status changes are
// rare and latency-sensitive for UI feedback, so they bypass coalescing.
func (e *Engine) onStatus(s domain.Status) {
	e.obs.SetGauge(ports.MetricConnectionStatus, float64(s))
	e.coalescer.Flush()
}

// Connect opens the given transport and starts ingesting. No-op while
// a connection attempt or session is active.
func (e *Engine) Connect(cfg TransportConfig) error {
	return e.machine.Connect(cfg)
}

// Disconnect tears the active session down. Idempotent.
func (e *Engine) Disconnect() {
	e.machine.Disconnect()
}

// Reconnect sequences Disconnect, delay, Connect with the last config.
func (e *Engine) Reconnect(delay time.Duration) error {
	return e.machine.Reconnect(delay)
}

// Send serializes msg as JSON and writes it to the active transport;
// while not connected the command is dropped silently.
func (e *Engine) Send(msg any) error {
	return e.machine.Send(msg)
}

// Status returns the current connection status.
func (e *Engine) Status() Status {
	return e.machine.Status()
}

// Snapshot returns a copy of the named channel's samples.
func (e *Engine) Snapshot(channel string) []Sample {
	return e.store.Snapshot(channel)
}

// Channels lists the available channel ids.
func (e *Engine) Channels() []string {
	return e.store.Channels()
}

// LogLines returns a copy of the textual log ring.
func (e *Engine) LogLines() []string {
	return e.store.LogSnapshot()
}

// Subscribe registers fn for coalesced change notifications and returns
// its cancel function. fn runs on engine goroutines and must not block.
func (e *Engine) Subscribe(fn func()) (cancel func()) {
	return e.coalescer.Subscribe(fn)
}

// Clear empties every channel and the log ring. Connection state is
// untouched; consumers are notified within one coalescing window.
func (e *Engine) Clear() {
	e.store.Clear()
	e.coalescer.Mark()
}

// Start launches the metrics endpoint and the resource-gauge loop. It
// returns immediately; call Run to block on a context instead.
func (e *Engine) Start() {
	e.startMetrics()
}

// Run starts the engine, connects the configured transport, and blocks
// until the context is cancelled, then shuts down gracefully.
func (e *Engine) Run(ctx context.Context) error {
	e.Start()
	if err := e.Connect(e.cfg.Transport); err != nil {
		e.obs.LogError("initial_connect_failed", err)
	}
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

// Shutdown disconnects, stops the coalescer, and closes the metrics
// server.
func (e *Engine) Shutdown(ctx context.Context) error {
	var errs []error

	e.machine.Disconnect()
	e.machine.Wait()
	e.coalescer.Close()

	if e.gaugeStopCh != nil {
		close(e.gaugeStopCh)
		e.gaugeStopCh = nil
	}
	if e.metricsSrv != nil {
		if err := e.metricsSrv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs = append(errs, err)
		}
		e.metricsSrv = nil
	}

	return errors.Join(errs...)
}

func (e *Engine) startMetrics() {
	if e.metricsSrv != nil {
		return
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	e.metricsSrv = &http.Server{
		Addr:    e.cfg.Metrics.Addr,
		Handler: mux,
	}

	go func(srv *http.Server) {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			e.obs.LogError("metrics_server_exited", err)
		}
	}(e.metricsSrv)

	e.gaugeStopCh = make(chan struct{})
	go e.recordResourceGauges(e.gaugeStopCh, time.Second)
}

func (e *Engine) recordResourceGauges(stop <-chan struct{}, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			e.obs.SetGauge(ports.MetricBufferedSamples, float64(e.store.TotalLen()))
			e.obs.SetGauge(ports.MetricLogLength, float64(e.store.LogLen()))
		}
	}
}
