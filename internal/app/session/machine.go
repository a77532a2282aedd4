// Package session owns the transport lifecycle: the connection state
// machine, the read pump feeding the decoder, and the command sink.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/SirFelix/TDA/internal/domain"
	"github.com/SirFelix/TDA/internal/ports"
)

// Factory builds a transport for one connection attempt. Injected so
// tests can run the machine against scripted transports.
type Factory func(cfg domain.TransportConfig) ports.Transport

// RecordRouter is the decoder side of the machine; satisfied by
// *decode.Router.
type RecordRouter interface {
	RouteChunk(chunk []byte)
	RouteMessage(raw []byte)
	ResetFraming()
}

// readBufferLen bounds the hand-off between the transport read loop and
// the decoder so a slow decode cannot make the transport read unbounded
// memory.
const readBufferLen = 64

// Machine is the connection state machine. It exclusively owns the
// transport handle for the lifetime of one attempt; the generation
// counter makes exits from a superseded read loop no-ops, so at most
// one live read loop exists per machine.
type Machine struct {
	factory     Factory
	router      RecordRouter
	obs         ports.Observability
	onStatus    func(domain.Status)
	openTimeout time.Duration

	mu        sync.Mutex
	status    domain.Status
	transport ports.Transport
	cancel    context.CancelFunc
	mode      domain.TransportKind
	lastCfg   *domain.TransportConfig
	gen       uint64
	wg        sync.WaitGroup
}

// New builds a machine in the Disconnected state. onStatus is invoked
// after every externally observable transition (never under the lock).
func New(factory Factory, router RecordRouter, obs ports.Observability, openTimeout time.Duration, onStatus func(domain.Status)) *Machine {
	if onStatus == nil {
		onStatus = func(domain.Status) {}
	}
	if openTimeout <= 0 {
		openTimeout = 5 * time.Second
	}
	return &Machine{
		factory:     factory,
		router:      router,
		obs:         obs,
		onStatus:    onStatus,
		openTimeout: openTimeout,
		status:      domain.StatusDisconnected,
	}
}

// Status returns the current connection status.
func (m *Machine) Status() domain.Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// Connect attempts to open the configured transport and start its read
// loop. It is a no-op while Connecting or Connected. On open failure
// the machine ends Disconnected and the typed error is returned.
func (m *Machine) Connect(cfg domain.TransportConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	if m.status == domain.StatusConnecting || m.status == domain.StatusConnected {
		m.mu.Unlock()
		return nil
	}
	m.gen++
	gen := m.gen
	m.status = domain.StatusConnecting
	c := cfg
	m.lastCfg = &c
	m.mu.Unlock()

	attempt := uuid.NewString()
	m.obs.LogInfo("connecting",
		ports.Field{Key: "attempt", Value: attempt},
		ports.Field{Key: "transport", Value: cfg.String()})
	m.onStatus(domain.StatusConnecting)

	t := m.factory(cfg)
	openCtx, cancelOpen := context.WithTimeout(context.Background(), m.openTimeout)
	start := time.Now()
	err := t.Open(openCtx)
	cancelOpen()
	m.obs.ObserveLatency(ports.MetricOpenLatency, time.Since(start).Seconds())

	if err != nil {
		_ = t.Close()
		m.mu.Lock()
		if m.gen == gen {
			m.status = domain.StatusDisconnected
		}
		m.mu.Unlock()
		m.obs.LogError("open_failed", err,
			ports.Field{Key: "attempt", Value: attempt},
			ports.Field{Key: "kind", Value: ports.KindOf(err).String()})
		m.onStatus(domain.StatusDisconnected)
		return err
	}

	m.mu.Lock()
	if m.gen != gen {
		// Disconnected while the open was in flight.
		m.mu.Unlock()
		_ = t.Close()
		return nil
	}
	loopCtx, cancelLoop := context.WithCancel(context.Background())
	m.transport = t
	m.cancel = cancelLoop
	m.mode = cfg.Kind
	m.status = domain.StatusConnected
	m.mu.Unlock()

	m.obs.LogInfo("connected", ports.Field{Key: "attempt", Value: attempt})
	m.onStatus(domain.StatusConnected)

	out := make(chan []byte, readBufferLen)
	m.wg.Add(2)
	go func() {
		defer m.wg.Done()
		err := t.ReadLoop(loopCtx, out)
		close(out)
		m.onStreamEnd(gen, err)
	}()
	go func() {
		defer m.wg.Done()
		m.consume(cfg.Kind, out)
	}()

	return nil
}

func (m *Machine) consume(kind domain.TransportKind, out <-chan []byte) {
	for chunk := range out {
		switch kind {
		case domain.TransportSerial:
			m.router.RouteChunk(chunk)
		default:
			m.router.RouteMessage(chunk)
		}
	}
	// A reconnect must not stitch a new transmission onto the partial
	// tail of a dead one.
	m.router.ResetFraming()
}

// onStreamEnd handles unsolicited read-loop termination. Exits caused
// by Disconnect or a superseding Connect are stale and ignored.
func (m *Machine) onStreamEnd(gen uint64, err error) {
	m.mu.Lock()
	if m.gen != gen {
		m.mu.Unlock()
		return
	}
	m.gen++
	t := m.transport
	m.transport = nil
	cancel := m.cancel
	m.cancel = nil
	m.status = domain.StatusConnectionLost
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if t != nil {
		_ = t.Close()
	}

	if err != nil {
		m.obs.LogError("connection_lost", err)
	} else {
		m.obs.LogError("connection_lost", errors.New("stream completed unexpectedly"))
	}
	m.onStatus(domain.StatusConnectionLost)
}

// Disconnect tears down the active connection, sending a best-effort
// disconnect notice first when Connected. It is idempotent; calling it
// while Disconnected changes nothing.
func (m *Machine) Disconnect() {
	m.mu.Lock()
	if m.status == domain.StatusDisconnected {
		m.mu.Unlock()
		return
	}
	m.gen++
	t := m.transport
	m.transport = nil
	cancel := m.cancel
	m.cancel = nil
	wasConnected := m.status == domain.StatusConnected
	m.status = domain.StatusDisconnected
	m.mu.Unlock()

	if wasConnected && t != nil {
		if b, err := json.Marshal(map[string]string{"command": "disconnect"}); err == nil {
			_ = t.Write(b)
		}
	}
	if cancel != nil {
		cancel()
	}
	if t != nil {
		_ = t.Close()
	}

	m.obs.LogInfo("disconnected")
	m.onStatus(domain.StatusDisconnected)
}

// Reconnect sequences Disconnect, a settle delay, then Connect with the
// most recent configuration.
func (m *Machine) Reconnect(delay time.Duration) error {
	m.mu.Lock()
	cfg := m.lastCfg
	m.mu.Unlock()
	if cfg == nil {
		return errors.New("session: no previous connection to repeat")
	}

	m.Disconnect()
	if delay > 0 {
		time.Sleep(delay)
	}
	return m.Connect(*cfg)
}

// Send serializes v as JSON and writes it to the active transport.
// While not Connected the command is dropped silently; disconnected
// callers are expected, not an error.
func (m *Machine) Send(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}

	m.mu.Lock()
	connected := m.status == domain.StatusConnected
	t := m.transport
	m.mu.Unlock()

	if !connected || t == nil {
		m.obs.IncCounter(ports.MetricCommandsDropped, 1)
		return nil
	}

	if err := t.Write(b); err != nil {
		m.obs.LogError("command_write_failed", err)
		return err
	}
	m.obs.IncCounter(ports.MetricCommandsSent, 1)
	return nil
}

// Wait blocks until all read-pump goroutines have exited. Intended for
// shutdown paths after Disconnect.
func (m *Machine) Wait() {
	m.wg.Wait()
}
