package tda

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SirFelix/TDA/internal/ports"
)

type scriptedTransport struct {
	openErr error

	mu       sync.Mutex
	writes   [][]byte
	feed     chan []byte
	closedCh chan struct{}
	once     sync.Once
}

func newScriptedTransport(openErr error) *scriptedTransport {
	return &scriptedTransport{
		openErr:  openErr,
		feed:     make(chan []byte, 64),
		closedCh: make(chan struct{}),
	}
}

func (s *scriptedTransport) Open(ctx context.Context) error { return s.openErr }

func (s *scriptedTransport) ReadLoop(ctx context.Context, out chan<- []byte) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.closedCh:
			return nil
		case b := <-s.feed:
			select {
			case out <- b:
			case <-ctx.Done():
				return nil
			case <-s.closedCh:
				return nil
			}
		}
	}
}

func (s *scriptedTransport) Write(p []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]byte, len(p))
	copy(cp, p)
	s.writes = append(s.writes, cp)
	return nil
}

func (s *scriptedTransport) Close() error {
	s.once.Do(func() { close(s.closedCh) })
	return nil
}

type quietObs struct{}

func (quietObs) LogInfo(string, ...Field)         {}
func (quietObs) LogError(string, error, ...Field) {}
func (quietObs) IncCounter(string, float64)       {}
func (quietObs) SetGauge(string, float64)         {}
func (quietObs) ObserveLatency(string, float64)   {}

func testConfig() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	cfg.Tuning.CoalesceWindow = 20 * time.Millisecond
	return cfg
}

func newTestEngine(t *testing.T, tr Transport) *Engine {
	t.Helper()
	e, err := New(testConfig(),
		WithTransportFactory(func(TransportConfig) Transport { return tr }),
		WithObservability(quietObs{}),
		WithClock(func() time.Time { return time.UnixMilli(7) }),
	)
	require.NoError(t, err)
	return e
}

func awaitStatus(t *testing.T, e *Engine, want Status) {
	t.Helper()
	require.Eventually(t, func() bool { return e.Status() == want },
		5*time.Second, time.Millisecond, "never reached status %v", want)
}

func awaitSamples(t *testing.T, e *Engine, channel string, n int) []Sample {
	t.Helper()
	var snap []Sample
	require.Eventually(t, func() bool {
		snap = e.Snapshot(channel)
		return len(snap) >= n
	}, 5*time.Second, time.Millisecond, "channel %s never reached %d samples", channel, n)
	return snap
}

func TestEngineRequiresConfig(t *testing.T) {
	_, err := New(nil)
	require.Error(t, err)
}

func TestEngineEndToEndNetwork(t *testing.T) {
	tr := newScriptedTransport(nil)
	e := newTestEngine(t, tr)

	var notified atomic.Int32
	cancel := e.Subscribe(func() { notified.Add(1) })
	defer cancel()

	require.NoError(t, e.Connect(NetworkConfig("daq-host", 9813)))
	awaitStatus(t, e, StatusConnected)

	tr.feed <- []byte(`{"source":"DAQ","type":"data","params":{"timestamp":1.0,"raw_pressure":55.5,"tractor_speed":2.0}}`)
	tr.feed <- []byte(`{"source":"RIG","type":"data","params":{"timestamp":1000,"ct_pressure":6402}}`)

	raw := awaitSamples(t, e, ChannelRawPressure, 1)
	assert.Equal(t, 55.5, raw[0].Value)
	assert.Equal(t, time.UnixMilli(1000), raw[0].Timestamp)

	filtered := awaitSamples(t, e, ChannelFilteredPressure, 1)
	assert.Equal(t, -1.0, filtered[0].Value, "filtered defaults to the sentinel")

	speed := awaitSamples(t, e, ChannelTractorSpeed, 1)
	assert.Equal(t, 2.0, speed[0].Value)

	ct := awaitSamples(t, e, ChannelCTPressure, 1)
	assert.Equal(t, 6402.0, ct[0].Value)
	assert.Equal(t, time.UnixMilli(1000), ct[0].Timestamp, "RIG timestamps are not scaled")

	require.Eventually(t, func() bool { return notified.Load() >= 1 },
		5*time.Second, time.Millisecond, "coalesced notification never arrived")
}

func TestEngineSerialPipeline(t *testing.T) {
	tr := newScriptedTransport(nil)
	e := newTestEngine(t, tr)

	require.NoError(t, e.Connect(SerialConfig("/dev/ttyUSB0", 115200)))
	awaitStatus(t, e, StatusConnected)

	tr.feed <- []byte("12.5\n3.")
	tr.feed <- []byte("7\nnot-a-number\n")

	samples := awaitSamples(t, e, ChannelSerial, 1)
	assert.Equal(t, 12.5, samples[0].Value)
	assert.Equal(t, time.UnixMilli(7), samples[0].Timestamp, "serial samples carry arrival time")

	require.Eventually(t, func() bool { return len(e.LogLines()) == 1 },
		5*time.Second, time.Millisecond)
	assert.Equal(t, "not-a-number", e.LogLines()[0])
}

func TestEngineMalformedMessageLogsOnly(t *testing.T) {
	tr := newScriptedTransport(nil)
	e := newTestEngine(t, tr)

	require.NoError(t, e.Connect(NetworkConfig("daq-host", 9813)))
	awaitStatus(t, e, StatusConnected)

	tr.feed <- []byte(`{broken`)

	require.Eventually(t, func() bool { return len(e.LogLines()) == 1 },
		5*time.Second, time.Millisecond)
	for _, ch := range e.Channels() {
		assert.Empty(t, e.Snapshot(ch), "channel %s mutated by malformed input", ch)
	}
}

func TestEngineConnectFailureEndsDisconnected(t *testing.T) {
	tr := newScriptedTransport(&ports.TransportError{Op: "open", Kind: ports.ErrHostUnreachable, Err: errors.New("refused")})
	e := newTestEngine(t, tr)

	err := e.Connect(NetworkConfig("nowhere", 9813))
	require.Error(t, err)
	require.Equal(t, StatusDisconnected, e.Status())
}

func TestEngineDataSurvivesReconnect(t *testing.T) {
	first := newScriptedTransport(nil)
	second := newScriptedTransport(nil)
	transports := []*scriptedTransport{first, second}
	var idx int

	e, err := New(testConfig(),
		WithTransportFactory(func(TransportConfig) Transport {
			tr := transports[idx]
			idx++
			return tr
		}),
		WithObservability(quietObs{}),
	)
	require.NoError(t, err)

	require.NoError(t, e.Connect(NetworkConfig("daq-host", 9813)))
	awaitStatus(t, e, StatusConnected)
	first.feed <- []byte(`{"source":"RIG","type":"data","params":{"timestamp":1,"ct_depth":100}}`)
	awaitSamples(t, e, ChannelCTDepth, 1)

	e.Disconnect()
	awaitStatus(t, e, StatusDisconnected)
	assert.Len(t, e.Snapshot(ChannelCTDepth), 1, "buffers outlive connections")

	require.NoError(t, e.Reconnect(0))
	awaitStatus(t, e, StatusConnected)
	second.feed <- []byte(`{"source":"RIG","type":"data","params":{"timestamp":2,"ct_depth":101}}`)
	awaitSamples(t, e, ChannelCTDepth, 2)
}

func TestEngineClear(t *testing.T) {
	tr := newScriptedTransport(nil)
	e := newTestEngine(t, tr)

	require.NoError(t, e.Connect(NetworkConfig("daq-host", 9813)))
	awaitStatus(t, e, StatusConnected)

	tr.feed <- []byte(`{"source":"RIG","type":"data","params":{"timestamp":1,"ct_depth":100}}`)
	awaitSamples(t, e, ChannelCTDepth, 1)

	e.Clear()

	assert.Empty(t, e.Snapshot(ChannelCTDepth))
	assert.Empty(t, e.LogLines())
	assert.Equal(t, StatusConnected, e.Status(), "clear must not touch connection state")
}

func TestEngineSendOnlyWhenConnected(t *testing.T) {
	tr := newScriptedTransport(nil)
	e := newTestEngine(t, tr)

	require.NoError(t, e.Send(map[string]string{"command": "connect"}))
	tr.mu.Lock()
	require.Empty(t, tr.writes, "command while disconnected must be dropped")
	tr.mu.Unlock()

	require.NoError(t, e.Connect(NetworkConfig("daq-host", 9813)))
	awaitStatus(t, e, StatusConnected)

	require.NoError(t, e.Send(map[string]any{"type": "command", "params": map[string]string{"action": "DAQstart"}}))
	require.Eventually(t, func() bool {
		tr.mu.Lock()
		defer tr.mu.Unlock()
		return len(tr.writes) == 1
	}, 5*time.Second, time.Millisecond)
}

func TestEngineShutdown(t *testing.T) {
	tr := newScriptedTransport(nil)
	e := newTestEngine(t, tr)

	require.NoError(t, e.Connect(NetworkConfig("daq-host", 9813)))
	awaitStatus(t, e, StatusConnected)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, e.Shutdown(ctx))
	require.Equal(t, StatusDisconnected, e.Status())
}
