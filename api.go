package tda

import (
	"time"

	base "github.com/SirFelix/TDA/pkg/tda"
)

// Type aliases so consumers can import github.com/SirFelix/TDA directly.
type (
	Config           = base.Config
	MetricsConfig    = base.MetricsConfig
	Tuning           = base.Tuning
	ChannelTuning    = base.ChannelTuning
	Engine           = base.Engine
	Option           = base.Option
	Sample           = base.Sample
	Status           = base.Status
	TransportConfig  = base.TransportConfig
	Transport        = base.Transport
	TransportError   = base.TransportError
	TransportFactory = base.TransportFactory
	Observability    = base.Observability
	Field            = base.Field
)

// Connection states.
const (
	StatusDisconnected   = base.StatusDisconnected
	StatusConnecting     = base.StatusConnecting
	StatusConnected      = base.StatusConnected
	StatusConnectionLost = base.StatusConnectionLost
)

// Channel identifiers.
const (
	ChannelSerial           = base.ChannelSerial
	ChannelRawPressure      = base.ChannelRawPressure
	ChannelFilteredPressure = base.ChannelFilteredPressure
	ChannelTractorSpeed     = base.ChannelTractorSpeed
	ChannelCTPressure       = base.ChannelCTPressure
	ChannelWHPressure       = base.ChannelWHPressure
	ChannelCTDepth          = base.ChannelCTDepth
	ChannelCTWeight         = base.ChannelCTWeight
	ChannelCTSpeed          = base.ChannelCTSpeed
	ChannelCTFluidRate      = base.ChannelCTFluidRate
	ChannelN2FluidRate      = base.ChannelN2FluidRate
)

// Config helpers.
func LoadConfig(path string) (*Config, error) {
	return base.LoadConfig(path)
}

// Engine construction.
func New(cfg *Config, opts ...Option) (*Engine, error) {
	return base.New(cfg, opts...)
}

func FromConfigFile(path string, opts ...Option) (*Engine, error) {
	return base.FromConfigFile(path, opts...)
}

func WithTransportFactory(f TransportFactory) Option {
	return base.WithTransportFactory(f)
}

func WithObservability(obs Observability) Option {
	return base.WithObservability(obs)
}

func WithClock(now func() time.Time) Option {
	return base.WithClock(now)
}

// Transport config helpers.
func SerialConfig(port string, baud int) TransportConfig {
	return base.SerialConfig(port, baud)
}

func NetworkConfig(host string, port int) TransportConfig {
	return base.NetworkConfig(host, port)
}
