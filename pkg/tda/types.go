package tda

import (
	"github.com/SirFelix/TDA/internal/app/config"
	"github.com/SirFelix/TDA/internal/domain"
	"github.com/SirFelix/TDA/internal/ports"
)

// Config re-exports the root configuration struct so embedders can
// construct or modify it programmatically.
type Config = config.Config

type (
	// MetricsConfig configures the metrics HTTP server.
	MetricsConfig = config.MetricsConfig
	// Tuning collects buffer/notification knobs.
	Tuning = ports.Tuning
	// ChannelTuning bounds one channel buffer.
	ChannelTuning = ports.ChannelTuning

	// Sample is one buffered time-series point.
	Sample = domain.Sample
	// Status is the externally observable connection state.
	Status = domain.Status
	// TransportConfig selects and configures the physical channel.
	TransportConfig = domain.TransportConfig

	// Transport is the physical-channel port, exported so embedders can
	// bring simulators or replay transports.
	Transport = ports.Transport
	// TransportError is the classified transport failure.
	TransportError = ports.TransportError
	// Observability is the metrics/logging port.
	Observability = ports.Observability
	// Field is a structured log field.
	Field = ports.Field
)

// Connection states.
const (
	StatusDisconnected   = domain.StatusDisconnected
	StatusConnecting     = domain.StatusConnecting
	StatusConnected      = domain.StatusConnected
	StatusConnectionLost = domain.StatusConnectionLost
)

// Channel identifiers.
const (
	ChannelSerial           = domain.ChannelSerial
	ChannelRawPressure      = domain.ChannelRawPressure
	ChannelFilteredPressure = domain.ChannelFilteredPressure
	ChannelTractorSpeed     = domain.ChannelTractorSpeed
	ChannelCTPressure       = domain.ChannelCTPressure
	ChannelWHPressure       = domain.ChannelWHPressure
	ChannelCTDepth          = domain.ChannelCTDepth
	ChannelCTWeight         = domain.ChannelCTWeight
	ChannelCTSpeed          = domain.ChannelCTSpeed
	ChannelCTFluidRate      = domain.ChannelCTFluidRate
	ChannelN2FluidRate      = domain.ChannelN2FluidRate
)

// SerialConfig builds a serial-link TransportConfig.
func SerialConfig(port string, baud int) TransportConfig {
	return domain.SerialConfig(port, baud)
}

// NetworkConfig builds a websocket-link TransportConfig.
func NetworkConfig(host string, port int) TransportConfig {
	return domain.NetworkConfig(host, port)
}

// LoadConfig loads YAML from disk using the internal config reader.
func LoadConfig(path string) (*Config, error) {
	return config.Load(path)
}
