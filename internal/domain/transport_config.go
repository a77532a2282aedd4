package domain

import "fmt"

// TransportKind selects the physical channel variant.
type TransportKind string

const (
	TransportSerial  TransportKind = "serial"
	TransportNetwork TransportKind = "network"
)

// SerialSettings configures a byte-oriented serial link.
type SerialSettings struct {
	Port string `yaml:"port"`
	Baud int    `yaml:"baud"`
}

// NetworkSettings configures a message-oriented websocket link.
type NetworkSettings struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// TransportConfig is the variant over the two supported channels. It is
// treated as immutable once a connection attempt starts.
type TransportConfig struct {
	Kind    TransportKind   `yaml:"kind"`
	Serial  SerialSettings  `yaml:"serial"`
	Network NetworkSettings `yaml:"network"`
}

// SerialConfig builds a serial-link TransportConfig.
func SerialConfig(port string, baud int) TransportConfig {
	return TransportConfig{
		Kind:   TransportSerial,
		Serial: SerialSettings{Port: port, Baud: baud},
	}
}

// NetworkConfig builds a websocket-link TransportConfig.
func NetworkConfig(host string, port int) TransportConfig {
	return TransportConfig{
		Kind:    TransportNetwork,
		Network: NetworkSettings{Host: host, Port: port},
	}
}

func (c TransportConfig) Validate() error {
	switch c.Kind {
	case TransportSerial:
		if c.Serial.Port == "" {
			return fmt.Errorf("serial.port is required")
		}
		if c.Serial.Baud <= 0 {
			return fmt.Errorf("serial.baud must be > 0")
		}
	case TransportNetwork:
		if c.Network.Host == "" {
			return fmt.Errorf("network.host is required")
		}
		if c.Network.Port <= 0 || c.Network.Port > 65535 {
			return fmt.Errorf("network.port must be in 1..65535")
		}
	default:
		return fmt.Errorf("unknown transport kind %q", c.Kind)
	}
	return nil
}

func (c TransportConfig) String() string {
	switch c.Kind {
	case TransportSerial:
		return fmt.Sprintf("serial %s@%d", c.Serial.Port, c.Serial.Baud)
	case TransportNetwork:
		return fmt.Sprintf("ws://%s:%d", c.Network.Host, c.Network.Port)
	default:
		return string(c.Kind)
	}
}
