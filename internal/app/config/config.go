package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/SirFelix/TDA/internal/domain"
	"github.com/SirFelix/TDA/internal/ports"
)

type Config struct {
	Transport domain.TransportConfig `yaml:"transport"`
	Tuning    ports.Tuning           `yaml:"tuning"`
	Metrics   MetricsConfig          `yaml:"metrics"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, err
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) ApplyDefaults() {
	if c.Tuning.DefaultCapacity == 0 {
		c.Tuning.DefaultCapacity = 2000
	}
	if c.Tuning.LogCapacity == 0 {
		c.Tuning.LogCapacity = 500
	}
	if c.Tuning.ChartInterval == 0 {
		c.Tuning.ChartInterval = 33 * time.Millisecond
	}
	if c.Tuning.CoalesceWindow == 0 {
		c.Tuning.CoalesceWindow = 100 * time.Millisecond
	}
	if c.Tuning.OpenTimeout == 0 {
		c.Tuning.OpenTimeout = 5 * time.Second
	}
	if c.Metrics.Addr == "" {
		c.Metrics.Addr = ":9100"
	}
	if c.Transport.Kind == "" {
		c.Transport.Kind = domain.TransportNetwork
	}
	if c.Transport.Kind == domain.TransportNetwork {
		if c.Transport.Network.Host == "" {
			c.Transport.Network.Host = "localhost"
		}
		if c.Transport.Network.Port == 0 {
			c.Transport.Network.Port = 9813
		}
	}
	if c.Transport.Kind == domain.TransportSerial && c.Transport.Serial.Baud == 0 {
		c.Transport.Serial.Baud = 115200
	}
}

func (c *Config) Validate() error {
	if err := c.Transport.Validate(); err != nil {
		return fmt.Errorf("transport config: %w", err)
	}
	if c.Tuning.DefaultCapacity <= 0 {
		return fmt.Errorf("tuning.default_capacity must be > 0")
	}
	if c.Tuning.LogCapacity <= 0 {
		return fmt.Errorf("tuning.log_capacity must be > 0")
	}
	if c.Tuning.CoalesceWindow <= 0 {
		return fmt.Errorf("tuning.coalesce_window must be > 0")
	}
	if c.Tuning.OpenTimeout <= 0 {
		return fmt.Errorf("tuning.open_timeout must be > 0")
	}
	for name, ch := range c.Tuning.Channels {
		if ch.Capacity < 0 {
			return fmt.Errorf("tuning.channels.%s.capacity must be >= 0", name)
		}
	}
	if c.Metrics.Addr == "" {
		return fmt.Errorf("metrics.addr is required")
	}
	return nil
}
