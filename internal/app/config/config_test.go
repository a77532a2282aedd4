package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	data := `
transport:
  kind: network
  network:
    host: daq-host
tuning:
  channels:
    serial:
      capacity: 100
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.Tuning.DefaultCapacity != 2000 {
		t.Fatalf("expected default capacity 2000, got %d", cfg.Tuning.DefaultCapacity)
	}
	if cfg.Tuning.LogCapacity != 500 {
		t.Fatalf("expected log capacity 500, got %d", cfg.Tuning.LogCapacity)
	}
	if cfg.Tuning.ChartInterval != 33*time.Millisecond {
		t.Fatalf("expected chart interval 33ms, got %s", cfg.Tuning.ChartInterval)
	}
	if cfg.Tuning.CoalesceWindow != 100*time.Millisecond {
		t.Fatalf("expected coalesce window 100ms, got %s", cfg.Tuning.CoalesceWindow)
	}
	if cfg.Tuning.OpenTimeout != 5*time.Second {
		t.Fatalf("expected open timeout 5s, got %s", cfg.Tuning.OpenTimeout)
	}
	if cfg.Metrics.Addr != ":9100" {
		t.Fatalf("expected default metrics addr :9100, got %s", cfg.Metrics.Addr)
	}
	if cfg.Transport.Network.Port != 9813 {
		t.Fatalf("expected default network port 9813, got %d", cfg.Transport.Network.Port)
	}
	if cfg.Tuning.Channels["serial"].Capacity != 100 {
		t.Fatalf("expected serial capacity override 100, got %d", cfg.Tuning.Channels["serial"].Capacity)
	}
}

func TestLoadSerialDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	data := `
transport:
  kind: serial
  serial:
    port: /dev/ttyUSB0
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Transport.Serial.Baud != 115200 {
		t.Fatalf("expected default baud 115200, got %d", cfg.Transport.Serial.Baud)
	}
}

func TestLoadRejectsInvalidTransport(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	data := `
transport:
  kind: serial
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for serial transport without a port")
	}
}

func TestLoadRejectsUnknownKind(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	if err := os.WriteFile(path, []byte("transport:\n  kind: carrier-pigeon\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for unknown transport kind")
	}
}
