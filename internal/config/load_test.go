// internal/config/load_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
)

const sample = `
gateway:
  upstream:
    host: 192.168.1.20
    port: 8092
  endpoints:
    - label: MCP
      port: /dev/ttyUSB0
      serial:
        baud_rate: 115200
  modbus_devices:
    - label: overhead
      transport: tcp
      address: 10.0.0.5:502
      slave_id: 3
      poll:
        interval_ms: 250
      positions:
        - name: 100
          register: 0
        - name: 101
          register: 1
          read_only: true
  metrics:
    listen: ":9102"
  log:
    level: debug
`

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gateway.yaml")
	if err := os.WriteFile(path, []byte(sample), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := Validate(cfg); err != nil {
		t.Fatalf("validate: %v", err)
	}

	g := cfg.Gateway
	if g.Upstream.Host != "192.168.1.20" || g.Upstream.Port != 8092 {
		t.Fatalf("upstream: %+v", g.Upstream)
	}
	if len(g.Endpoints) != 1 || g.Endpoints[0].Serial.BaudRate != 115200 {
		t.Fatalf("endpoints: %+v", g.Endpoints)
	}
	if len(g.ModbusDevices) != 1 {
		t.Fatalf("modbus devices: %+v", g.ModbusDevices)
	}
	m := g.ModbusDevices[0]
	if m.SlaveID != 3 || m.Poll.IntervalMs != 250 || len(m.Positions) != 2 || !m.Positions[1].ReadOnly {
		t.Fatalf("modbus device: %+v", m)
	}
	if g.Metrics.Listen != ":9102" || g.Log.Level != "debug" {
		t.Fatalf("ambient: %+v %+v", g.Metrics, g.Log)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected error")
	}
}

func TestParse_UnknownKey(t *testing.T) {
	_, err := Parse([]byte("gateway:\n  upstrem:\n    host: x\n"))
	if err == nil {
		t.Fatalf("expected unknown key to be rejected")
	}
}
