// internal/config/validate.go
package config

import (
	"fmt"
)

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config: empty")
	}
	g := cfg.Gateway

	// ------------------------------------------------------------
	// UPSTREAM
	// ------------------------------------------------------------

	if g.Upstream.Host == "" {
		return fmt.Errorf("upstream: host is required")
	}
	if g.Upstream.Port <= 0 || g.Upstream.Port > 65535 {
		return fmt.Errorf("upstream: port %d out of range", g.Upstream.Port)
	}

	// ------------------------------------------------------------
	// ENDPOINT IDENTITY (labels are unique across every device kind)
	// ------------------------------------------------------------

	owner := make(map[string]string)
	claim := func(label, kind string) error {
		if label == "" {
			return fmt.Errorf("%s: label is required", kind)
		}
		if prev, exists := owner[label]; exists {
			return fmt.Errorf("label collision: %q used by %s and %s", label, prev, kind)
		}
		owner[label] = kind
		return nil
	}

	// ------------------------------------------------------------
	// SERIAL ENDPOINTS
	// ------------------------------------------------------------

	paths := make(map[string]string)

	for i, e := range g.Endpoints {
		if err := claim(e.Label, fmt.Sprintf("endpoint[%d]", i)); err != nil {
			return err
		}
		if e.Port == "" {
			return fmt.Errorf("endpoint %q: port (device path) is required", e.Label)
		}
		if prev, exists := paths[e.Port]; exists {
			return fmt.Errorf("device %s opened by endpoints %q and %q", e.Port, prev, e.Label)
		}
		paths[e.Port] = e.Label

		if err := validateLine(e.Serial); err != nil {
			return fmt.Errorf("endpoint %q: %w", e.Label, err)
		}
	}

	// ------------------------------------------------------------
	// MODBUS DEVICES
	// ------------------------------------------------------------

	for i, m := range g.ModbusDevices {
		if err := claim(m.Label, fmt.Sprintf("modbus_device[%d]", i)); err != nil {
			return err
		}

		switch m.Transport {
		case "rtu":
			if err := validateLine(m.Serial); err != nil {
				return fmt.Errorf("modbus device %q: %w", m.Label, err)
			}
			if prev, exists := paths[m.Address]; exists {
				return fmt.Errorf("device %s opened by %q and modbus device %q", m.Address, prev, m.Label)
			}
			paths[m.Address] = m.Label
		case "tcp":
		default:
			return fmt.Errorf("modbus device %q: transport must be rtu or tcp, got %q", m.Label, m.Transport)
		}

		if m.Address == "" {
			return fmt.Errorf("modbus device %q: address is required", m.Label)
		}
		if m.Poll.IntervalMs < 0 {
			return fmt.Errorf("modbus device %q: poll interval must be >= 0", m.Label)
		}
		if len(m.Positions) == 0 {
			return fmt.Errorf("modbus device %q: at least one position is required", m.Label)
		}

		names := make(map[int]struct{})
		registers := make(map[uint16]int)
		for _, p := range m.Positions {
			if _, exists := names[p.Name]; exists {
				return fmt.Errorf("modbus device %q: position %d mapped twice", m.Label, p.Name)
			}
			names[p.Name] = struct{}{}

			if prev, exists := registers[p.Register]; exists {
				return fmt.Errorf(
					"modbus device %q: register %d shared by positions %d and %d",
					m.Label,
					p.Register,
					prev,
					p.Name,
				)
			}
			registers[p.Register] = p.Name
		}
	}

	// ------------------------------------------------------------
	// AMBIENT
	// ------------------------------------------------------------

	if g.Backoff.Multiplier != 0 && g.Backoff.Multiplier < 1 {
		return fmt.Errorf("backoff: multiplier must be >= 1")
	}
	if g.Backoff.MaxMs != 0 && g.Backoff.MaxMs < g.Backoff.InitialMs {
		return fmt.Errorf("backoff: max_ms must be >= initial_ms")
	}

	return nil
}

func validateLine(l LineConfig) error {
	if l.BaudRate < 0 {
		return fmt.Errorf("baud_rate must be >= 0")
	}
	switch l.DataBits {
	case 0, 5, 6, 7, 8:
	default:
		return fmt.Errorf("data_bits must be 5..8, got %d", l.DataBits)
	}
	switch l.StopBits {
	case 0, 1, 2:
	default:
		return fmt.Errorf("stop_bits must be 1 or 2, got %d", l.StopBits)
	}
	switch l.Parity {
	case "", "N", "E", "O":
	default:
		return fmt.Errorf("parity must be N, E or O, got %q", l.Parity)
	}
	if l.ReadTimeoutMs < 0 {
		return fmt.Errorf("read_timeout_ms must be >= 0")
	}
	return nil
}
