// internal/modbusdev/builder.go
package modbusdev

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tamzrod/iocp-gateway/internal/config"
	"github.com/tamzrod/iocp-gateway/internal/endpoint"
	"github.com/tamzrod/iocp-gateway/internal/iocp"
	"github.com/tamzrod/iocp-gateway/internal/status"
)

// Build constructs a Device from validated, normalized config.
// The client is opened lazily on the first tick; a device that is down at
// startup does not stop the gateway.
func Build(c config.ModbusDeviceConfig, queue endpoint.Enqueuer, logger zerolog.Logger, tracker *status.Tracker) (*Device, error) {
	timeout := time.Duration(c.TimeoutMs) * time.Millisecond

	var factory Factory
	switch c.Transport {
	case "rtu":
		rtu := RTUConfig{
			Device:   c.Address,
			BaudRate: c.Serial.BaudRate,
			DataBits: c.Serial.DataBits,
			StopBits: c.Serial.StopBits,
			Parity:   c.Serial.Parity,
			SlaveID:  c.SlaveID,
			Timeout:  timeout,
		}
		factory = func() (Client, error) { return DialRTU(rtu) }

	case "tcp":
		tcp := TCPConfig{
			Address: c.Address,
			SlaveID: c.SlaveID,
			Timeout: timeout,
		}
		factory = func() (Client, error) { return DialTCP(tcp) }

	default:
		return nil, fmt.Errorf("modbusdev %s: unsupported transport %q", c.Label, c.Transport)
	}

	mappings := make([]Mapping, 0, len(c.Positions))
	for _, p := range c.Positions {
		mappings = append(mappings, Mapping{
			Name:     iocp.PositionName(p.Name),
			Register: p.Register,
			ReadOnly: p.ReadOnly,
		})
	}

	return New(
		Config{
			Label:    c.Label,
			Interval: time.Duration(c.Poll.IntervalMs) * time.Millisecond,
			Mappings: mappings,
		},
		factory,
		queue,
		logger,
		tracker,
	)
}
