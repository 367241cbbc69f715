// internal/transport/serialport/serialport.go
package serialport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/goburrow/serial"

	"github.com/tamzrod/iocp-gateway/internal/transport"
)

// Config is the line configuration of one serial device.
// Fields are passed through to the driver untouched.
type Config struct {
	Device      string
	BaudRate    int
	DataBits    int
	StopBits    int
	Parity      string // "N", "E", "O"
	ReadTimeout time.Duration
}

// Dialer opens the device once per call.
func Dialer(cfg Config) transport.Dialer {
	return func(ctx context.Context) (io.ReadWriteCloser, error) {
		if cfg.Device == "" {
			return nil, errors.New("serialport: device path required")
		}

		port, err := serial.Open(&serial.Config{
			Address:  cfg.Device,
			BaudRate: cfg.BaudRate,
			DataBits: cfg.DataBits,
			StopBits: cfg.StopBits,
			Parity:   cfg.Parity,
			Timeout:  cfg.ReadTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("serialport %s: open: %w", cfg.Device, err)
		}
		return timeoutPort{port}, nil
	}
}

// timeoutPort turns read timeouts into empty reads so the link keeps reading.
// The timeout only bounds how long a close can take to be noticed.
type timeoutPort struct {
	io.ReadWriteCloser
}

func (p timeoutPort) Read(b []byte) (int, error) {
	n, err := p.ReadWriteCloser.Read(b)
	if errors.Is(err, serial.ErrTimeout) {
		return n, nil
	}
	return n, err
}
