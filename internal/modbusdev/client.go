// internal/modbusdev/client.go
package modbusdev

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/goburrow/modbus"
)

// handler is the lifecycle half shared by the RTU and TCP handlers.
type handler interface {
	Connect() error
	Close() error
}

// goburrowClient adapts github.com/goburrow/modbus to Client.
// It serializes requests; the handlers are not safe for concurrent use.
type goburrowClient struct {
	mu      sync.Mutex
	handler handler
	client  modbus.Client
}

// RTUConfig is the serial line of an RTU device.
type RTUConfig struct {
	Device   string
	BaudRate int
	DataBits int
	StopBits int
	Parity   string
	SlaveID  uint8
	Timeout  time.Duration
}

// TCPConfig is the address of a Modbus TCP device.
type TCPConfig struct {
	Address string
	SlaveID uint8
	Timeout time.Duration
}

// DialRTU opens a connected RTU client. ONE attempt per call.
func DialRTU(cfg RTUConfig) (Client, error) {
	if cfg.Device == "" {
		return nil, errors.New("modbusdev rtu: device required")
	}

	h := modbus.NewRTUClientHandler(cfg.Device)
	h.BaudRate = cfg.BaudRate
	h.DataBits = cfg.DataBits
	h.StopBits = cfg.StopBits
	h.Parity = cfg.Parity
	h.SlaveId = cfg.SlaveID
	h.Timeout = cfg.Timeout

	if err := h.Connect(); err != nil {
		return nil, fmt.Errorf("modbusdev rtu %s: connect: %w", cfg.Device, err)
	}

	return &goburrowClient{
		handler: h,
		client:  modbus.NewClient(h),
	}, nil
}

// DialTCP opens a connected TCP client. ONE attempt per call.
func DialTCP(cfg TCPConfig) (Client, error) {
	if cfg.Address == "" {
		return nil, errors.New("modbusdev tcp: address required")
	}

	h := modbus.NewTCPClientHandler(cfg.Address)
	h.SlaveId = cfg.SlaveID
	h.Timeout = cfg.Timeout

	if err := h.Connect(); err != nil {
		return nil, fmt.Errorf("modbusdev tcp %s: connect: %w", cfg.Address, err)
	}

	return &goburrowClient{
		handler: h,
		client:  modbus.NewClient(h),
	}, nil
}

func (c *goburrowClient) ReadHoldingRegisters(addr, qty uint16) ([]uint16, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	raw, err := c.client.ReadHoldingRegisters(addr, qty)
	if err != nil {
		return nil, err
	}
	return unpackRegisters(raw), nil
}

func (c *goburrowClient) WriteSingleRegister(addr, value uint16) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, err := c.client.WriteSingleRegister(addr, value)
	return err
}

func (c *goburrowClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.handler.Close()
}

func unpackRegisters(raw []byte) []uint16 {
	out := make([]uint16, len(raw)/2)
	for i := range out {
		out[i] = uint16(raw[2*i])<<8 | uint16(raw[2*i+1])
	}
	return out
}
