// internal/modbusdev/fakes_test.go
package modbusdev

import (
	"errors"
	"sync"

	"github.com/tamzrod/iocp-gateway/internal/iocp"
	"github.com/tamzrod/iocp-gateway/internal/transport"
)

type fakeClient struct {
	mu     sync.Mutex
	regs   map[uint16]uint16
	reads  []ReadBlock
	writes map[uint16]uint16
	failRd error
	failWr error
	closed bool

	// afterRead, when set, runs once a read has its values and before it returns.
	afterRead func()
}

func newFakeClient(regs map[uint16]uint16) *fakeClient {
	if regs == nil {
		regs = make(map[uint16]uint16)
	}
	return &fakeClient{regs: regs, writes: make(map[uint16]uint16)}
}

func (f *fakeClient) ReadHoldingRegisters(addr, qty uint16) ([]uint16, error) {
	f.mu.Lock()
	if f.failRd != nil {
		f.mu.Unlock()
		return nil, f.failRd
	}
	f.reads = append(f.reads, ReadBlock{Address: addr, Quantity: qty})
	out := make([]uint16, qty)
	for i := range out {
		out[i] = f.regs[addr+uint16(i)]
	}
	hook := f.afterRead
	f.mu.Unlock()

	if hook != nil {
		hook()
	}
	return out, nil
}

func (f *fakeClient) setAfterRead(fn func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.afterRead = fn
}

func (f *fakeClient) WriteSingleRegister(addr, value uint16) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWr != nil {
		return f.failWr
	}
	f.writes[addr] = value
	f.regs[addr] = value
	return nil
}

func (f *fakeClient) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeClient) set(addr, value uint16) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.regs[addr] = value
}

type fakeQueue struct {
	mu   sync.Mutex
	msgs []iocp.Message
}

func (f *fakeQueue) Enqueue(m iocp.Message) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, m)
}

func (f *fakeQueue) messages() []iocp.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]iocp.Message(nil), f.msgs...)
}

var errDown = errors.New("device down")

// fakeUpstream refuses sends until connected.
type fakeUpstream struct {
	mu        sync.Mutex
	connected bool
	got       []string
}

func (f *fakeUpstream) Send(a iocp.Action) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.connected {
		return transport.ErrNotAvailable
	}
	f.got = append(f.got, a.String())
	return nil
}

func (f *fakeUpstream) connect() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connected = true
}

func (f *fakeUpstream) received() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.got...)
}
