// internal/endpoint/fakes_test.go
package endpoint

import (
	"strings"
	"sync"

	"github.com/tamzrod/iocp-gateway/internal/iocp"
)

// fakeLink records every transmitted line.
type fakeLink struct {
	err error

	mu    sync.Mutex
	lines []string
}

func (f *fakeLink) Send(p []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.lines = append(f.lines, string(p))
	return nil
}

func (f *fakeLink) sent() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.lines...)
}

// sentTrimmed drops the CRLF terminators.
func (f *fakeLink) sentTrimmed() []string {
	var out []string
	for _, l := range f.sent() {
		out = append(out, strings.TrimSuffix(l, iocp.LineTerminator))
	}
	return out
}

type fakeQueue struct {
	mu        sync.Mutex
	msgs      []iocp.Message
	connected int
}

func (f *fakeQueue) Enqueue(m iocp.Message) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, m)
}

func (f *fakeQueue) UpstreamConnected() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connected++
}

func (f *fakeQueue) messages() []iocp.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]iocp.Message(nil), f.msgs...)
}
