// internal/status/tracker.go
package status

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Publisher receives a snapshot every time it changes.
type Publisher func(endpoint string, s Snapshot)

// Tracker owns the health snapshot of one endpoint link.
// Links report outcomes; the 1 Hz ticker advances seconds_in_error while not OK.
type Tracker struct {
	mu       sync.Mutex
	endpoint string
	snap     Snapshot
	publish  Publisher
}

// NewTracker starts in HealthUnknown and publishes that state immediately.
func NewTracker(endpoint string, publish Publisher) *Tracker {
	t := &Tracker{
		endpoint: endpoint,
		publish:  publish,
	}
	t.emit(t.snap)
	return t
}

// OK records a successful connect or transfer.
func (t *Tracker) OK() {
	t.mu.Lock()
	changed := false

	if t.snap.Health != HealthOK {
		t.snap.Health = HealthOK
		changed = true
	}
	// Reset last error code and seconds-in-error on recovery.
	if t.snap.LastErrorCode != 0 {
		t.snap.LastErrorCode = 0
		changed = true
	}
	if t.snap.SecondsInError != 0 {
		t.snap.SecondsInError = 0
		changed = true
	}

	s := t.snap
	t.mu.Unlock()

	if changed {
		t.emit(s)
	}
}

// Fail records a failed connect or transfer.
// seconds_in_error advances on Tick only.
func (t *Tracker) Fail(err error) {
	code := ErrorCode(err)

	t.mu.Lock()
	changed := false

	if t.snap.Health != HealthError {
		t.snap.Health = HealthError
		changed = true
	}
	if t.snap.LastErrorCode != code {
		t.snap.LastErrorCode = code
		changed = true
	}

	s := t.snap
	t.mu.Unlock()

	if changed {
		t.emit(s)
	}
}

// Disable marks the link as shut down.
func (t *Tracker) Disable() {
	t.mu.Lock()
	t.snap.Health = HealthDisabled
	s := t.snap
	t.mu.Unlock()

	t.emit(s)
}

// Tick advances seconds_in_error by one while the link is in error.
func (t *Tracker) Tick() {
	t.mu.Lock()
	if t.snap.Health != HealthError || t.snap.SecondsInError >= MaxSecondsInError {
		t.mu.Unlock()
		return
	}
	t.snap.SecondsInError++
	s := t.snap
	t.mu.Unlock()

	t.emit(s)
}

// Run ticks once per second until ctx is done.
func (t *Tracker) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.Tick()
		}
	}
}

func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snap
}

func (t *Tracker) emit(s Snapshot) {
	if t.publish != nil {
		t.publish(t.endpoint, s)
	}
}

// ErrorCode extracts a best-effort code from an error without assuming concrete types.
// If the error does not expose a code, returns CodeGeneric.
func ErrorCode(err error) uint16 {
	if err == nil {
		return 0
	}

	type coder interface{ Code() uint16 }

	var c coder
	if errors.As(err, &c) {
		return c.Code()
	}
	return CodeGeneric
}
