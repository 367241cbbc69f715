// internal/status/tracker_test.go
package status

import (
	"errors"
	"fmt"
	"testing"
)

type codedErr uint16

func (c codedErr) Error() string { return fmt.Sprintf("coded %d", uint16(c)) }
func (c codedErr) Code() uint16  { return uint16(c) }

type recorder struct {
	snaps []Snapshot
}

func (r *recorder) publish(_ string, s Snapshot) {
	r.snaps = append(r.snaps, s)
}

func TestTracker_PublishesUnknownOnStart(t *testing.T) {
	rec := &recorder{}
	NewTracker("dev-01", rec.publish)

	if len(rec.snaps) != 1 || rec.snaps[0].Health != HealthUnknown {
		t.Fatalf("expected one unknown snapshot, got %+v", rec.snaps)
	}
}

func TestTracker_SecondsInErrorResetOnRecovery(t *testing.T) {
	rec := &recorder{}
	tr := NewTracker("dev-01", rec.publish)

	tr.Fail(codedErr(42))
	tr.Tick()
	tr.Tick()
	tr.Tick()

	s := tr.Snapshot()
	if s.Health != HealthError || s.LastErrorCode != 42 || s.SecondsInError != 3 {
		t.Fatalf("unexpected error snapshot: %+v", s)
	}

	tr.OK()

	s = tr.Snapshot()
	if s != (Snapshot{Health: HealthOK}) {
		t.Fatalf("seconds_in_error not reset: %+v", s)
	}
}

func TestTracker_OnlyPublishesChanges(t *testing.T) {
	rec := &recorder{}
	tr := NewTracker("dev-01", rec.publish)

	tr.OK()
	tr.OK()
	tr.Fail(errors.New("x"))
	tr.Fail(errors.New("y"))

	// unknown, ok, error
	if len(rec.snaps) != 3 {
		t.Fatalf("expected 3 published snapshots, got %d", len(rec.snaps))
	}
}

func TestTracker_TickIgnoredWhileHealthy(t *testing.T) {
	tr := NewTracker("dev-01", nil)
	tr.OK()
	tr.Tick()

	if tr.Snapshot().SecondsInError != 0 {
		t.Fatalf("tick must not count while OK")
	}
}

func TestTracker_SecondsInErrorSaturates(t *testing.T) {
	tr := NewTracker("dev-01", nil)
	tr.Fail(errors.New("down"))

	tr.mu.Lock()
	tr.snap.SecondsInError = MaxSecondsInError - 1
	tr.mu.Unlock()

	tr.Tick()
	tr.Tick()

	if got := tr.Snapshot().SecondsInError; got != MaxSecondsInError {
		t.Fatalf("seconds_in_error must saturate: got=%d", got)
	}
}

func TestErrorCode(t *testing.T) {
	if ErrorCode(nil) != 0 {
		t.Fatalf("nil error must map to 0")
	}
	if ErrorCode(errors.New("plain")) != CodeGeneric {
		t.Fatalf("plain error must map to generic code")
	}
	wrapped := fmt.Errorf("link: %w", codedErr(7))
	if ErrorCode(wrapped) != 7 {
		t.Fatalf("wrapped coded error must expose its code")
	}
}

func TestTracker_DisableStopsTicking(t *testing.T) {
	rec := &recorder{}
	tr := NewTracker("dev-01", rec.publish)

	tr.Fail(errors.New("gone"))
	tr.Disable()
	tr.Tick()

	s := tr.Snapshot()
	if s.Health != HealthDisabled {
		t.Fatalf("expected disabled, got %+v", s)
	}
	if s.SecondsInError != 0 {
		t.Fatalf("seconds_in_error advanced while disabled: %+v", s)
	}
	if last := rec.snaps[len(rec.snaps)-1]; last.Health != HealthDisabled {
		t.Fatalf("disable not published, last=%+v", last)
	}
}

func TestHealthName(t *testing.T) {
	cases := map[uint16]string{
		HealthUnknown:  "unknown",
		HealthOK:       "ok",
		HealthError:    "error",
		HealthDisabled: "disabled",
		99:             "unknown",
	}
	for h, want := range cases {
		if got := HealthName(h); got != want {
			t.Fatalf("HealthName(%d) = %q, want %q", h, got, want)
		}
	}
}
