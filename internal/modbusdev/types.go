// internal/modbusdev/types.go
package modbusdev

import (
	"github.com/tamzrod/iocp-gateway/internal/iocp"
)

// Mapping binds one position name to one holding register.
type Mapping struct {
	Name     iocp.PositionName
	Register uint16
	ReadOnly bool // polled, never written
}

// ReadBlock describes one contiguous holding-register read.
// Geometry only: no semantics.
type ReadBlock struct {
	Address  uint16
	Quantity uint16
}

// PollResult is a snapshot produced by one poll cycle.
type PollResult struct {
	// Values holds one entry per mapping, in mapping order.
	Values []iocp.Position
	Err    error // non-nil means the poll cycle failed
}
