// internal/modbusdev/poller.go
package modbusdev

import (
	"errors"
	"fmt"

	"github.com/tamzrod/iocp-gateway/internal/iocp"
)

// Client abstracts the Modbus operations the bridge needs.
type Client interface {
	ReadHoldingRegisters(addr, qty uint16) ([]uint16, error) // FC 3
	WriteSingleRegister(addr, value uint16) error            // FC 6
	Close() error
}

// Poller is a dumb reader: one call, one cycle, no retries.
type Poller struct {
	mappings []Mapping
	blocks   []ReadBlock
}

// NewPoller plans the reads for a fixed set of mappings.
func NewPoller(mappings []Mapping) (*Poller, error) {
	if len(mappings) == 0 {
		return nil, errors.New("modbusdev: at least one mapping required")
	}
	return &Poller{
		mappings: mappings,
		blocks:   planBlocks(mappings),
	}, nil
}

// PollOnce performs exactly one poll cycle.
// All-or-nothing: any failure aborts the cycle.
func (p *Poller) PollOnce(c Client) PollResult {
	regs := make(map[uint16]uint16, len(p.mappings))

	for _, b := range p.blocks {
		vals, err := c.ReadHoldingRegisters(b.Address, b.Quantity)
		if err != nil {
			return PollResult{Err: fmt.Errorf("read %d+%d: %w", b.Address, b.Quantity, err)}
		}
		if len(vals) != int(b.Quantity) {
			return PollResult{Err: fmt.Errorf("read %d+%d: short response (%d)", b.Address, b.Quantity, len(vals))}
		}
		for i, v := range vals {
			regs[b.Address+uint16(i)] = v
		}
	}

	// Commit only if all reads succeeded
	out := make([]iocp.Position, 0, len(p.mappings))
	for _, m := range p.mappings {
		out = append(out, iocp.Position{
			Name:  m.Name,
			Value: iocp.PositionValue(regs[m.Register]),
		})
	}
	return PollResult{Values: out}
}
