// internal/modbusdev/device.go
package modbusdev

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tamzrod/iocp-gateway/internal/endpoint"
	"github.com/tamzrod/iocp-gateway/internal/iocp"
	"github.com/tamzrod/iocp-gateway/internal/status"
	"github.com/tamzrod/iocp-gateway/internal/transport"
)

// ErrValueRange: the position value does not fit a 16-bit register.
var ErrValueRange = errors.New("modbusdev: value out of register range")

// Factory opens one client. ONE attempt per call; the device owns retries.
type Factory func() (Client, error)

// Config is the runtime config of one bridged device.
type Config struct {
	Label    string
	Interval time.Duration
	Mappings []Mapping
}

// Device presents a Modbus slave to the gateway as a field device.
//
// It registers every mapped name at start and again whenever the upstream
// (re)connects, reports register changes as updates, and writes incoming
// updates for writable names into registers.
type Device struct {
	cfg     Config
	poller  *Poller
	factory Factory
	queue   endpoint.Enqueuer
	tracker *status.Tracker
	log     zerolog.Logger

	byName map[iocp.PositionName]Mapping

	mu     sync.Mutex // guards client, last, writes
	client Client
	last   map[iocp.PositionName]iocp.PositionValue

	// writes counts register writes; a poll that overlapped one is discarded.
	writes uint64
}

// New creates a device. tracker may be nil.
func New(cfg Config, factory Factory, queue endpoint.Enqueuer, logger zerolog.Logger, tracker *status.Tracker) (*Device, error) {
	if cfg.Label == "" {
		return nil, errors.New("modbusdev: label required")
	}
	if cfg.Interval <= 0 {
		return nil, errors.New("modbusdev: interval must be > 0")
	}
	if factory == nil {
		return nil, errors.New("modbusdev: client factory required")
	}

	p, err := NewPoller(cfg.Mappings)
	if err != nil {
		return nil, err
	}

	byName := make(map[iocp.PositionName]Mapping, len(cfg.Mappings))
	for _, m := range cfg.Mappings {
		byName[m.Name] = m
	}

	return &Device{
		cfg:     cfg,
		poller:  p,
		factory: factory,
		queue:   queue,
		tracker: tracker,
		log:     logger.With().Str("endpoint", cfg.Label).Logger(),
		byName:  byName,
		last:    make(map[iocp.PositionName]iocp.PositionValue),
	}, nil
}

// Label is the endpoint identity.
func (d *Device) Label() string { return d.cfg.Label }

// Names returns the mapped position names in config order.
func (d *Device) Names() []iocp.PositionName {
	out := make([]iocp.PositionName, len(d.cfg.Mappings))
	for i, m := range d.cfg.Mappings {
		out[i] = m.Name
	}
	return out
}

// ---- gateway -> device ----

// HandleIncomingAction writes the writable mapped positions of an update.
// A KeepAlive means the upstream just connected: the device announces its
// names again and the next poll reports every value.
func (d *Device) HandleIncomingAction(a iocp.Action) error {
	if a.Kind == iocp.KindKeepAlive {
		d.resync()
		return nil
	}
	if a.Kind != iocp.KindUpdate {
		return nil
	}

	filtered, ok := a.FilterPositions(d.writable)
	if !ok {
		return nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.client == nil {
		return transport.ErrNotAvailable
	}

	var errs []error
	for _, p := range filtered.Positions {
		if p.Value < 0 || p.Value > 0xFFFF {
			errs = append(errs, fmt.Errorf("position %d=%d: %w", p.Name, p.Value, ErrValueRange))
			continue
		}

		reg := d.byName[p.Name].Register
		d.writes++
		if err := d.client.WriteSingleRegister(reg, uint16(p.Value)); err != nil {
			d.dropLocked()
			d.failed(err)
			errs = append(errs, fmt.Errorf("write register %d: %w", reg, err))
			break
		}

		// the next poll must not echo our own write back
		d.last[p.Name] = p.Value
	}

	return errors.Join(errs...)
}

func (d *Device) writable(n iocp.PositionName) bool {
	m, ok := d.byName[n]
	return ok && !m.ReadOnly
}

// ---- device -> gateway ----

// Run announces the mapped names and polls until ctx is done.
// One goroutine per device. No overlap.
func (d *Device) Run(ctx context.Context) {
	d.announce()

	ticker := time.NewTicker(d.cfg.Interval)
	defer ticker.Stop()
	defer d.close()

	d.Tick()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.Tick()
		}
	}
}

// Tick performs one connect-if-needed and poll cycle.
func (d *Device) Tick() {
	c, err := d.connect()
	if err != nil {
		d.failed(err)
		d.log.Debug().Err(err).Msg("connect failed")
		return
	}

	d.mu.Lock()
	gen := d.writes
	d.mu.Unlock()

	res := d.poller.PollOnce(c)
	if res.Err != nil {
		d.mu.Lock()
		if d.client == c {
			d.dropLocked()
		}
		d.mu.Unlock()

		d.failed(res.Err)
		d.log.Warn().Err(res.Err).Msg("poll failed")
		return
	}

	if d.tracker != nil {
		d.tracker.OK()
	}

	changed := d.diff(gen, res.Values)
	if len(changed) == 0 {
		return
	}
	d.queue.Enqueue(iocp.Message{
		Action: iocp.Update(changed...),
		Origin: iocp.SerialOrigin(d.cfg.Label),
	})
}

func (d *Device) connect() (Client, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.client != nil {
		return d.client, nil
	}

	c, err := d.factory()
	if err != nil {
		return nil, err
	}
	d.client = c
	d.log.Info().Msg("connected")
	return c, nil
}

// diff returns the values that differ from the last known ones, in mapping order.
// Values read before a write that completed meanwhile are stale and reported as no change.
func (d *Device) diff(gen uint64, values []iocp.Position) []iocp.Position {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.writes != gen {
		return nil
	}

	var out []iocp.Position
	for _, p := range values {
		prev, seen := d.last[p.Name]
		if seen && prev == p.Value {
			continue
		}
		d.last[p.Name] = p.Value
		out = append(out, p)
	}
	return out
}

func (d *Device) announce() {
	d.queue.Enqueue(iocp.Message{
		Action: iocp.Registration(d.Names()...),
		Origin: iocp.SerialOrigin(d.cfg.Label),
	})
}

// resync re-announces the names, then forgets the reported values so the
// next poll follows the registration with a full update.
func (d *Device) resync() {
	d.announce()

	d.mu.Lock()
	clear(d.last)
	d.mu.Unlock()
}

func (d *Device) failed(err error) {
	if d.tracker != nil {
		d.tracker.Fail(err)
	}
}

func (d *Device) dropLocked() {
	if d.client == nil {
		return
	}
	_ = d.client.Close()
	d.client = nil
}

func (d *Device) close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dropLocked()
}
