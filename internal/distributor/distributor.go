// internal/distributor/distributor.go
package distributor

import (
	"errors"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/tamzrod/iocp-gateway/internal/iocp"
	"github.com/tamzrod/iocp-gateway/internal/metrics"
)

// ErrNoUpstream is reported when a message must go to central but none is installed.
var ErrNoUpstream = errors.New("distributor: no upstream endpoint")

// ErrNotEncodable is reported when forwarding an action that has no wire form.
var ErrNotEncodable = errors.New("distributor: action has no wire encoding")

// Device is a downstream endpoint (one field device).
// Label is its identity: two devices with the same label are the same device.
type Device interface {
	Label() string

	// HandleIncomingAction pushes an action towards the device.
	// The device applies its own filtering; a filtered-out update returns nil.
	HandleIncomingAction(a iocp.Action) error
}

// Upstream is the single central server endpoint.
type Upstream interface {
	Send(a iocp.Action) error
}

// Distributor routes messages between devices and the upstream.
// All state is guarded by mu; transmits happen after mu is released.
type Distributor struct {
	mu       sync.Mutex
	devices  map[string]Device
	upstream Upstream

	log zerolog.Logger
}

// New creates an empty distributor.
func New(logger zerolog.Logger) *Distributor {
	return &Distributor{
		devices: make(map[string]Device),
		log:     logger.With().Str("component", "distributor").Logger(),
	}
}

// RegisterDevice adds (or re-adds) a device keyed by its label.
func (d *Distributor) RegisterDevice(dev Device) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.devices[dev.Label()] = dev
}

// RegisterUpstream installs the central endpoint, replacing any previous one.
func (d *Distributor) RegisterUpstream(u Upstream) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.upstream = u
}

// Unregister removes a device. Later messages from it fail origin validation.
func (d *Distributor) Unregister(label string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.devices, label)
}

// Devices returns the registered device labels, sorted.
func (d *Distributor) Devices() []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]string, 0, len(d.devices))
	for label := range d.devices {
		out = append(out, label)
	}
	sort.Strings(out)
	return out
}

// route is the resolved delivery plan for one message.
type route struct {
	toUpstream bool
	upstream   Upstream
	devices    []Device
}

// Enqueue validates the origin of msg and delivers it according to the routing policy.
// It never fails: invalid origins are dropped and delivery failures are logged per target.
func (d *Distributor) Enqueue(msg iocp.Message) {
	metrics.RecordMessage(msg.Origin.String(), msg.Action.Kind.String())

	d.mu.Lock()
	r, valid := d.routeLocked(msg)
	d.mu.Unlock()

	if !valid {
		metrics.RecordDrop("invalid_origin")
		d.log.Warn().
			Str("origin", msg.Origin.String()).
			Str("action", msg.Action.String()).
			Msg("dropping message from unregistered origin")
		return
	}

	if r.toUpstream {
		d.sendUpstream(r.upstream, msg.Action)
	}
	for _, dev := range r.devices {
		d.sendDevice(dev, msg.Action)
	}
}

// UpstreamConnected pushes a KeepAlive to every device (handshake warm-up).
func (d *Distributor) UpstreamConnected() {
	d.mu.Lock()
	devices := d.snapshotLocked("")
	d.mu.Unlock()

	for _, dev := range devices {
		d.sendDevice(dev, iocp.KeepAlive())
	}
}

func (d *Distributor) routeLocked(msg iocp.Message) (route, bool) {
	switch msg.Origin.Kind {
	case iocp.OriginSerial:
		if _, ok := d.devices[msg.Origin.Label]; !ok {
			return route{}, false
		}
		r := route{toUpstream: true, upstream: d.upstream}
		if msg.Action.Kind == iocp.KindUpdate {
			r.devices = d.snapshotLocked(msg.Origin.Label)
		}
		return r, true

	case iocp.OriginCentral:
		if d.upstream == nil {
			return route{}, false
		}
		switch msg.Action.Kind {
		case iocp.KindUpdate:
			return route{devices: d.snapshotLocked("")}, true
		case iocp.KindKeepAlive:
			return route{toUpstream: true, upstream: d.upstream}, true
		default:
			// Registration, Exit, Invalid, Unknown: nothing to do.
			return route{}, true
		}

	default:
		return route{}, false
	}
}

// snapshotLocked copies the device set, skipping the device labelled except.
func (d *Distributor) snapshotLocked(except string) []Device {
	out := make([]Device, 0, len(d.devices))
	for label, dev := range d.devices {
		if except != "" && label == except {
			continue
		}
		out = append(out, dev)
	}
	return out
}

func (d *Distributor) sendUpstream(u Upstream, a iocp.Action) {
	var err error
	switch {
	case u == nil:
		err = ErrNoUpstream
	case !encodable(a):
		err = ErrNotEncodable
	default:
		err = u.Send(a)
	}

	metrics.RecordDelivery("central", err)
	if err != nil {
		d.log.Warn().Err(err).Str("action", a.String()).Msg("delivery to central failed")
		return
	}
	d.log.Debug().Str("action", a.String()).Msg("to central")
}

func (d *Distributor) sendDevice(dev Device, a iocp.Action) {
	label := dev.Label()

	err := dev.HandleIncomingAction(a)

	metrics.RecordDelivery("serial:"+label, err)
	if err != nil {
		d.log.Warn().Err(err).Str("endpoint", label).Str("action", a.String()).Msg("delivery to serial failed")
		return
	}
	d.log.Debug().Str("endpoint", label).Str("action", a.String()).Msg("to serial")
}

func encodable(a iocp.Action) bool {
	_, ok := iocp.Encode(a)
	return ok
}
