// internal/endpoint/serial.go
package endpoint

import (
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/tamzrod/iocp-gateway/internal/iocp"
)

// Serial is one IOCP field device.
// Its registered position set only grows; there is no removal protocol.
type Serial struct {
	label string
	link  Sender
	queue Enqueuer
	log   zerolog.Logger

	mu         sync.RWMutex
	registered map[iocp.PositionName]struct{}

	// framer is touched only from the link read goroutine.
	framer iocp.Framer
}

func NewSerial(label string, link Sender, queue Enqueuer, logger zerolog.Logger) *Serial {
	return &Serial{
		label:      label,
		link:       link,
		queue:      queue,
		log:        logger.With().Str("endpoint", label).Logger(),
		registered: make(map[iocp.PositionName]struct{}),
	}
}

// Label is the endpoint identity.
func (s *Serial) Label() string { return s.label }

// HandleIncomingAction pushes an action from the gateway down to the device.
// Updates are filtered to registered names; an update with no overlap is not sent.
func (s *Serial) HandleIncomingAction(a iocp.Action) error {
	switch a.Kind {
	case iocp.KindUpdate:
		filtered, ok := a.FilterPositions(s.IsRegistered)
		if !ok {
			return nil
		}
		return transmit(s.link, filtered)

	case iocp.KindKeepAlive:
		return transmit(s.link, a)

	default:
		// Registration, Exit, Invalid, Unknown are never pushed to a device.
		return nil
	}
}

// Receive consumes raw bytes read from the device.
func (s *Serial) Receive(p []byte) {
	s.framer.Append(p)
	for {
		line, ok := s.framer.Next()
		if !ok {
			return
		}
		s.processLine(line)
	}
}

// Connected pushes a KeepAlive to a freshly opened device.
func (s *Serial) Connected() {
	if err := transmit(s.link, iocp.KeepAlive()); err != nil {
		s.log.Warn().Err(err).Msg("keepalive on connect failed")
	}
}

func (s *Serial) processLine(line string) {
	a := iocp.Decode(line)
	msg := iocp.Message{Action: a, Origin: iocp.SerialOrigin(s.label)}

	switch a.Kind {
	case iocp.KindRegistration:
		s.register(a.Names)
		s.log.Info().Ints("positions", namesToInts(a.Names)).Msg("registration")
		s.queue.Enqueue(msg)

	case iocp.KindUpdate:
		s.queue.Enqueue(msg)

	default:
		// Exit, KeepAlive, Invalid, Unknown stay local.
		s.log.Debug().Str("kind", a.Kind.String()).Str("line", line).Msg("absorbed")
	}
}

func (s *Serial) register(names []iocp.PositionName) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range names {
		s.registered[n] = struct{}{}
	}
}

func (s *Serial) IsRegistered(n iocp.PositionName) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.registered[n]
	return ok
}

// Registered returns the registered names, sorted.
func (s *Serial) Registered() []iocp.PositionName {
	s.mu.RLock()
	out := make([]iocp.PositionName, 0, len(s.registered))
	for n := range s.registered {
		out = append(out, n)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func namesToInts(names []iocp.PositionName) []int {
	out := make([]int, len(names))
	for i, n := range names {
		out[i] = int(n)
	}
	return out
}
