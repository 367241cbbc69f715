// internal/endpoint/central.go
package endpoint

import (
	"github.com/rs/zerolog"

	"github.com/tamzrod/iocp-gateway/internal/iocp"
)

// warmupLine is the empty line the upstream server expects right after connect.
var warmupLine = []byte(iocp.LineTerminator)

// Central is the upstream server endpoint.
type Central struct {
	link   Sender
	router Router
	log    zerolog.Logger

	// framer is touched only from the link read goroutine.
	framer iocp.Framer
}

func NewCentral(link Sender, router Router, logger zerolog.Logger) *Central {
	return &Central{
		link:   link,
		router: router,
		log:    logger.With().Str("endpoint", "central").Logger(),
	}
}

// Send encodes and transmits an action to the server.
func (c *Central) Send(a iocp.Action) error {
	return transmit(c.link, a)
}

// Receive consumes raw bytes read from the server.
func (c *Central) Receive(p []byte) {
	c.framer.Append(p)
	for {
		line, ok := c.framer.Next()
		if !ok {
			return
		}
		c.router.Enqueue(iocp.Message{Action: iocp.Decode(line), Origin: iocp.CentralOrigin()})
	}
}

// Connected runs the connect handshake: warm-up line to the server,
// then a KeepAlive to every device.
func (c *Central) Connected() {
	if err := c.link.Send(warmupLine); err != nil {
		c.log.Warn().Err(err).Msg("warm-up line failed")
	}
	c.router.UpstreamConnected()
}
