// internal/endpoint/endpoint.go
package endpoint

import "github.com/tamzrod/iocp-gateway/internal/iocp"

// Sender transmits one encoded line. transport.Link satisfies it.
type Sender interface {
	Send(p []byte) error
}

// Enqueuer accepts decoded messages for routing.
type Enqueuer interface {
	Enqueue(msg iocp.Message)
}

// Router is what the central endpoint needs from the distributor.
type Router interface {
	Enqueuer
	UpstreamConnected()
}

func transmit(link Sender, a iocp.Action) error {
	line, ok := iocp.EncodeLine(a)
	if !ok {
		return ErrNotEncodable
	}
	return link.Send(line)
}
