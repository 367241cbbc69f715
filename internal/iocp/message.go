// internal/iocp/message.go
package iocp

// OriginKind tells who produced a message.
type OriginKind uint8

const (
	OriginCentral OriginKind = iota
	OriginSerial
)

// Origin tags a message with its producer.
// For serial origins Label is the endpoint identity; it is a handle, never ownership.
type Origin struct {
	Kind  OriginKind
	Label string
}

func CentralOrigin() Origin { return Origin{Kind: OriginCentral} }

func SerialOrigin(label string) Origin { return Origin{Kind: OriginSerial, Label: label} }

func (o Origin) String() string {
	if o.Kind == OriginSerial {
		return "serial:" + o.Label
	}
	return "central"
}

// Message is one decoded line tagged with its origin.
type Message struct {
	Action Action
	Origin Origin
}
