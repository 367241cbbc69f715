// internal/transport/doc.go

// Package transport owns link lifecycle for endpoints.
//
// Ownership boundary:
// - dial/reconnect loop with backoff
// - raw byte delivery to the owning endpoint
// - fail-fast transmit (no queueing)
//
// Concrete dialers live in serialport (goburrow/serial) and tcp.
package transport
