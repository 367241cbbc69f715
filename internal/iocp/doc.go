// internal/iocp/doc.go

// Package iocp owns the IOCP wire contract.
//
// Ownership boundary:
// - typed actions and positions
// - text encode/decode (total decode, canonical encode)
// - CRLF line framing over raw byte streams
// - message/origin tagging consumed by the distributor
package iocp
