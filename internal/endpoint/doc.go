// internal/endpoint/doc.go

// Package endpoint holds the two endpoint kinds the distributor routes between.
//
// Serial is one field device: it tracks the position names the device registered
// and filters pushed updates to them. Central is the upstream server connection.
// Both frame and decode their own incoming byte stream and hand messages to the
// distributor; neither owns a connection, they transmit through a Sender.
package endpoint
