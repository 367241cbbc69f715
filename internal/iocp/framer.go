// internal/iocp/framer.go
package iocp

import "bytes"

var crlf = []byte(LineTerminator)

// Framer turns an append-only byte stream into CRLF-delimited lines.
// A trailing partial line stays buffered until a later Append completes it.
// No line-length bound is enforced.
//
// Framer is not safe for concurrent use; each link owns one.
type Framer struct {
	buf []byte

	// scanned is how many leading bytes of buf are known to hold no CRLF.
	scanned int
}

// Append adds raw bytes read from a transport.
func (f *Framer) Append(p []byte) {
	f.buf = append(f.buf, p...)
}

// Next returns the first complete line with its delimiter stripped and removes it
// (delimiter included) from the buffer. It reports false when no CRLF is buffered.
// Call it until it reports false after every Append.
func (f *Framer) Next() (string, bool) {
	// A CR may have been the last byte scanned last time.
	start := f.scanned
	if start > 0 {
		start--
	}

	i := bytes.Index(f.buf[start:], crlf)
	if i < 0 {
		f.scanned = len(f.buf)
		return "", false
	}

	end := start + i
	line := string(f.buf[:end])

	f.buf = f.buf[end+len(crlf):]
	if len(f.buf) == 0 {
		f.buf = nil
	}
	f.scanned = 0

	return line, true
}

// Lines drains every complete line currently buffered.
func (f *Framer) Lines() []string {
	var out []string
	for {
		line, ok := f.Next()
		if !ok {
			return out
		}
		out = append(out, line)
	}
}

// Buffered returns a copy of the bytes not yet consumed as a line.
func (f *Framer) Buffered() []byte {
	return append([]byte(nil), f.buf...)
}
