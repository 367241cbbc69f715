// internal/transport/errors.go
package transport

// linkError is a transport-level delivery failure carrying a status code.
type linkError struct {
	code uint16
	msg  string
}

func (e *linkError) Error() string { return e.msg }

// Code implements the status.ErrorCode contract.
func (e *linkError) Code() uint16 { return e.code }

var (
	// ErrNotAvailable: the link has no open connection.
	ErrNotAvailable error = &linkError{code: 2, msg: "transport: channel not available"}

	// ErrNotWritable: the link is busy with another write.
	ErrNotWritable error = &linkError{code: 3, msg: "transport: channel not writable"}
)
