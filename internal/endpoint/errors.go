// internal/endpoint/errors.go
package endpoint

import "errors"

// ErrNotEncodable is returned when asked to transmit an action with no wire form.
var ErrNotEncodable = errors.New("endpoint: action has no wire encoding")
