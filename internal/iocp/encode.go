// internal/iocp/encode.go
package iocp

import "strconv"

// Encode renders an action as one IOCP line without the line terminator.
// Invalid and Unknown have no wire form and report false, and neither do a
// registration without names or an update without positions: on the wire
// those read back as Invalid.
func Encode(a Action) (string, bool) {
	prefix := Header + CommandSeparator

	switch a.Kind {
	case KindRegistration:
		if len(a.Names) == 0 {
			return "", false
		}
		fields := make([]string, 0, len(a.Names))
		for _, n := range a.Names {
			fields = append(fields, strconv.Itoa(int(n)))
		}
		return prefix + CommandRegistration + ContentSeparator + joinFields(fields), true

	case KindUpdate:
		if len(a.Positions) == 0 {
			return "", false
		}
		fields := make([]string, 0, len(a.Positions))
		for _, p := range a.Positions {
			fields = append(fields, p.String())
		}
		return prefix + CommandUpdate + ContentSeparator + joinFields(fields), true

	case KindKeepAlive:
		return prefix + CommandKeepAlive + ContentSeparator, true

	case KindExit:
		return prefix + CommandExit + ContentSeparator, true

	default:
		return "", false
	}
}

// EncodeLine is Encode plus the CRLF terminator, ready for a transport.
func EncodeLine(a Action) ([]byte, bool) {
	s, ok := Encode(a)
	if !ok {
		return nil, false
	}
	return []byte(s + LineTerminator), true
}
