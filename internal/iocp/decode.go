// internal/iocp/decode.go
package iocp

import (
	"strconv"
	"strings"
)

// Decode parses one line into an action. It never fails:
// text that is not IOCP yields Unknown, a known command without
// usable content yields Invalid.
func Decode(raw string) Action {
	clean := strings.TrimSpace(raw)

	rest, ok := strings.CutPrefix(clean, Header+CommandSeparator)
	if !ok {
		return Unknown()
	}

	parts := strings.Split(rest, ContentSeparator)
	command, fields := parts[0], parts[1:]

	switch command {
	case CommandRegistration:
		var names []PositionName
		for _, f := range fields {
			if n, err := strconv.Atoi(f); err == nil {
				names = append(names, PositionName(n))
			}
		}
		if len(names) == 0 {
			return Invalid()
		}
		return Registration(names...)

	case CommandUpdate:
		var positions []Position
		for _, f := range fields {
			if p, ok := parsePosition(f); ok {
				positions = append(positions, p)
			}
		}
		if len(positions) == 0 {
			return Invalid()
		}
		return Action{Kind: KindUpdate, Positions: positions}

	case CommandKeepAlive:
		return KeepAlive()

	case CommandExit:
		return Exit()

	default:
		return Unknown()
	}
}

// parsePosition parses "name=value". Anything else is dropped by the caller.
func parsePosition(field string) (Position, bool) {
	parts := strings.Split(field, ValueSeparator)
	if len(parts) != 2 {
		return Position{}, false
	}
	name, err := strconv.Atoi(parts[0])
	if err != nil {
		return Position{}, false
	}
	value, err := strconv.Atoi(parts[1])
	if err != nil {
		return Position{}, false
	}
	return Position{Name: PositionName(name), Value: PositionValue(value)}, true
}
