// internal/iocp/types.go
package iocp

import (
	"sort"
	"strconv"
	"strings"
)

// PositionName identifies one measurement/control point.
type PositionName int

// PositionValue is the reading or setting of a position.
type PositionValue int

// Position is one (name, value) pair.
type Position struct {
	Name  PositionName
	Value PositionValue
}

func (p Position) String() string {
	return strconv.Itoa(int(p.Name)) + ValueSeparator + strconv.Itoa(int(p.Value))
}

// Kind is the closed set of action variants.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindRegistration
	KindUpdate
	KindKeepAlive
	KindExit
	KindInvalid
)

func (k Kind) String() string {
	switch k {
	case KindRegistration:
		return "registration"
	case KindUpdate:
		return "update"
	case KindKeepAlive:
		return "keepalive"
	case KindExit:
		return "exit"
	case KindInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// Action is a decoded IOCP command.
// Exactly one payload is used depending on Kind:
// Names for KindRegistration, Positions for KindUpdate.
// Treat values as immutable; constructors copy their input.
type Action struct {
	Kind      Kind
	Names     []PositionName // registration, sorted, unique
	Positions []Position     // update, wire order
}

// Registration builds a registration action. Names are deduplicated and sorted.
// Without names the action has no wire form.
func Registration(names ...PositionName) Action {
	return Action{Kind: KindRegistration, Names: normalizeNames(names)}
}

// Update builds an update action preserving position order.
// Without positions the action has no wire form.
func Update(positions ...Position) Action {
	out := make([]Position, len(positions))
	copy(out, positions)
	return Action{Kind: KindUpdate, Positions: out}
}

func KeepAlive() Action { return Action{Kind: KindKeepAlive} }

func Exit() Action { return Action{Kind: KindExit} }

func Invalid() Action { return Action{Kind: KindInvalid} }

func Unknown() Action { return Action{Kind: KindUnknown} }

// FilterPositions returns an update holding only the positions accepted by keep.
// The second result is false when nothing survives or a is not an update.
func (a Action) FilterPositions(keep func(PositionName) bool) (Action, bool) {
	if a.Kind != KindUpdate {
		return Action{}, false
	}
	var out []Position
	for _, p := range a.Positions {
		if keep(p.Name) {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return Action{}, false
	}
	return Action{Kind: KindUpdate, Positions: out}, true
}

// String returns the wire text for encodable actions and a marker otherwise.
// Intended for logs.
func (a Action) String() string {
	if s, ok := Encode(a); ok {
		return s
	}
	if a.Kind == KindUnknown {
		return "UNKNOWN ACTION"
	}
	return "INVALID ACTION"
}

func normalizeNames(names []PositionName) []PositionName {
	if len(names) == 0 {
		return nil
	}
	seen := make(map[PositionName]struct{}, len(names))
	out := make([]PositionName, 0, len(names))
	for _, n := range names {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func joinFields(fields []string) string {
	var b strings.Builder
	for _, f := range fields {
		b.WriteString(f)
		b.WriteString(ContentSeparator)
	}
	return b.String()
}
