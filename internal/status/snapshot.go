// internal/status/snapshot.go
package status

// Snapshot is the current health of one endpoint link.
// It holds no history beyond the current state.
type Snapshot struct {
	Health         uint16
	LastErrorCode  uint16
	SecondsInError uint16
}

func HealthName(h uint16) string {
	switch h {
	case HealthOK:
		return "ok"
	case HealthError:
		return "error"
	case HealthDisabled:
		return "disabled"
	default:
		return "unknown"
	}
}
