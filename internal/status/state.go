// internal/status/state.go
package status

// State is the coordinator lifecycle state.
// Numeric values are stable; they are exported as a gauge.
type State uint16

const (
	// StateUninitialized is the boot state, before the first connect.
	StateUninitialized State = iota

	// StateConnected means the link is open and no cycle has run yet.
	StateConnected

	// StatePolling means a cycle is in flight.
	StatePolling

	// StateIdle means the last cycle finished and the next one is pending.
	StateIdle

	// StateFailed is entered on initialization failure or after too many
	// consecutive fatal cycles. Reconnects continue on the schedule.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateConnected:
		return "connected"
	case StatePolling:
		return "polling"
	case StateIdle:
		return "idle"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}
