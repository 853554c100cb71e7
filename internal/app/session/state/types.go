// Package state provides the lifecycle phase of a room.
package state

// Phase represents the room lifecycle phase.
type Phase int

const (
	PhaseActive      Phase = iota // Room accepts commands
	PhaseTerminating              // Creator left or admin terminated, members being disconnected
	PhaseTerminated               // Actor stopped
)

// String returns the string representation of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseActive:
		return "active"
	case PhaseTerminating:
		return "terminating"
	case PhaseTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}
