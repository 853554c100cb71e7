package playback

import "github.com/osa030/19room/internal/domain/track"

// EventType represents a clock transition.
type EventType int

const (
	EventTrackLoaded  EventType = iota // A new current track was loaded
	EventStateChanged                  // Play/pause toggled
	EventTrackEnded                    // Elapsed reached duration while playing
	EventUnloaded                      // Current track dropped, clock idle
)

// String returns the string representation of the event type.
func (e EventType) String() string {
	switch e {
	case EventTrackLoaded:
		return "track_loaded"
	case EventStateChanged:
		return "state_changed"
	case EventTrackEnded:
		return "track_ended"
	case EventUnloaded:
		return "unloaded"
	default:
		return "unknown"
	}
}

// Event describes a transition of the clock.
type Event struct {
	Type  EventType
	Track *track.QueuedTrack // Current track (nil after unload)
	State State              // State after the transition
}
