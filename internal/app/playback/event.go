package playback

import "github.com/osa030/streambox/internal/domain/resource"

// EventType represents a playback event type.
type EventType int

const (
	EventPlayStarted  EventType = iota // Item started playing
	EventPlayPaused                    // Playback was paused
	EventPlayContinue                  // Playback resumed from pause
	EventPlayStopped                   // Playback stopped
)

// String returns the string representation of the event type.
func (e EventType) String() string {
	switch e {
	case EventPlayStarted:
		return "play_started"
	case EventPlayPaused:
		return "play_paused"
	case EventPlayContinue:
		return "play_continue"
	case EventPlayStopped:
		return "play_stopped"
	default:
		return "unknown"
	}
}

// Event represents a playback event.
type Event struct {
	Type  EventType
	Index int            // Playlist index of the item (-1 when none)
	Item  *resource.Item // Affected item (nil for play_stopped)
	State State          // Output state after the transition
}
