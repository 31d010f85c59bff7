// Package playback provides playlist-driven playback control with
// prefetching into a bounded resource cache.
package playback

// State represents the output collaborator's playback state.
type State int

const (
	StateStopped State = iota // Nothing loaded or playback stopped
	StatePlaying              // Item is audible
	StatePaused               // Item is loaded but suspended
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	default:
		return "unknown"
	}
}

// Status represents the controller's own view of playback: the output
// state widened with the transient fetch phase and the idle phase
// before anything was ever selected.
type Status int

const (
	StatusIdle     Status = iota // No item selected yet
	StatusFetching               // Fetch in flight for the selected item
	StatusPlaying                // Selected item is audible
	StatusPaused                 // Selected item is suspended
	StatusStopped                // Selection exists but nothing is loaded
)

// String returns the string representation of the status.
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusFetching:
		return "fetching"
	case StatusPlaying:
		return "playing"
	case StatusPaused:
		return "paused"
	case StatusStopped:
		return "stopped"
	default:
		return "unknown"
	}
}
