// internal/playback/state.go
package playback

// State represents the engine's playback state.
type State int

const (
	StateStopped State = iota
	StateLoading
	StatePlaying
	StatePaused
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateStopped:
		return "Stopped"
	case StateLoading:
		return "Loading"
	case StatePlaying:
		return "Playing"
	case StatePaused:
		return "Paused"
	default:
		return "Unknown"
	}
}

// IsActive returns true if playback is active (playing or paused).
func (s State) IsActive() bool {
	return s == StatePlaying || s == StatePaused
}

// Mode selects between a live stream and on-demand content.
type Mode int

const (
	ModeLive Mode = iota
	ModeOnDemand
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeLive:
		return "Live"
	case ModeOnDemand:
		return "OnDemand"
	default:
		return "Unknown"
	}
}
