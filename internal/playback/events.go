package playback

import "time"

// StateChange is emitted when playback state changes.
type StateChange struct {
	Previous State
	Current  State
}

// Loaded is emitted once content is open and its duration is known.
//
// Engines may emit it more than once (a reconnect after a dropped stream
// loads the content again), so consumers that must act once need their own
// guard.
type Loaded struct {
	Source   Source
	Duration time.Duration // 0 for live streams
	Size     int64         // bytes fetched before decoding, 0 when streamed
	Title    string        // embedded tags of downloaded content
	Artist   string
}

// ErrorEvent is emitted when an error occurs during playback.
type ErrorEvent struct {
	Operation string // e.g., "load", "seek"
	URL       string // source URL if applicable
	Err       error
}
