package playback

import "time"

// Engine is the audio engine contract consumed by the bootstrap.
type Engine interface {
	// SetParams stores the sources and playback posture to use on start.
	SetParams(p Params)
	// DataReady signals that parameters are final and playback may start.
	DataReady() error
	// Seek jumps to an absolute offset in seekable content.
	Seek(offset time.Duration) error
	// Duration returns the known content duration (0 for live or unknown).
	Duration() time.Duration
	Position() time.Duration
	State() State

	// Subscribe returns a new event subscription.
	Subscribe() *Subscription

	Close() error
}
