package bootstrap

import (
	"errors"
	"fmt"
	"time"

	"github.com/llehouerou/rpconsole/internal/playback"
)

// DefaultFallbackTimeout is how long the race waits for remote configuration
// before starting playback with the environment defaults.
const DefaultFallbackTimeout = 5 * time.Second

// Environment holds the host-provided defaults, read once per bootstrap.
type Environment struct {
	StationID        string
	Sources          []playback.Source // default audio sources
	Live             bool              // default live/on-demand flag
	BufferTime       time.Duration     // buffering hint
	ForceReducedFunc bool              // skip cookie priming, run reduced
}

// Validate checks the environment once at entry.
func (e Environment) Validate() error {
	if e.StationID == "" {
		return errors.New("station id is required")
	}
	for i, src := range e.Sources {
		if src.URL == "" {
			return fmt.Errorf("source %d: url is required", i)
		}
	}
	if e.BufferTime < 0 {
		return fmt.Errorf("buffer time must not be negative: %v", e.BufferTime)
	}
	return nil
}

// defaultParams is the posture used when remote configuration is missing.
func (e Environment) defaultParams(r Resolution) playback.Params {
	return playback.Params{
		Sources:    append([]playback.Source(nil), r.Sources...),
		Live:       r.Mode == playback.ModeLive,
		BufferTime: e.BufferTime,
		Volume:     playback.DefaultVolume,
	}
}
