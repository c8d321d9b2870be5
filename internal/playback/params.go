package playback

import "time"

// DefaultVolume is the volume applied when no remote configuration says otherwise.
const DefaultVolume = 100

// Source describes one candidate audio stream.
type Source struct {
	Type string `json:"audioType" koanf:"type"` // e.g. "http"
	URL  string `json:"audioUrl" koanf:"url"`
}

// Params is the full set of playback parameters handed to an engine.
type Params struct {
	Sources    []Source
	Live       bool
	BufferTime time.Duration // buffering hint, 0 means engine default
	Volume     int           // 0-100
}

// Clone returns a copy that does not share the Sources slice.
func (p Params) Clone() Params {
	c := p
	if p.Sources != nil {
		c.Sources = append([]Source(nil), p.Sources...)
	}
	return c
}

// VolumeLevel returns the volume as a 0.0-1.0 level.
func (p Params) VolumeLevel() float64 {
	switch {
	case p.Volume <= 0:
		return 0
	case p.Volume >= 100:
		return 1
	default:
		return float64(p.Volume) / 100
	}
}
