package bootstrap

import (
	"github.com/llehouerou/rpconsole/internal/launch"
	"github.com/llehouerou/rpconsole/internal/playback"
)

// overrideSourceType is the audio type of the synthetic override source.
const overrideSourceType = "http"

// Resolution is the playback mode decided before any network call.
type Resolution struct {
	Mode       playback.Mode
	Sources    []playback.Source
	Overridden bool         // sources come from the on-demand URL override
	Seek       *PendingSeek // nil unless on-demand with a start offset
}

// Resolve decides the playback mode and sources from the launch parameters
// and the environment defaults. An on-demand override always wins over the
// environment.
func Resolve(p launch.Parameters, env Environment) Resolution {
	var r Resolution

	if p.HasODOverride() {
		r.Mode = playback.ModeOnDemand
		r.Sources = []playback.Source{{Type: overrideSourceType, URL: p.ODURL}}
		r.Overridden = true
	} else {
		r.Mode = playback.ModeOnDemand
		if env.Live {
			r.Mode = playback.ModeLive
		}
		r.Sources = append([]playback.Source(nil), env.Sources...)
	}

	if r.Mode == playback.ModeOnDemand && p.Seek > 0 {
		r.Seek = NewPendingSeek(p.Seek)
	}
	return r
}
