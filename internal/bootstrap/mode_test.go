package bootstrap

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/llehouerou/rpconsole/internal/launch"
	"github.com/llehouerou/rpconsole/internal/playback"
)

func TestResolve(t *testing.T) {
	override := "https://cdn.example/ep1.mp3"

	tests := []struct {
		name       string
		params     launch.Parameters
		env        Environment
		wantMode   playback.Mode
		wantSrc    []playback.Source
		overridden bool
		wantSeek   time.Duration // 0 means no pending seek
	}{
		{
			name:     "live environment",
			env:      liveEnv(),
			wantMode: playback.ModeLive,
			wantSrc:  []playback.Source{liveSource},
		},
		{
			name:     "live ignores offset",
			params:   launch.Parameters{Seek: 90 * time.Second},
			env:      liveEnv(),
			wantMode: playback.ModeLive,
			wantSrc:  []playback.Source{liveSource},
		},
		{
			name:     "on-demand environment with offset",
			params:   launch.Parameters{Seek: 90 * time.Second},
			env:      odEnv(),
			wantMode: playback.ModeOnDemand,
			wantSrc:  []playback.Source{odSource},
			wantSeek: 90 * time.Second,
		},
		{
			name:     "on-demand environment without offset",
			env:      odEnv(),
			wantMode: playback.ModeOnDemand,
			wantSrc:  []playback.Source{odSource},
		},
		{
			name:       "override beats live environment",
			params:     launch.Parameters{ODURL: override},
			env:        liveEnv(),
			wantMode:   playback.ModeOnDemand,
			wantSrc:    []playback.Source{{Type: "http", URL: override}},
			overridden: true,
		},
		{
			name:       "override with offset",
			params:     launch.Parameters{ODURL: override, Seek: 30 * time.Second},
			env:        liveEnv(),
			wantMode:   playback.ModeOnDemand,
			wantSrc:    []playback.Source{{Type: "http", URL: override}},
			overridden: true,
			wantSeek:   30 * time.Second,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Resolve(tt.params, tt.env)

			assert.Equal(t, tt.wantMode, r.Mode)
			assert.Equal(t, tt.wantSrc, r.Sources)
			assert.Equal(t, tt.overridden, r.Overridden)
			if tt.wantSeek == 0 {
				assert.Nil(t, r.Seek)
			} else if assert.NotNil(t, r.Seek) {
				assert.Equal(t, tt.wantSeek, r.Seek.Target())
			}
		})
	}
}

func TestResolve_CopiesEnvironmentSources(t *testing.T) {
	env := liveEnv()
	r := Resolve(launch.Parameters{}, env)
	r.Sources[0].URL = "changed"

	assert.Equal(t, liveSource.URL, env.Sources[0].URL)
}
