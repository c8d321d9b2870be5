// Package player implements playback.Engine on top of beep.
package player

import (
	"context"
	"errors"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/rs/zerolog"

	"github.com/llehouerou/rpconsole/internal/playback"
)

var (
	// ErrNoSource is returned by DataReady when no audio source was configured.
	ErrNoSource = errors.New("no audio source")
	// ErrNotSeekable is returned when seeking live or not-yet-loaded content.
	ErrNotSeekable = errors.New("content is not seekable")
)

const (
	defaultBufferTime = 100 * time.Millisecond
	maxBufferTime     = 2 * time.Second
	headerTimeout     = 15 * time.Second
)

// Verify Player implements playback.Engine at compile time.
var _ playback.Engine = (*Player)(nil)

// Player streams one of the configured sources through the speaker.
type Player struct {
	mu sync.Mutex

	params playback.Params
	state  playback.State

	streamer beep.StreamSeekCloser
	format   beep.Format
	ctrl     *beep.Ctrl
	volume   *effects.Volume
	duration time.Duration
	seekable bool
	tempFile string

	httpClient *http.Client
	tempDir    string
	log        zerolog.Logger

	events playback.Broadcaster
	ctx    context.Context
	cancel context.CancelFunc
}

// Option configures a Player.
type Option func(*Player)

// WithHTTPClient overrides the client used to fetch audio.
func WithHTTPClient(c *http.Client) Option {
	return func(p *Player) { p.httpClient = c }
}

// WithTempDir sets where on-demand content is downloaded.
func WithTempDir(dir string) Option {
	return func(p *Player) { p.tempDir = dir }
}

// WithLogger sets the player logger.
func WithLogger(l zerolog.Logger) Option {
	return func(p *Player) { p.log = l }
}

// New creates a stopped player.
func New(opts ...Option) *Player {
	ctx, cancel := context.WithCancel(context.Background())
	p := &Player{
		state: playback.StateStopped,
		httpClient: &http.Client{
			// No overall timeout: live streams never end.
			Transport: &http.Transport{
				Proxy:                 http.ProxyFromEnvironment,
				ResponseHeaderTimeout: headerTimeout,
			},
		},
		tempDir: os.TempDir(),
		log:     zerolog.Nop(),
		ctx:     ctx,
		cancel:  cancel,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// SetParams stores the parameters used by the next DataReady.
func (p *Player) SetParams(params playback.Params) {
	p.mu.Lock()
	p.params = params.Clone()
	vol := p.volume
	level := params.VolumeLevel()
	p.mu.Unlock()

	if vol != nil {
		applyVolume(vol, level)
	}
}

// Params returns the currently stored parameters.
func (p *Player) Params() playback.Params {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.params.Clone()
}

// DataReady starts loading the first usable source in the background.
// Loading errors are published as ErrorEvents.
func (p *Player) DataReady() error {
	p.mu.Lock()
	params := p.params.Clone()
	if len(params.Sources) == 0 {
		p.mu.Unlock()
		return ErrNoSource
	}
	prev := p.state
	p.state = playback.StateLoading
	p.mu.Unlock()

	p.events.PublishState(playback.StateChange{Previous: prev, Current: playback.StateLoading})

	go p.load(params)
	return nil
}

// State returns the current playback state.
func (p *Player) State() playback.State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Duration returns the loaded content duration, 0 for live streams.
func (p *Player) Duration() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.duration
}

// Subscribe creates a new event subscription.
func (p *Player) Subscribe() *playback.Subscription {
	return p.events.Subscribe()
}

// Close stops playback, aborts pending loads and closes subscriptions.
func (p *Player) Close() error {
	p.cancel()
	p.Stop()
	p.events.Close()
	return nil
}

func (p *Player) setState(s playback.State) {
	p.mu.Lock()
	prev := p.state
	p.state = s
	p.mu.Unlock()
	if prev != s {
		p.events.PublishState(playback.StateChange{Previous: prev, Current: s})
	}
}

// bufferTime clamps the buffering hint to what the speaker can use.
func bufferTime(hint time.Duration) time.Duration {
	switch {
	case hint <= 0:
		return defaultBufferTime
	case hint > maxBufferTime:
		return maxBufferTime
	default:
		return hint
	}
}
