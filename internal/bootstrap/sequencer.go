// Package bootstrap starts the console: it reads the launch parameters,
// decides the playback mode and races the remote configuration fetch against
// a fallback timer. The configuration request waits for cookie priming, the
// timer does not. Exactly one of the two hands parameters to the playback
// engine.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/llehouerou/rpconsole/internal/api"
	"github.com/llehouerou/rpconsole/internal/launch"
	"github.com/llehouerou/rpconsole/internal/metrics"
	"github.com/llehouerou/rpconsole/internal/playback"
)

// ErrAlreadyRun is returned when Run is called more than once.
var ErrAlreadyRun = errors.New("bootstrap already run")

// ConfigService fetches the remote configuration and station directory.
type ConfigService interface {
	Init(ctx context.Context, stationID, stationListPrefix string) (*api.InitResponse, error)
	StationList(ctx context.Context) ([]api.Station, error)
}

// MetadataService fetches now-playing information.
type MetadataService interface {
	OnDemand(ctx context.Context, odURL string) (*api.ODItem, error)
	OnAir(ctx context.Context, stationID string) (*api.OnAir, error)
}

// Display receives now-playing information.
type Display interface {
	ShowOnDemand(item *api.ODItem)
	ShowOnAir(item *api.OnAir)
}

// Directory receives the station directory.
type Directory interface {
	ReceiveStations(stations []api.Station)
}

// Options configures a Sequencer.
type Options struct {
	Env             Environment
	PageURL         string // launch URL; its query holds the overrides
	FallbackTimeout time.Duration

	Engine    playback.Engine
	Config    ConfigService
	Cookies   CookieService   // may be nil when ForceReducedFunc is set
	Metadata  MetadataService // optional
	Display   Display         // optional
	Directory Directory       // optional

	Logger  zerolog.Logger
	Metrics *metrics.Metrics
}

// Sequencer runs the bootstrap once.
type Sequencer struct {
	env       Environment
	pageURL   string
	timeout   time.Duration
	engine    playback.Engine
	config    ConfigService
	cookies   CookieService
	meta      MetadataService
	display   Display
	directory Directory
	log       zerolog.Logger
	metrics   *metrics.Metrics

	started    atomic.Bool
	launch     launch.Parameters
	resolution Resolution
	cookie     atomic.Int32 // PrimeResult, PrimePending until priming returns
	begin      time.Time
	outcome    *Cell[Outcome]
	wg         sync.WaitGroup

	affordance Affordance
	layoutMu   sync.Mutex
	layout     Layout
}

// New validates the options and creates a Sequencer.
func New(opts Options) (*Sequencer, error) {
	if err := opts.Env.Validate(); err != nil {
		return nil, fmt.Errorf("environment: %w", err)
	}
	if opts.Engine == nil {
		return nil, errors.New("engine is required")
	}
	if opts.Config == nil {
		return nil, errors.New("config service is required")
	}
	if opts.Cookies == nil && !opts.Env.ForceReducedFunc {
		return nil, errors.New("cookie service is required unless reduced functionality is forced")
	}
	timeout := opts.FallbackTimeout
	if timeout <= 0 {
		timeout = DefaultFallbackTimeout
	}

	return &Sequencer{
		env:       opts.Env,
		pageURL:   opts.PageURL,
		timeout:   timeout,
		engine:    opts.Engine,
		config:    opts.Config,
		cookies:   opts.Cookies,
		meta:      opts.Metadata,
		display:   opts.Display,
		directory: opts.Directory,
		log:       opts.Logger.With().Str("component", "bootstrap").Logger(),
		metrics:   opts.Metrics,
		outcome:   NewCell[Outcome](),
	}, nil
}

// Run performs the bootstrap and blocks until an outcome is committed or ctx
// is done. Background fetches keep running after Run returns; use Wait to
// wait for them.
func (s *Sequencer) Run(ctx context.Context) (Outcome, error) {
	if !s.started.CompareAndSwap(false, true) {
		return Outcome{}, ErrAlreadyRun
	}
	s.begin = time.Now()
	s.cookie.Store(int32(PrimePending))

	s.launch = launch.FromPageURL(s.pageURL)
	s.resolution = Resolve(s.launch, s.env)
	s.log.Info().
		Str("station", s.env.StationID).
		Stringer("mode", s.resolution.Mode).
		Bool("override", s.resolution.Overridden).
		Dur("seek", s.launch.Seek).
		Msg("bootstrap started")

	if s.resolution.Seek != nil {
		s.watchLoaded(ctx, s.resolution.Seek)
	}

	// The deadline counts from here; priming and every fetch run under it.
	timer := s.armFallback(ctx)
	defer timer.Stop()

	s.fetchDirectory(ctx)
	s.fetchNowPlaying(ctx)
	s.background(func() {
		s.cookie.Store(int32(s.primeCookies(ctx)))
		s.requestConfig(ctx)
	})

	select {
	case <-s.outcome.Done():
		o, _ := s.outcome.Get()
		return o, nil
	case <-ctx.Done():
		return Outcome{}, ctx.Err()
	}
}

// Outcome returns the committed outcome, if any.
func (s *Sequencer) Outcome() (Outcome, bool) {
	return s.outcome.Get()
}

// Resolution returns the mode decided by Run.
func (s *Sequencer) Resolution() Resolution {
	return s.resolution
}

// Wait blocks until the background fetches started by Run have finished.
// The pending seek watcher is not included; it lives until content loads.
func (s *Sequencer) Wait() {
	s.wg.Wait()
}

// watchLoaded releases the pending seek on the first Loaded event. The
// subscription is taken before any parameters reach the engine so the event
// cannot be missed.
func (s *Sequencer) watchLoaded(ctx context.Context, seek *PendingSeek) {
	sub := s.engine.Subscribe()
	go func() {
		select {
		case ev := <-sub.Loaded:
			d := ev.Duration
			if d <= 0 {
				d = s.engine.Duration()
			}
			res, err := seek.Release(s.engine, d)
			s.metrics.PendingSeek(res.String())
			s.log.Debug().
				Stringer("result", res).
				Dur("target", seek.Target()).
				Dur("duration", d).
				Err(err).
				Msg("pending seek released")
		case <-sub.Done:
		case <-ctx.Done():
		}
	}()
}

// fetchNowPlaying asks for the now-playing information of the resolved mode.
// Failures only reach the log.
func (s *Sequencer) fetchNowPlaying(ctx context.Context) {
	if s.meta == nil || s.display == nil {
		return
	}
	switch {
	case s.resolution.Mode == playback.ModeLive:
		s.background(func() {
			item, err := s.meta.OnAir(ctx, s.env.StationID)
			if err != nil {
				s.log.Debug().Err(err).Msg("on-air fetch failed")
				return
			}
			s.display.ShowOnAir(item)
		})
	case !s.resolution.Overridden && s.pageURL != "":
		s.background(func() {
			item, err := s.meta.OnDemand(ctx, s.pageURL)
			if err != nil {
				s.log.Debug().Err(err).Msg("on-demand item fetch failed")
				return
			}
			s.display.ShowOnDemand(item)
		})
	}
}

func (s *Sequencer) background(fn func()) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		fn()
	}()
}
