// internal/app/app.go
package app

import (
	"context"
	"errors"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/llehouerou/rpconsole/internal/api"
	"github.com/llehouerou/rpconsole/internal/bootstrap"
	"github.com/llehouerou/rpconsole/internal/errmsg"
	"github.com/llehouerou/rpconsole/internal/notify"
	"github.com/llehouerou/rpconsole/internal/playback"
	"github.com/llehouerou/rpconsole/internal/state"
)

// defaultWidth is used until the terminal reports its size.
const defaultWidth = 60

// Bootstrapper starts the console and tracks the interaction affordance.
// *bootstrap.Sequencer implements it.
type Bootstrapper interface {
	Run(ctx context.Context) (bootstrap.Outcome, error)
	MouseDown() bool
	KeyDown() bool
	Resize(w, h int) bootstrap.Layout
}

// Options configures a Model.
type Options struct {
	StationID string
	Bootstrap Bootstrapper
	Engine    playback.Engine
	State     state.Interface
	Sink      *Sink
	Notifier  *notify.NowPlaying // optional
	Logger    zerolog.Logger
}

// Model is the root TUI model.
type Model struct {
	ctx       context.Context
	stationID string
	boot      Bootstrapper
	engine    playback.Engine
	state     state.Interface
	sink      *Sink
	notifier  *notify.NowPlaying
	sub       *playback.Subscription
	log       zerolog.Logger

	Spinner   spinner.Model
	Booting   bool
	Outcome   *bootstrap.Outcome
	Layout    bootstrap.Layout
	MouseMode bool

	StationName  string
	StationCount int
	OnDemand     *api.ODItem
	OnAir        *api.OnAir
	Loaded       *playback.Loaded
	Playback     playback.State

	Settings  state.Settings
	ErrorMsg  string
	StatusMsg string
}

// New creates the root model. Cached settings and stations are loaded
// immediately so the console has a title before the bootstrap finishes.
func New(ctx context.Context, opts Options) (Model, error) {
	if opts.Bootstrap == nil {
		return Model{}, errors.New("app: bootstrapper is required")
	}
	if opts.Engine == nil {
		return Model{}, errors.New("app: engine is required")
	}
	if opts.State == nil {
		return Model{}, errors.New("app: state is required")
	}

	m := Model{
		ctx:       ctx,
		stationID: opts.StationID,
		boot:      opts.Bootstrap,
		engine:    opts.Engine,
		state:     opts.State,
		sink:      opts.Sink,
		notifier:  opts.Notifier,
		sub:       opts.Engine.Subscribe(),
		log:       opts.Logger,
		Spinner:   spinner.New(spinner.WithSpinner(spinner.Dot)),
		Booting:   true,
		Layout:    bootstrap.ComputeLayout(defaultWidth, 0),
		Playback:  opts.Engine.State(),
	}

	settings, err := m.state.GetSettings()
	if err != nil {
		m.log.Warn().Err(err).Msg("load settings")
		m.ErrorMsg = errmsg.Format(errmsg.OpSettingsLoad, err)
	}
	m.Settings = settings

	stations, err := m.state.ListStations()
	if err != nil {
		m.log.Warn().Err(err).Msg("load cached stations")
		m.ErrorMsg = errmsg.Format(errmsg.OpStationsLoad, err)
	}
	m.StationCount = len(stations)
	if name, ok := m.state.StationName(m.stationID); ok {
		m.StationName = name
	}

	return m, nil
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.Spinner.Tick,
		runBootstrap(m.ctx, m.boot),
		WatchPlayback(m.sub),
		m.sink.Watch(),
	)
}

// IsPreset reports whether the current station is a preset.
func (m Model) IsPreset() bool {
	return m.Settings.IsPreset(m.stationID)
}

// Reduced reports whether the console runs with reduced functionality.
func (m Model) Reduced() bool {
	return m.Outcome != nil && m.Outcome.Reduced
}

// Live reports whether the committed mode is live.
func (m Model) Live() bool {
	return m.Outcome != nil && m.Outcome.Mode == playback.ModeLive
}
