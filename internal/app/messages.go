// Package app contains the console TUI: the root model, its messages and
// the commands that feed it.
package app

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/rpconsole/internal/api"
	"github.com/llehouerou/rpconsole/internal/bootstrap"
	"github.com/llehouerou/rpconsole/internal/playback"
)

// PlaybackMessage is implemented by messages coming from the engine
// subscription. Update re-arms the watcher after handling one.
type PlaybackMessage interface {
	tea.Msg
	playbackMessage()
}

// DirectoryMessage is implemented by messages pushed through the Sink.
// Update re-arms the sink watcher after handling one.
type DirectoryMessage interface {
	tea.Msg
	directoryMessage()
}

// BootstrapDoneMsg carries the committed bootstrap outcome.
type BootstrapDoneMsg struct {
	Outcome bootstrap.Outcome
	Err     error
}

// TickMsg is sent every second to refresh the progress line.
type TickMsg time.Time

// OnDemandMsg carries the now-playing details of an on-demand programme.
type OnDemandMsg struct {
	Item *api.ODItem
}

func (OnDemandMsg) directoryMessage() {}

// OnAirMsg carries what a live station is currently playing.
type OnAirMsg struct {
	Item *api.OnAir
}

func (OnAirMsg) directoryMessage() {}

// StationsMsg carries the station directory.
type StationsMsg struct {
	Stations []api.Station
}

func (StationsMsg) directoryMessage() {}

// StateChangedMsg wraps a playback.StateChange event.
type StateChangedMsg playback.StateChange

func (StateChangedMsg) playbackMessage() {}

// LoadedMsg wraps a playback.Loaded event.
type LoadedMsg playback.Loaded

func (LoadedMsg) playbackMessage() {}

// PlaybackErrorMsg wraps a playback.ErrorEvent.
type PlaybackErrorMsg playback.ErrorEvent

func (PlaybackErrorMsg) playbackMessage() {}

// PlaybackClosedMsg is sent when the engine closes the subscription.
type PlaybackClosedMsg struct{}

func (PlaybackClosedMsg) playbackMessage() {}
