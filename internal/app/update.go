// internal/app/update.go
package app

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/rpconsole/internal/errmsg"
	"github.com/llehouerou/rpconsole/internal/playback"
	"github.com/llehouerou/rpconsole/internal/ui/console"
)

// seekStep is how far left/right move within on-demand content.
const seekStep = 10 * time.Second

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !m.Booting {
			return m, nil
		}
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd

	case BootstrapDoneMsg:
		return m.handleBootstrapDone(msg)

	case TickMsg:
		return m, TickCmd()

	case DirectoryMessage:
		m.handleDirectory(msg)
		return m, m.sink.Watch()

	case PlaybackMessage:
		return m.handlePlayback(msg)

	case tea.WindowSizeMsg:
		m.Layout = m.boot.Resize(msg.Width, msg.Height)
		return m, nil

	case tea.MouseMsg:
		if msg.Action == tea.MouseActionPress {
			m.boot.MouseDown()
			m.MouseMode = true
		}
		return m, nil

	case tea.KeyMsg:
		m.boot.KeyDown()
		m.MouseMode = false
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleBootstrapDone(msg BootstrapDoneMsg) (tea.Model, tea.Cmd) {
	m.Booting = false
	if msg.Err != nil {
		m.ErrorMsg = errmsg.Format(errmsg.OpBootstrap, msg.Err)
		return m, nil
	}

	o := msg.Outcome
	m.Outcome = &o
	if o.StartErr != nil {
		m.ErrorMsg = errmsg.Format(errmsg.OpPlaybackStart, o.StartErr)
	}
	m.recordPlay(o)
	return m, TickCmd()
}

func (m *Model) handleDirectory(msg DirectoryMessage) {
	switch msg := msg.(type) {
	case OnDemandMsg:
		m.OnDemand = msg.Item
		if msg.Item != nil {
			m.notify(msg.Item.Name, msg.Item.Description)
		}
	case OnAirMsg:
		m.OnAir = msg.Item
		if msg.Item != nil {
			if m.StationName == "" {
				m.StationName = msg.Item.Station
			}
			m.notify(msg.Item.Artist, msg.Item.Title)
		}
	case StationsMsg:
		m.cacheStations(msg.Stations)
	}
}

func (m *Model) notify(title, body string) {
	if err := m.notifier.Show(console.Sanitize(title), console.Sanitize(body)); err != nil {
		m.log.Debug().Err(err).Msg("desktop notification")
	}
}

func (m Model) handlePlayback(msg PlaybackMessage) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case StateChangedMsg:
		m.Playback = msg.Current
	case LoadedMsg:
		loaded := playback.Loaded(msg)
		m.Loaded = &loaded
		if m.OnDemand == nil && loaded.Title != "" {
			m.notify(loaded.Title, loaded.Artist)
		}
	case PlaybackErrorMsg:
		m.log.Warn().Err(msg.Err).Str("url", msg.URL).Str("op", msg.Operation).Msg("playback error")
		m.ErrorMsg = errmsg.FormatWith(errmsg.OpPlaybackLoad, msg.URL, msg.Err)
	case PlaybackClosedMsg:
		m.sub = nil
		return m, nil
	}
	return m, WatchPlayback(m.sub)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "p":
		m.togglePreset()
	case "left":
		m.seekBy(-seekStep)
	case "right":
		m.seekBy(seekStep)
	case "esc":
		m.ErrorMsg = ""
		m.StatusMsg = ""
	}
	return m, nil
}

// seekBy moves within on-demand content, clamped to its bounds.
func (m *Model) seekBy(delta time.Duration) {
	if m.Outcome == nil || m.Live() {
		return
	}
	dur := m.engine.Duration()
	if dur <= 0 {
		return
	}
	target := min(max(m.engine.Position()+delta, 0), dur)
	if err := m.engine.Seek(target); err != nil {
		m.ErrorMsg = errmsg.Format(errmsg.OpPlaybackSeek, err)
	}
}
