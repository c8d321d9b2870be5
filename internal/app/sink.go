package app

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/rpconsole/internal/api"
	"github.com/llehouerou/rpconsole/internal/bootstrap"
)

const sinkBuffer = 16

// Sink receives now-playing details and the station directory from the
// bootstrap goroutines and forwards them to the TUI. Sends never block;
// when the buffer is full the update is dropped.
type Sink struct {
	ch chan tea.Msg
}

// NewSink creates a sink with a small buffer.
func NewSink() *Sink {
	return &Sink{ch: make(chan tea.Msg, sinkBuffer)}
}

func (s *Sink) ShowOnDemand(item *api.ODItem) { s.send(OnDemandMsg{Item: item}) }

func (s *Sink) ShowOnAir(item *api.OnAir) { s.send(OnAirMsg{Item: item}) }

func (s *Sink) ReceiveStations(stations []api.Station) {
	s.send(StationsMsg{Stations: append([]api.Station(nil), stations...)})
}

func (s *Sink) send(msg tea.Msg) {
	select {
	case s.ch <- msg:
	default:
	}
}

// Watch returns a command that waits for the next sink message.
func (s *Sink) Watch() tea.Cmd {
	if s == nil {
		return nil
	}
	return waitForChannel(s.ch, func(msg tea.Msg, ok bool) tea.Msg {
		if !ok {
			return nil
		}
		return msg
	})
}

var (
	_ bootstrap.Display   = (*Sink)(nil)
	_ bootstrap.Directory = (*Sink)(nil)
)
