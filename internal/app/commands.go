// internal/app/commands.go
package app

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/rpconsole/internal/playback"
)

// TickCmd returns a command that sends a TickMsg after one second.
func TickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// runBootstrap runs the bootstrap to completion off the UI goroutine.
func runBootstrap(ctx context.Context, b Bootstrapper) tea.Cmd {
	return func() tea.Msg {
		o, err := b.Run(ctx)
		return BootstrapDoneMsg{Outcome: o, Err: err}
	}
}

// WatchPlayback returns a command that waits for the next engine event.
func WatchPlayback(sub *playback.Subscription) tea.Cmd {
	if sub == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case e := <-sub.StateChanged:
			return StateChangedMsg(e)
		case e := <-sub.Loaded:
			return LoadedMsg(e)
		case e := <-sub.Error:
			return PlaybackErrorMsg(e)
		case <-sub.Done:
			return PlaybackClosedMsg{}
		}
	}
}

// waitForChannel creates a command that waits for a value from a channel.
// Returns nil if ch is nil.
func waitForChannel[T any](ch <-chan T, onResult func(T, bool) tea.Msg) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		result, ok := <-ch
		return onResult(result, ok)
	}
}
