// internal/app/view.go
package app

import (
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/llehouerou/rpconsole/internal/bootstrap"
	"github.com/llehouerou/rpconsole/internal/playback"
	"github.com/llehouerou/rpconsole/internal/ui/console"
)

// View implements tea.Model.
func (m Model) View() string {
	t := console.T()
	layout := m.Layout
	if layout.Width <= 0 {
		layout = bootstrap.ComputeLayout(defaultWidth, 0)
	}

	lines := []string{
		console.Row(t.Title().Render(m.title()), m.badges(), layout.StripWidth),
	}
	if m.Booting {
		lines = append(lines, m.Spinner.View()+" Connecting…")
	} else {
		lines = append(lines, m.nowPlaying(layout.StripWidth), m.progress(layout))
	}

	panel := t.Panel(!m.MouseMode).Width(max(layout.Width-2, 0)).Render(strings.Join(lines, "\n"))
	return panel + "\n" + m.statusLine(layout.Width)
}

func (m Model) title() string {
	if m.StationName != "" {
		return console.Sanitize(m.StationName)
	}
	return "Station " + m.stationID
}

func (m Model) badges() string {
	t := console.T()
	var parts []string
	if m.Outcome != nil && m.Live() {
		parts = append(parts, t.Badge().Render("LIVE"))
	}
	if m.IsPreset() {
		parts = append(parts, t.WarningText().Render("★"))
	}
	return strings.Join(parts, " ")
}

func (m Model) nowPlaying(width int) string {
	if m.Live() {
		if m.OnAir != nil {
			return console.Strip(width, m.OnAir.Artist, m.OnAir.Title)
		}
		return console.Strip(width, m.title())
	}
	if m.OnDemand != nil {
		return console.Strip(width, m.OnDemand.Name, m.OnDemand.Description)
	}
	// Without show metadata, fall back to the file's own tags.
	if m.Loaded != nil && m.Loaded.Title != "" {
		return console.Strip(width, m.Loaded.Artist, m.Loaded.Title)
	}
	return console.Strip(width, m.title())
}

func (m Model) progress(layout bootstrap.Layout) string {
	playing := m.Playback == playback.StatePlaying
	if m.Live() {
		return console.RenderLive(m.engine.Position(), playing)
	}
	return console.RenderScrubber(m.engine.Position(), m.engine.Duration(), layout.ScrubberWidth, playing)
}

func (m Model) statusLine(width int) string {
	t := console.T()
	if m.ErrorMsg != "" {
		return t.ErrorText().Render(console.Strip(width, m.ErrorMsg))
	}

	var parts []string
	if o := m.Outcome; o != nil {
		src := o.Source.String()
		if o.Source == bootstrap.SourceFallback {
			src += " (" + o.Reason + ")"
		}
		parts = append(parts, src)
		if o.Reduced {
			parts = append(parts, "reduced")
		}
	}
	if m.StationCount > 0 {
		parts = append(parts, strconv.Itoa(m.StationCount)+" stations")
	}
	if m.Loaded != nil && m.Loaded.Size > 0 {
		parts = append(parts, humanize.IBytes(uint64(m.Loaded.Size)))
	}
	style := t.Muted()
	if m.StatusMsg != "" {
		parts = append(parts, m.StatusMsg)
		style = t.SuccessText()
	}
	return style.Render(console.Strip(width, parts...))
}
