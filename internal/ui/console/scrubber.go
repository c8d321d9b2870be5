package console

import (
	"fmt"
	"strings"
	"time"
)

var (
	filledBlock = "▓"
	emptyBlock  = "░"
	playSymbol  = "▶"
	pauseSymbol = "⏸"
	liveSymbol  = "●"
)

// RenderScrubber renders an on-demand progress bar with barWidth cells.
// Format: ▶  1:23  ▓▓▓▓▓░░░░░  4:56
func RenderScrubber(position, duration time.Duration, barWidth int, playing bool) string {
	status := playSymbol
	if !playing {
		status = pauseSymbol
	}
	posStr := formatDuration(position)
	durStr := formatDuration(duration)

	if barWidth < 3 {
		// Too narrow for bar, just show times
		return status + "  " + posStr + " / " + durStr
	}

	var ratio float64
	if duration > 0 {
		ratio = float64(position) / float64(duration)
	}
	filled := max(min(int(float64(barWidth)*ratio), barWidth), 0)
	bar := strings.Repeat(filledBlock, filled) + strings.Repeat(emptyBlock, barWidth-filled)

	return status + "  " + posStr + "  " + bar + "  " + durStr
}

// RenderLive renders the live indicator with the listening time.
func RenderLive(elapsed time.Duration, playing bool) string {
	status := playSymbol
	if !playing {
		status = pauseSymbol
	}
	return status + "  " + T().Badge().Render(liveSymbol+" LIVE") + "  " + formatDuration(elapsed)
}

func formatDuration(d time.Duration) string {
	d = max(d, 0)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
