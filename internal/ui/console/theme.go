// Package console renders the pieces of the console panel: the progress
// scrubber, the now-playing strip and the status line.
package console

import "github.com/charmbracelet/lipgloss"

// Theme defines the color palette and pre-built styles.
type Theme struct {
	Primary lipgloss.Color // focused border, live badge
	FgBase  lipgloss.Color
	FgMuted lipgloss.Color
	Border  lipgloss.Color
	Error   lipgloss.Color
	Warning lipgloss.Color
	Success lipgloss.Color
}

var defaultTheme = Theme{
	Primary: lipgloss.Color("#a78bfa"),
	FgBase:  lipgloss.Color("#c0c0c0"),
	FgMuted: lipgloss.Color("#808080"),
	Border:  lipgloss.Color("#585858"),
	Error:   lipgloss.Color("#ff5555"),
	Warning: lipgloss.Color("#f1a208"),
	Success: lipgloss.Color("#42b883"),
}

// T returns the default theme.
func T() *Theme {
	return &defaultTheme
}

func (t *Theme) Title() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.FgBase).Bold(true)
}

func (t *Theme) Muted() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.FgMuted)
}

func (t *Theme) Badge() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Primary).Bold(true)
}

func (t *Theme) ErrorText() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Error)
}

func (t *Theme) WarningText() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Warning)
}

func (t *Theme) SuccessText() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Success)
}

// Panel returns the console border. Keyboard users get the focus color.
func (t *Theme) Panel(focused bool) lipgloss.Style {
	border := t.Border
	if focused {
		border = t.Primary
	}
	return lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1)
}
