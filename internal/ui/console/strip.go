package console

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
)

// Sanitize drops control characters and invalid UTF-8 that remote metadata
// sometimes carries.
func Sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		i += size
		switch {
		case r == utf8.RuneError && size <= 1:
		case r == ' ', r == '\t', r == '\u00a0':
			b.WriteByte(' ')
		case unicode.IsControl(r):
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Strip joins the non-empty parts with " · " and fits them into width
// cells, padding or truncating with an ellipsis.
func Strip(width int, parts ...string) string {
	if width <= 0 {
		return ""
	}
	kept := parts[:0:0]
	for _, p := range parts {
		if p = strings.TrimSpace(Sanitize(p)); p != "" {
			kept = append(kept, p)
		}
	}
	text := ansi.Truncate(strings.Join(kept, " · "), width, "…")
	return runewidth.FillRight(text, width)
}

// Row places left and right on one line of exactly width cells when they fit.
func Row(left, right string, width int) string {
	gap := max(width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return left + strings.Repeat(" ", gap) + right
}
