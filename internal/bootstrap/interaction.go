package bootstrap

import "sync/atomic"

// Affordance tracks whether the user drives the console with the mouse or
// the keyboard. Keyboard mode shows focus outlines.
type Affordance struct {
	mouse atomic.Bool
}

// MouseDown switches to mouse mode. It reports whether the mode changed.
func (a *Affordance) MouseDown() bool {
	return a.mouse.CompareAndSwap(false, true)
}

// KeyDown switches to keyboard mode. It reports whether the mode changed.
func (a *Affordance) KeyDown() bool {
	return a.mouse.CompareAndSwap(true, false)
}

// MouseActive reports whether mouse mode is active.
func (a *Affordance) MouseActive() bool {
	return a.mouse.Load()
}

// Layout holds the measurements derived from the terminal size.
type Layout struct {
	Width, Height int
	ScrubberWidth int
	StripWidth    int
	Compact       bool
	MenuOpen      bool
}

const (
	// border, padding, status symbol, both clocks and the gaps between them
	scrubberChrome = 2 + 2 + 1 + 2 + 5 + 2 + 2 + 5
	stripChrome    = 4
	compactWidth   = 40
)

// ComputeLayout measures the console for a terminal of w by h cells.
// Resizing always closes the menu.
func ComputeLayout(w, h int) Layout {
	w, h = max(w, 0), max(h, 0)
	return Layout{
		Width:         w,
		Height:        h,
		ScrubberWidth: max(w-scrubberChrome, 0),
		StripWidth:    max(w-stripChrome, 0),
		Compact:       w < compactWidth,
	}
}

// MouseDown records a pointer press.
func (s *Sequencer) MouseDown() bool {
	return s.affordance.MouseDown()
}

// KeyDown records a key press.
func (s *Sequencer) KeyDown() bool {
	return s.affordance.KeyDown()
}

// MouseActive reports the current affordance mode.
func (s *Sequencer) MouseActive() bool {
	return s.affordance.MouseActive()
}

// Resize recomputes the layout and returns it.
func (s *Sequencer) Resize(w, h int) Layout {
	l := ComputeLayout(w, h)
	s.layoutMu.Lock()
	s.layout = l
	s.layoutMu.Unlock()
	return l
}

// Layout returns the last computed layout.
func (s *Sequencer) Layout() Layout {
	s.layoutMu.Lock()
	defer s.layoutMu.Unlock()
	return s.layout
}
