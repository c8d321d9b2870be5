//go:build !windows

// Package stderr captures output that C audio libraries (ALSA, oto) write
// straight to file descriptor 2 and forwards it to the logger, so it cannot
// corrupt the TUI layout.
package stderr

import (
	"os"
	"syscall"

	"github.com/rs/zerolog"
)

// Capture is an active fd 2 redirection.
type Capture struct {
	orig int
	r, w *os.File
	done chan struct{}
}

// Start redirects fd 2 into log. It must be called before audio
// initialization. The logger must not itself write to stderr.
func Start(log zerolog.Logger) (*Capture, error) {
	r, w, err := os.Pipe()
	if err != nil {
		return nil, err
	}

	orig, err := syscall.Dup(int(os.Stderr.Fd()))
	if err != nil {
		r.Close()
		w.Close()
		return nil, err
	}

	if err := syscall.Dup2(int(w.Fd()), int(os.Stderr.Fd())); err != nil {
		syscall.Close(orig)
		r.Close()
		w.Close()
		return nil, err
	}

	c := &Capture{orig: orig, r: r, w: w, done: make(chan struct{})}
	go func() {
		defer close(c.done)
		forward(r, log)
	}()
	return c, nil
}

// Stop restores the original stderr and waits for pending lines.
func (c *Capture) Stop() {
	if c == nil {
		return
	}
	_ = syscall.Dup2(c.orig, int(os.Stderr.Fd()))
	_ = syscall.Close(c.orig)
	c.w.Close()
	<-c.done
	c.r.Close()
}
