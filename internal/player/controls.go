package player

import (
	"os"
	"time"

	"github.com/gopxl/beep/v2/speaker"

	"github.com/llehouerou/rpconsole/internal/playback"
)

// Stop stops playback and releases the decoded stream.
func (p *Player) Stop() {
	p.mu.Lock()
	streamer := p.streamer
	tempFile := p.tempFile
	wasActive := p.streamer != nil
	p.streamer = nil
	p.ctrl = nil
	p.volume = nil
	p.duration = 0
	p.seekable = false
	p.tempFile = ""
	p.mu.Unlock()

	if wasActive {
		speaker.Clear()
		streamer.Close()
	}
	if tempFile != "" {
		os.Remove(tempFile)
	}
	p.setState(playback.StateStopped)
}

// Pause pauses playback.
func (p *Player) Pause() {
	p.mu.Lock()
	ctrl := p.ctrl
	playing := p.state == playback.StatePlaying
	p.mu.Unlock()
	if !playing || ctrl == nil {
		return
	}
	speaker.Lock()
	ctrl.Paused = true
	speaker.Unlock()
	p.setState(playback.StatePaused)
}

// Resume resumes paused playback.
func (p *Player) Resume() {
	p.mu.Lock()
	ctrl := p.ctrl
	paused := p.state == playback.StatePaused
	p.mu.Unlock()
	if !paused || ctrl == nil {
		return
	}
	speaker.Lock()
	ctrl.Paused = false
	speaker.Unlock()
	p.setState(playback.StatePlaying)
}

// Toggle toggles between playing and paused states.
func (p *Player) Toggle() {
	switch p.State() {
	case playback.StatePlaying:
		p.Pause()
	case playback.StatePaused:
		p.Resume()
	case playback.StateStopped, playback.StateLoading:
		// Nothing to toggle
	}
}

// Position returns the current playback position.
func (p *Player) Position() time.Duration {
	p.mu.Lock()
	streamer := p.streamer
	format := p.format
	p.mu.Unlock()
	if streamer == nil {
		return 0
	}
	speaker.Lock()
	pos := streamer.Position()
	speaker.Unlock()
	return format.SampleRate.D(pos)
}

// Seek jumps to an absolute offset. Only downloaded on-demand content
// supports it.
func (p *Player) Seek(offset time.Duration) error {
	p.mu.Lock()
	streamer := p.streamer
	format := p.format
	vol := p.volume
	seekable := p.seekable
	p.mu.Unlock()

	if streamer == nil || !seekable {
		return ErrNotSeekable
	}

	target := min(max(format.SampleRate.N(offset), 0), streamer.Len())

	speaker.Lock()
	// Mute around the seek to avoid audio artifacts
	if vol != nil {
		vol.Silent = true
	}
	err := streamer.Seek(target)
	if vol != nil {
		vol.Silent = false
	}
	speaker.Unlock()

	if err != nil {
		p.events.PublishError(playback.ErrorEvent{Operation: "seek", Err: err})
	}
	return err
}
