// Package notify shows now-playing desktop notifications via D-Bus.
package notify

import (
	"strings"
	"sync"
)

// Urgency is the freedesktop notification priority.
type Urgency byte

const (
	UrgencyLow      Urgency = 0
	UrgencyNormal   Urgency = 1
	UrgencyCritical Urgency = 2
)

// Notification contains data for a desktop notification.
type Notification struct {
	Title      string
	Body       string
	Timeout    int32  // ms, -1 = server default, 0 = never expire
	ReplacesID uint32 // 0 = new notification
	Urgency    Urgency
}

// Notifier sends desktop notifications.
type Notifier interface {
	// Notify sends a notification and returns its ID.
	// Returns 0 and nil error when notifications are unavailable.
	Notify(n Notification) (uint32, error)
	Close(id uint32) error
}

const nowPlayingTimeout = 5000

// NowPlaying keeps a single now-playing notification on screen, replacing it
// when the programme changes. Repeated updates with the same text are
// dropped.
type NowPlaying struct {
	n Notifier

	mu     sync.Mutex
	last   string
	lastID uint32
}

// NewNowPlaying wraps n. A nil n yields a NowPlaying that does nothing.
func NewNowPlaying(n Notifier) *NowPlaying {
	return &NowPlaying{n: n}
}

// Show displays title and body unless they match what is already shown.
func (p *NowPlaying) Show(title, body string) error {
	if p == nil || p.n == nil {
		return nil
	}
	title, body = strings.TrimSpace(title), strings.TrimSpace(body)
	if title == "" {
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	key := title + "\x00" + body
	if key == p.last {
		return nil
	}
	id, err := p.n.Notify(Notification{
		Title:      title,
		Body:       body,
		Timeout:    nowPlayingTimeout,
		ReplacesID: p.lastID,
		Urgency:    UrgencyLow,
	})
	if err != nil {
		return err
	}
	p.last, p.lastID = key, id
	return nil
}

// Close removes the current notification, if any.
func (p *NowPlaying) Close() error {
	if p == nil || p.n == nil {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.lastID == 0 {
		return nil
	}
	id := p.lastID
	p.last, p.lastID = "", 0
	return p.n.Close(id)
}
