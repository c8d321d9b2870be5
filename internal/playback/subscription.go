package playback

import "sync"

const eventBufferSize = 16

// Subscription provides event channels for a subscriber.
type Subscription struct {
	StateChanged <-chan StateChange
	Loaded       <-chan Loaded
	Error        <-chan ErrorEvent
	Done         <-chan struct{}

	// Internal write channels
	stateCh  chan StateChange
	loadedCh chan Loaded
	errorCh  chan ErrorEvent
	doneCh   chan struct{}
}

// newSubscription creates a new subscription with buffered channels.
func newSubscription() *Subscription {
	s := &Subscription{
		stateCh:  make(chan StateChange, eventBufferSize),
		loadedCh: make(chan Loaded, eventBufferSize),
		errorCh:  make(chan ErrorEvent, eventBufferSize),
		doneCh:   make(chan struct{}),
	}
	s.StateChanged = s.stateCh
	s.Loaded = s.loadedCh
	s.Error = s.errorCh
	s.Done = s.doneCh
	return s
}

// close signals subscribers to stop by closing doneCh.
func (s *Subscription) close() {
	close(s.doneCh)
}

// sendState sends a state change event (non-blocking).
func (s *Subscription) sendState(e StateChange) {
	select {
	case s.stateCh <- e:
	default:
		// Drop if buffer full
	}
}

// sendLoaded sends a loaded event (non-blocking).
func (s *Subscription) sendLoaded(e Loaded) {
	select {
	case s.loadedCh <- e:
	default:
	}
}

// sendError sends an error event (non-blocking).
func (s *Subscription) sendError(e ErrorEvent) {
	select {
	case s.errorCh <- e:
	default:
	}
}

// Broadcaster fans engine events out to every subscription.
// The zero value is ready to use.
type Broadcaster struct {
	mu     sync.RWMutex
	subs   []*Subscription
	closed bool
}

// Subscribe creates a new event subscription. Subscribing after Close
// returns a subscription whose Done channel is already closed.
func (b *Broadcaster) Subscribe() *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	sub := newSubscription()
	if b.closed {
		sub.close()
		return sub
	}
	b.subs = append(b.subs, sub)
	return sub
}

// PublishState sends a state change to all subscribers.
func (b *Broadcaster) PublishState(e StateChange) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, sub := range b.subs {
		sub.sendState(e)
	}
}

// PublishLoaded sends a loaded event to all subscribers.
func (b *Broadcaster) PublishLoaded(e Loaded) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, sub := range b.subs {
		sub.sendLoaded(e)
	}
}

// PublishError sends an error event to all subscribers.
func (b *Broadcaster) PublishError(e ErrorEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, sub := range b.subs {
		sub.sendError(e)
	}
}

// Close closes every subscription. It is safe to call more than once.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for _, sub := range b.subs {
		sub.close()
	}
	b.subs = nil
}
