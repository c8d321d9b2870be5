// internal/player/mock.go
package player

import (
	"sync"
	"time"

	"github.com/llehouerou/rpconsole/internal/playback"
)

// Mock is a test double for playback.Engine. It is safe for concurrent use
// so bootstrap goroutines can drive it.
type Mock struct {
	mu sync.Mutex

	state         playback.State
	position      time.Duration
	duration      time.Duration
	params        []playback.Params
	dataReady     int
	dataReadyErr  error
	seekCalls     []time.Duration
	seekErr       error
	events        playback.Broadcaster
	onDataReadyFn func()
}

// NewMock creates a new mock engine for testing.
func NewMock() *Mock {
	return &Mock{state: playback.StateStopped}
}

func (m *Mock) SetParams(p playback.Params) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.params = append(m.params, p.Clone())
}

func (m *Mock) DataReady() error {
	m.mu.Lock()
	m.dataReady++
	err := m.dataReadyErr
	fn := m.onDataReadyFn
	if err == nil {
		m.state = playback.StatePlaying
	}
	m.mu.Unlock()
	if fn != nil {
		fn()
	}
	return err
}

func (m *Mock) Seek(offset time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seekCalls = append(m.seekCalls, offset)
	if m.seekErr != nil {
		return m.seekErr
	}
	m.position = offset
	return nil
}

func (m *Mock) Duration() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.duration
}

func (m *Mock) Position() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.position
}

func (m *Mock) State() playback.State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Mock) Subscribe() *playback.Subscription { return m.events.Subscribe() }

func (m *Mock) Close() error {
	m.events.Close()
	return nil
}

// Test helpers

func (m *Mock) SetState(s playback.State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = s
}

func (m *Mock) SetDuration(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.duration = d
}

func (m *Mock) SetPosition(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.position = d
}

func (m *Mock) SetDataReadyError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dataReadyErr = err
}

func (m *Mock) SetSeekError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seekErr = err
}

// OnDataReady registers fn to run after each DataReady call.
func (m *Mock) OnDataReady(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onDataReadyFn = fn
}

func (m *Mock) ParamsCalls() []playback.Params {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]playback.Params(nil), m.params...)
}

func (m *Mock) DataReadyCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dataReady
}

func (m *Mock) SeekCalls() []time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]time.Duration(nil), m.seekCalls...)
}

// SimulateLoaded sets the duration and emits a Loaded event.
func (m *Mock) SimulateLoaded(d time.Duration) {
	m.SetDuration(d)
	m.events.PublishLoaded(playback.Loaded{Duration: d})
}

// Verify Mock implements playback.Engine at compile time.
var _ playback.Engine = (*Mock)(nil)
