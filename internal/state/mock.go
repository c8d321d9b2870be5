// internal/state/mock.go
package state

import (
	"sync"

	"github.com/llehouerou/rpconsole/internal/api"
)

// Mock is a test double for Manager. Saves are applied immediately.
type Mock struct {
	mu       sync.Mutex
	settings Settings
	saves    int
	guid     string
	stations []api.Station
	closed   bool
}

// NewMock creates a new mock state manager for testing.
func NewMock() *Mock {
	return &Mock{}
}

func (m *Mock) GetSettings() (Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.settings.clone(), nil
}

func (m *Mock) SaveSettings(s Settings) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings = s.clone()
	m.saves++
}

func (m *Mock) EnsureGUID() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.guid == "" {
		m.guid = "00000000-0000-4000-8000-000000000000"
	}
	return m.guid, nil
}

func (m *Mock) ReplaceStations(stations []api.Station) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stations = append([]api.Station(nil), stations...)
	return nil
}

func (m *Mock) ListStations() ([]api.Station, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]api.Station(nil), m.stations...), nil
}

func (m *Mock) StationName(id string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.stations {
		if s.ID == id {
			return s.Name, true
		}
	}
	return "", false
}

func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Test helpers

// SetSettings seeds settings without counting a save.
func (m *Mock) SetSettings(s Settings) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings = s.clone()
}

func (m *Mock) SaveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

func (m *Mock) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Verify Mock implements Interface at compile time.
var _ Interface = (*Mock)(nil)
