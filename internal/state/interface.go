// internal/state/interface.go
package state

import (
	"github.com/llehouerou/rpconsole/internal/api"
)

// Interface defines the state manager contract for dependency injection and testing.
type Interface interface {
	GetSettings() (Settings, error)
	SaveSettings(s Settings)
	EnsureGUID() (string, error)
	ReplaceStations(stations []api.Station) error
	ListStations() ([]api.Station, error)
	StationName(id string) (string, bool)
	Close() error
}

// Verify Manager implements Interface at compile time.
var _ Interface = (*Manager)(nil)
