// internal/app/persistence.go
package app

import (
	"errors"
	"slices"

	"github.com/llehouerou/rpconsole/internal/api"
	"github.com/llehouerou/rpconsole/internal/bootstrap"
	"github.com/llehouerou/rpconsole/internal/errmsg"
)

var errReduced = errors.New("settings are read-only in reduced mode")

// recordPlay stores the station in the listening history. Remote presets and
// history seed the local copy when it is empty. Nothing is written in
// reduced mode.
func (m *Model) recordPlay(o bootstrap.Outcome) {
	if o.Reduced {
		m.StatusMsg = "Reduced mode: settings are not saved"
		return
	}

	s := m.Settings
	if cfg := o.Config; cfg != nil {
		if len(s.Presets) == 0 {
			s.Presets = slices.Clone(cfg.Presets)
		}
		if len(s.History) == 0 {
			s.History = slices.Clone(cfg.History)
		}
		if s.GUID == "" {
			s.GUID = cfg.GUID
		}
	}
	if prefix := o.Launch.StationListPrefix; prefix != "" {
		s.StationListPrefix = prefix
	}
	if s.GUID == "" {
		guid, err := m.state.EnsureGUID()
		if err != nil {
			m.log.Warn().Err(err).Msg("ensure listener id")
			m.ErrorMsg = errmsg.Format(errmsg.OpGUIDEnsure, err)
		} else {
			s.GUID = guid
		}
	}

	m.Settings = s.RecordPlayed(m.stationID)
	m.state.SaveSettings(m.Settings)
}

func (m *Model) togglePreset() {
	if m.Outcome == nil {
		return
	}
	if m.Outcome.Reduced {
		m.ErrorMsg = errmsg.FormatWith(errmsg.OpPresetToggle, m.stationID, errReduced)
		return
	}

	s, added := m.Settings.TogglePreset(m.stationID)
	m.Settings = s
	m.state.SaveSettings(s)
	if added {
		m.StatusMsg = "Added to presets"
	} else {
		m.StatusMsg = "Removed from presets"
	}
}

// cacheStations keeps the directory for the next start and resolves the
// current station's name from it.
func (m *Model) cacheStations(stations []api.Station) {
	m.StationCount = len(stations)
	for _, st := range stations {
		if st.ID == m.stationID && st.Name != "" {
			m.StationName = st.Name
			break
		}
	}
	if err := m.state.ReplaceStations(stations); err != nil {
		m.log.Warn().Err(err).Int("count", len(stations)).Msg("cache stations")
		m.ErrorMsg = errmsg.Format(errmsg.OpStationsSave, err)
	}
}
