package state

import (
	"database/sql"
	"encoding/json"
	"errors"
	"slices"
	"time"

	dbutil "github.com/llehouerou/rpconsole/internal/db"
)

// MaxHistory is how many recently played stations are kept.
const MaxHistory = 10

// Settings are the listener's saved preferences.
type Settings struct {
	LastPlayed        string
	StationListPrefix string
	GUID              string
	Presets           []string // station ids, in insertion order
	History           []string // station ids, most recent first
}

func (s Settings) clone() Settings {
	s.Presets = slices.Clone(s.Presets)
	s.History = slices.Clone(s.History)
	return s
}

// RecordPlayed moves stationID to the front of the history and marks it as
// last played.
func (s Settings) RecordPlayed(stationID string) Settings {
	s = s.clone()
	if stationID == "" {
		return s
	}
	s.LastPlayed = stationID
	s.History = slices.DeleteFunc(s.History, func(id string) bool { return id == stationID })
	s.History = slices.Insert(s.History, 0, stationID)
	if len(s.History) > MaxHistory {
		s.History = s.History[:MaxHistory]
	}
	return s
}

// TogglePreset adds or removes stationID from the presets. It reports
// whether the station is a preset afterwards.
func (s Settings) TogglePreset(stationID string) (Settings, bool) {
	s = s.clone()
	if i := slices.Index(s.Presets, stationID); i >= 0 {
		s.Presets = slices.Delete(s.Presets, i, i+1)
		return s, false
	}
	s.Presets = append(s.Presets, stationID)
	return s, true
}

// IsPreset reports whether stationID is a preset.
func (s Settings) IsPreset(stationID string) bool {
	return slices.Contains(s.Presets, stationID)
}

func getSettings(db *sql.DB) (Settings, error) {
	row := db.QueryRow(`
		SELECT last_played, station_list_prefix, guid, presets, history
		FROM settings WHERE id = 1
	`)

	var lastPlayed, prefix, guid sql.NullString
	var presets, history string
	err := row.Scan(&lastPlayed, &prefix, &guid, &presets, &history)
	if errors.Is(err, sql.ErrNoRows) {
		return Settings{}, nil
	}
	if err != nil {
		return Settings{}, err
	}

	s := Settings{
		LastPlayed:        dbutil.NullStringValue(lastPlayed),
		StationListPrefix: dbutil.NullStringValue(prefix),
		GUID:              dbutil.NullStringValue(guid),
	}
	if err := json.Unmarshal([]byte(presets), &s.Presets); err != nil {
		return Settings{}, err
	}
	if err := json.Unmarshal([]byte(history), &s.History); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// saveSettings upserts the settings row. An empty GUID keeps the stored one.
func saveSettings(db *sql.DB, s Settings) error {
	presets, err := json.Marshal(nonNil(s.Presets))
	if err != nil {
		return err
	}
	history, err := json.Marshal(nonNil(s.History))
	if err != nil {
		return err
	}

	_, err = db.Exec(`
		INSERT INTO settings (id, last_played, station_list_prefix, guid, presets, history, updated_at)
		VALUES (1, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			last_played = excluded.last_played,
			station_list_prefix = excluded.station_list_prefix,
			guid = COALESCE(NULLIF(excluded.guid, ''), settings.guid),
			presets = excluded.presets,
			history = excluded.history,
			updated_at = excluded.updated_at
	`, s.LastPlayed, s.StationListPrefix, s.GUID, string(presets), string(history), time.Now().Unix())
	return err
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
