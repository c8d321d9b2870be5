package state

import (
	"database/sql"
	"time"

	"github.com/llehouerou/rpconsole/internal/api"
	dbutil "github.com/llehouerou/rpconsole/internal/db"
)

// ReplaceStations swaps the cached station directory for stations.
func (m *Manager) ReplaceStations(stations []api.Station) error {
	now := time.Now().Unix()
	return dbutil.WithTx(m.db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM stations`); err != nil {
			return err
		}
		stmt, err := tx.Prepare(`
			INSERT OR REPLACE INTO stations (id, position, name, console_url, logo_url, fetched_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for i, s := range stations {
			if s.ID == "" {
				continue
			}
			if _, err := stmt.Exec(s.ID, i, s.Name, s.URL, s.Logo, now); err != nil {
				return err
			}
		}
		return nil
	})
}

// ListStations returns the cached station directory in fetch order.
func (m *Manager) ListStations() ([]api.Station, error) {
	rows, err := m.db.Query(`
		SELECT id, name, console_url, logo_url FROM stations ORDER BY position
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stations []api.Station
	for rows.Next() {
		var s api.Station
		var consoleURL, logoURL sql.NullString
		if err := rows.Scan(&s.ID, &s.Name, &consoleURL, &logoURL); err != nil {
			return nil, err
		}
		s.URL = dbutil.NullStringValue(consoleURL)
		s.Logo = dbutil.NullStringValue(logoURL)
		stations = append(stations, s)
	}
	return stations, rows.Err()
}

// StationName looks up a cached station name.
func (m *Manager) StationName(id string) (string, bool) {
	var name string
	err := m.db.QueryRow(`SELECT name FROM stations WHERE id = ?`, id).Scan(&name)
	if err != nil {
		return "", false
	}
	return name, true
}
