package state

import (
	"database/sql"
)

const currentSchemaVersion = 1

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);

		CREATE TABLE IF NOT EXISTS settings (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			last_played TEXT,
			station_list_prefix TEXT,
			guid TEXT,
			presets TEXT NOT NULL DEFAULT '[]',
			history TEXT NOT NULL DEFAULT '[]',
			updated_at INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS stations (
			id TEXT PRIMARY KEY,
			position INTEGER NOT NULL,
			name TEXT NOT NULL,
			console_url TEXT,
			logo_url TEXT,
			fetched_at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_stations_position ON stations(position);
	`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
		INSERT OR IGNORE INTO schema_version (version) VALUES (?)
	`, currentSchemaVersion)
	return err
}
