package db

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

// openStationsDB opens an in-memory database holding a station directory
// cache and the single-row settings table.
func openStationsDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`
		CREATE TABLE stations (
			id TEXT PRIMARY KEY,
			position INTEGER NOT NULL,
			name TEXT NOT NULL
		);
		CREATE TABLE settings (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			last_played TEXT
		);
		INSERT INTO stations (id, position, name) VALUES ('340', 0, 'Teddy');
	`)
	require.NoError(t, err)
	return db
}

func stationNames(t *testing.T, db *sql.DB) []string {
	t.Helper()
	rows, err := db.Query(`SELECT name FROM stations ORDER BY position`)
	require.NoError(t, err)
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		require.NoError(t, rows.Scan(&n))
		names = append(names, n)
	}
	require.NoError(t, rows.Err())
	return names
}

func TestWithTx_ReplacesDirectory(t *testing.T) {
	db := openStationsDB(t)

	err := WithTx(db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM stations`); err != nil {
			return err
		}
		for i, name := range []string{"Main Mix", "Mellow Mix", "Rock Mix"} {
			if _, err := tx.Exec(`INSERT INTO stations (id, position, name) VALUES (?, ?, ?)`,
				name, i, name); err != nil {
				return err
			}
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"Main Mix", "Mellow Mix", "Rock Mix"}, stationNames(t, db))
}

func TestWithTx_ErrorKeepsPreviousDirectory(t *testing.T) {
	db := openStationsDB(t)
	errFetch := errors.New("directory truncated")

	err := WithTx(db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM stations`); err != nil {
			return err
		}
		return errFetch
	})

	require.ErrorIs(t, err, errFetch)
	assert.Equal(t, []string{"Teddy"}, stationNames(t, db))
}

func TestWithTx_ConstraintFailureRollsBackEarlierWrites(t *testing.T) {
	db := openStationsDB(t)

	err := WithTx(db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`INSERT INTO settings (id, last_played) VALUES (1, '340')`); err != nil {
			return err
		}
		// The settings table holds exactly one row.
		_, err := tx.Exec(`INSERT INTO settings (id, last_played) VALUES (2, '5')`)
		return err
	})

	require.Error(t, err)
	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM settings`).Scan(&count))
	assert.Zero(t, count)
}

func TestWithTx_BeginFailsOnClosedDB(t *testing.T) {
	db := openStationsDB(t)
	require.NoError(t, db.Close())

	called := false
	err := WithTx(db, func(*sql.Tx) error {
		called = true
		return nil
	})
	require.Error(t, err)
	assert.False(t, called)
}

func TestNullStringValue(t *testing.T) {
	db := openStationsDB(t)
	_, err := db.Exec(`INSERT INTO settings (id, last_played) VALUES (1, NULL)`)
	require.NoError(t, err)

	var lastPlayed sql.NullString
	require.NoError(t, db.QueryRow(`SELECT last_played FROM settings WHERE id = 1`).Scan(&lastPlayed))
	assert.Empty(t, NullStringValue(lastPlayed))

	_, err = db.Exec(`UPDATE settings SET last_played = '340' WHERE id = 1`)
	require.NoError(t, err)
	require.NoError(t, db.QueryRow(`SELECT last_played FROM settings WHERE id = 1`).Scan(&lastPlayed))
	assert.Equal(t, "340", NullStringValue(lastPlayed))

	assert.Empty(t, NullStringValue(sql.NullString{String: "stale", Valid: false}))
}
