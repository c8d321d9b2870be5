package state

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/adrg/xdg"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite" // SQLite driver
)

const (
	appName      = "rpconsole"
	dbFileName   = "rpconsole.db"
	saveDebounce = 500 * time.Millisecond
)

type Manager struct {
	db        *sql.DB
	log       zerolog.Logger
	saveMu    sync.Mutex
	saveTimer *time.Timer
	pending   *Settings
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets where failed background writes are reported.
func WithLogger(l zerolog.Logger) Option {
	return func(m *Manager) { m.log = l }
}

// OpenDefault opens the database in the XDG data directory.
func OpenDefault(opts ...Option) (*Manager, error) {
	dbPath, err := getDBPath()
	if err != nil {
		return nil, err
	}
	return Open(dbPath, opts...)
}

// Open opens (and creates if needed) the database at path. ":memory:" is
// accepted for tests.
func Open(path string, opts ...Option) (*Manager, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// One connection: sqlite has a single writer and ":memory:" databases
	// are per connection.
	db.SetMaxOpenConns(1)

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	m := &Manager{db: db, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

func (m *Manager) Close() error {
	m.saveMu.Lock()
	if m.saveTimer != nil {
		m.saveTimer.Stop()
	}
	pending := m.pending
	m.pending = nil
	m.saveMu.Unlock()

	if pending != nil {
		m.flush(*pending)
	}

	return m.db.Close()
}

// GetSettings returns the saved settings, or zero settings on first run.
// A save still waiting for its debounce is returned as is.
func (m *Manager) GetSettings() (Settings, error) {
	m.saveMu.Lock()
	pending := m.pending
	m.saveMu.Unlock()
	if pending != nil {
		return pending.clone(), nil
	}
	return getSettings(m.db)
}

// SaveSettings schedules a write; rapid successive saves collapse into one.
func (m *Manager) SaveSettings(s Settings) {
	m.saveMu.Lock()
	defer m.saveMu.Unlock()

	s = s.clone()
	m.pending = &s

	if m.saveTimer != nil {
		m.saveTimer.Stop()
	}

	m.saveTimer = time.AfterFunc(saveDebounce, func() {
		m.saveMu.Lock()
		pending := m.pending
		m.pending = nil
		m.saveMu.Unlock()

		if pending != nil {
			m.flush(*pending)
		}
	})
}

// flush writes s in the background; failures are logged.
func (m *Manager) flush(s Settings) {
	if err := saveSettings(m.db, s); err != nil {
		m.log.Warn().Err(err).Str("last_played", s.LastPlayed).Msg("save settings failed")
	}
}

// EnsureGUID returns the listener id, generating one on first run.
func (m *Manager) EnsureGUID() (string, error) {
	var guid sql.NullString
	err := m.db.QueryRow(`SELECT guid FROM settings WHERE id = 1`).Scan(&guid)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return "", err
	}
	if guid.Valid && guid.String != "" {
		return guid.String, nil
	}

	id := uuid.NewString()
	_, err = m.db.Exec(`
		INSERT INTO settings (id, guid, updated_at) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET guid = excluded.guid
	`, id, time.Now().Unix())
	if err != nil {
		return "", err
	}
	return id, nil
}

func getDBPath() (string, error) {
	return xdg.DataFile(filepath.Join(appName, dbFileName))
}
