package settings

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS file_settings (
    identity   TEXT NOT NULL,
    key        TEXT NOT NULL,
    value      INTEGER NOT NULL DEFAULT 0,
    updated_at INTEGER NOT NULL,
    PRIMARY KEY (identity, key)
);
`

// SQLiteStore keeps settings in a SQLite database, for setups where many
// files are tracked or several processes share the settings.
type SQLiteStore struct {
	db *sql.DB
}

func OpenSQLite(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open settings db: %w", err)
	}
	// single writer keeps sqlite from returning SQLITE_BUSY between our own connections
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create settings schema: %w", err)
	}
	log.Debugf("sqlite store opened at %s", path)
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) GetFileSetting(identity, key string) bool {
	var v int
	err := s.db.QueryRow(`SELECT value FROM file_settings WHERE identity = ? AND key = ?`, identity, key).Scan(&v)
	if err == sql.ErrNoRows {
		return false
	}
	if err != nil {
		log.Warnf("read %s/%s: %v", identity, key, err)
		return false
	}
	return v != 0
}

func (s *SQLiteStore) SetFileSetting(identity, key string, value bool) error {
	v := 0
	if value {
		v = 1
	}
	_, err := s.db.Exec(`
INSERT INTO file_settings (identity, key, value, updated_at) VALUES (?, ?, ?, ?)
ON CONFLICT(identity, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		identity, key, v, time.Now().UnixNano())
	if err != nil {
		return fmt.Errorf("write %s/%s: %w", identity, key, err)
	}
	return nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }
