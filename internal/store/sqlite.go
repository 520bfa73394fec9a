package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS search_history (
	position    INTEGER PRIMARY KEY,
	query       TEXT NOT NULL,
	searched_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS preferences (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

const themeKey = "theme"

type SQLiteStore struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create store dir: %w", err)
		}
	}
	db, err := sqlx.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLiteStore{db: db, now: time.Now}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) AddSearch(query string) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	var current []string
	if err := tx.Select(&current, `SELECT query FROM search_history ORDER BY position`); err != nil {
		return fmt.Errorf("load history: %w", err)
	}
	next := pushHistory(current, query)
	if slices.Equal(next, current) {
		return nil
	}
	if _, err := tx.Exec(`DELETE FROM search_history`); err != nil {
		return fmt.Errorf("reset history: %w", err)
	}
	ts := s.now().UTC().Format(time.RFC3339Nano)
	for i, q := range next {
		if _, err := tx.Exec(`INSERT INTO search_history (position, query, searched_at) VALUES (?, ?, ?)`, i, q, ts); err != nil {
			return fmt.Errorf("insert history: %w", err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) RecentSearches() ([]string, error) {
	out := []string{}
	if err := s.db.Select(&out, `SELECT query FROM search_history ORDER BY position LIMIT ?`, MaxHistoryItems); err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	return out, nil
}

func (s *SQLiteStore) ClearHistory() error {
	_, err := s.db.Exec(`DELETE FROM search_history`)
	return err
}

func (s *SQLiteStore) Theme() (Theme, error) {
	var v string
	err := s.db.Get(&v, `SELECT value FROM preferences WHERE key = ?`, themeKey)
	if errors.Is(err, sql.ErrNoRows) {
		return ThemeLight, nil
	}
	if err != nil {
		return "", fmt.Errorf("query theme: %w", err)
	}
	if validTheme(Theme(v)) != nil {
		return ThemeLight, nil
	}
	return Theme(v), nil
}

func (s *SQLiteStore) SetTheme(t Theme) error {
	if err := validTheme(t); err != nil {
		return err
	}
	_, err := s.db.Exec(`INSERT INTO preferences (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, themeKey, string(t))
	return err
}
