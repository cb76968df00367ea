package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

const sqliteSchema = `
	CREATE TABLE IF NOT EXISTS focus_sessions (
		id TEXT PRIMARY KEY,
		label TEXT NOT NULL,
		duration_minutes INTEGER NOT NULL,
		completed_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_focus_sessions_completed_at ON focus_sessions(completed_at);

	CREATE TABLE IF NOT EXISTS breathing_cycles (
		id TEXT PRIMARY KEY,
		exercise TEXT NOT NULL,
		cycle INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL,
		completed_at DATETIME NOT NULL
	);
`

// SQLiteRepository stores records in a local SQLite file.
type SQLiteRepository struct {
	sqlRepository
}

// NewSQLite opens (and creates if needed) the database at dbPath.
func NewSQLite(dbPath string) (*SQLiteRepository, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("open sqlite: empty path")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	repo := &SQLiteRepository{sqlRepository{db: db}}
	if err := repo.createTables(sqliteSchema); err != nil {
		db.Close()
		return nil, err
	}

	return repo, nil
}
