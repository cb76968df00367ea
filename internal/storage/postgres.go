package storage

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

const postgresSchema = `
	CREATE TABLE IF NOT EXISTS focus_sessions (
		id TEXT PRIMARY KEY,
		label TEXT NOT NULL,
		duration_minutes INTEGER NOT NULL,
		completed_at TIMESTAMPTZ NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_focus_sessions_completed_at ON focus_sessions(completed_at);

	CREATE TABLE IF NOT EXISTS breathing_cycles (
		id TEXT PRIMARY KEY,
		exercise TEXT NOT NULL,
		cycle INTEGER NOT NULL,
		duration_ms BIGINT NOT NULL,
		completed_at TIMESTAMPTZ NOT NULL
	);
`

// PostgresRepository stores records in a remote PostgreSQL database.
type PostgresRepository struct {
	sqlRepository
}

// NewPostgres connects to the database at dsn.
func NewPostgres(dsn string) (*PostgresRepository, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	repo, err := NewPostgresDB(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return repo, nil
}

// NewPostgresDB wraps an existing connection pool and ensures the schema exists.
func NewPostgresDB(db *sql.DB) (*PostgresRepository, error) {
	repo := &PostgresRepository{sqlRepository{db: db, numbered: true}}
	if err := repo.createTables(postgresSchema); err != nil {
		return nil, err
	}
	return repo, nil
}
