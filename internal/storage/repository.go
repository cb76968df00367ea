package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"calmtide/internal/core/model"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// ErrUnknownDriver indicates an unsupported database driver name.
var ErrUnknownDriver = errors.New("unknown storage driver")

// Repository persists completed focus sessions and breathing cycles.
type Repository interface {
	SaveSession(ctx context.Context, record model.CompletedSessionRecord) error

	SaveCycle(ctx context.Context, record model.CycleRecord) error

	SessionsSince(ctx context.Context, since time.Time) ([]model.CompletedSessionRecord, error)

	Close() error
}

// Open returns a repository for the named driver.
func Open(driver, dsn string) (Repository, error) {
	switch driver {
	case DriverSQLite, "":
		repo, err := NewSQLite(dsn)
		if err != nil {
			return nil, err
		}
		return repo, nil
	case DriverPostgres:
		repo, err := NewPostgres(dsn)
		if err != nil {
			return nil, err
		}
		return repo, nil
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("open %q: %w", driver, ErrUnknownDriver)
	}
}
