package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"calmtide/internal/core/model"
)

type sqlRepository struct {
	db       *sql.DB
	numbered bool
}

func (repo *sqlRepository) createTables(schema string) error {
	if _, err := repo.db.Exec(schema); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}
	return nil
}

func (repo *sqlRepository) SaveSession(ctx context.Context, record model.CompletedSessionRecord) error {
	query := repo.rebind(`
		INSERT INTO focus_sessions (id, label, duration_minutes, completed_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO NOTHING
	`)
	_, err := repo.db.ExecContext(ctx, query,
		record.ID,
		record.Label,
		record.DurationMinutes,
		record.CompletedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert focus session: %w", err)
	}
	return nil
}

func (repo *sqlRepository) SaveCycle(ctx context.Context, record model.CycleRecord) error {
	query := repo.rebind(`
		INSERT INTO breathing_cycles (id, exercise, cycle, duration_ms, completed_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO NOTHING
	`)
	_, err := repo.db.ExecContext(ctx, query,
		record.ID,
		record.Exercise,
		record.Cycle,
		record.Duration.Milliseconds(),
		record.CompletedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert breathing cycle: %w", err)
	}
	return nil
}

func (repo *sqlRepository) SessionsSince(ctx context.Context, since time.Time) ([]model.CompletedSessionRecord, error) {
	query := repo.rebind(`
		SELECT id, label, duration_minutes, completed_at
		FROM focus_sessions
		WHERE completed_at >= ?
		ORDER BY completed_at ASC
	`)
	rows, err := repo.db.QueryContext(ctx, query, since.UTC())
	if err != nil {
		return nil, fmt.Errorf("query focus sessions: %w", err)
	}
	defer rows.Close()

	var records []model.CompletedSessionRecord
	for rows.Next() {
		var record model.CompletedSessionRecord
		if err := rows.Scan(&record.ID, &record.Label, &record.DurationMinutes, &record.CompletedAt); err != nil {
			return nil, fmt.Errorf("scan focus session: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate focus sessions: %w", err)
	}
	return records, nil
}

func (repo *sqlRepository) Close() error {
	return repo.db.Close()
}

// rebind rewrites ? placeholders as $n for drivers that need numbered parameters.
func (repo *sqlRepository) rebind(query string) string {
	if !repo.numbered {
		return query
	}
	var builder strings.Builder
	position := 0
	for _, r := range query {
		if r == '?' {
			position++
			builder.WriteString("$" + strconv.Itoa(position))
			continue
		}
		builder.WriteRune(r)
	}
	return builder.String()
}
