// Package sqlite persists the reconciliation audit journal.
//
// Every reconciliation cycle appends one row recording the outcome, the
// active holder and the previous holder, giving operators a queryable trail
// of handovers that the flat current-state file cannot provide.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/marcelomgarcia/oncall/internal/persistence"
)

const schema = `
CREATE TABLE IF NOT EXISTS reconciliation_cycles (
	id               TEXT PRIMARY KEY,
	ran_at           TEXT NOT NULL,
	outcome          TEXT NOT NULL,
	user_id          TEXT NOT NULL,
	window_start     TEXT NOT NULL,
	window_end       TEXT NOT NULL,
	previous_user_id TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_cycles_ran_at ON reconciliation_cycles (ran_at);
`

// Journal stores reconciliation cycle records in a SQLite database.
type Journal struct {
	db *sql.DB
}

// Open opens (and creates, if needed) the journal database at path and
// applies the schema.
func Open(ctx context.Context, path string) (*Journal, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open journal %s: %w", path, err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: apply journal schema: %w", err)
	}
	return &Journal{db: db}, nil
}

// Close releases the database handle.
func (j *Journal) Close() error {
	return j.db.Close()
}

// RecordCycle appends one cycle record.
func (j *Journal) RecordCycle(ctx context.Context, record persistence.CycleRecord) error {
	query := `
		INSERT INTO reconciliation_cycles (id, ran_at, outcome, user_id, window_start, window_end, previous_user_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := j.db.ExecContext(ctx, query,
		record.ID,
		record.RanAt.UTC().Format(time.RFC3339),
		record.Outcome,
		record.UserID,
		record.WindowStart.UTC().Format(time.DateOnly),
		record.WindowEnd.UTC().Format(time.DateOnly),
		record.PreviousUserID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: record cycle %s: %w", record.ID, err)
	}
	return nil
}

// ListCycles returns the most recent cycle records, newest first. A limit of
// zero or less returns every record.
func (j *Journal) ListCycles(ctx context.Context, limit int) ([]persistence.CycleRecord, error) {
	query := `
		SELECT id, ran_at, outcome, user_id, window_start, window_end, previous_user_id
		FROM reconciliation_cycles
		ORDER BY ran_at DESC, id DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list cycles: %w", err)
	}
	defer rows.Close()

	var records []persistence.CycleRecord
	for rows.Next() {
		var record persistence.CycleRecord
		var ranAt, windowStart, windowEnd string
		if err := rows.Scan(&record.ID, &ranAt, &record.Outcome, &record.UserID, &windowStart, &windowEnd, &record.PreviousUserID); err != nil {
			return nil, fmt.Errorf("sqlite: scan cycle row: %w", err)
		}
		if record.RanAt, err = time.Parse(time.RFC3339, ranAt); err != nil {
			return nil, fmt.Errorf("sqlite: parse ran_at %q: %w", ranAt, err)
		}
		if record.WindowStart, err = time.Parse(time.DateOnly, windowStart); err != nil {
			return nil, fmt.Errorf("sqlite: parse window_start %q: %w", windowStart, err)
		}
		if record.WindowEnd, err = time.Parse(time.DateOnly, windowEnd); err != nil {
			return nil, fmt.Errorf("sqlite: parse window_end %q: %w", windowEnd, err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterate cycles: %w", err)
	}
	return records, nil
}
