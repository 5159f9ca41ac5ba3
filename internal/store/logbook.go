package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/nerrad567/gray-logic-trace/internal/trace"
)

// LogbookRepository stores entity state changes.
type LogbookRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewLogbookRepository creates a repository on an open, migrated database.
func NewLogbookRepository(db *sql.DB) *LogbookRepository {
	return &LogbookRepository{db: db, now: time.Now}
}

// Record appends one entry.
func (r *LogbookRepository) Record(ctx context.Context, e trace.LogEntry) error {
	if e.EntityID == "" {
		return ErrEntityIDRequired
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO logbook (when_unix, domain, entity_id, name, message, state, context_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.When, e.Domain, e.EntityID, e.Name, e.Message, e.State, e.ContextID,
	)
	if err != nil {
		return fmt.Errorf("inserting logbook entry for %s: %w", e.EntityID, err)
	}
	return nil
}

// Range returns entries with from <= when <= to, oldest first. Entries
// recorded at the same instant keep their insertion order.
func (r *LogbookRepository) Range(ctx context.Context, from, to time.Time) ([]trace.LogEntry, error) {
	return r.query(ctx, `
		SELECT when_unix, domain, entity_id, name, message, state, context_id
		FROM logbook
		WHERE when_unix >= ? AND when_unix <= ?
		ORDER BY when_unix, id`,
		trace.EpochSeconds(from), trace.EpochSeconds(to),
	)
}

// ForContext returns the entries recorded under contextID, oldest first.
func (r *LogbookRepository) ForContext(ctx context.Context, contextID string) ([]trace.LogEntry, error) {
	if contextID == "" {
		return nil, ErrContextIDRequired
	}
	return r.query(ctx, `
		SELECT when_unix, domain, entity_id, name, message, state, context_id
		FROM logbook
		WHERE context_id = ?
		ORDER BY when_unix, id`,
		contextID,
	)
}

func (r *LogbookRepository) query(ctx context.Context, query string, args ...any) ([]trace.LogEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying logbook: %w", err)
	}
	defer rows.Close()

	var entries []trace.LogEntry
	for rows.Next() {
		var e trace.LogEntry
		if err := rows.Scan(&e.When, &e.Domain, &e.EntityID, &e.Name, &e.Message, &e.State, &e.ContextID); err != nil {
			return nil, fmt.Errorf("scanning logbook entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating logbook: %w", err)
	}
	return entries, nil
}

// Prune deletes entries older than olderThan.
func (r *LogbookRepository) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		return 0, ErrInvalidRetention
	}
	cutoff := trace.EpochSeconds(r.now().Add(-olderThan))
	result, err := r.db.ExecContext(ctx, "DELETE FROM logbook WHERE when_unix < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("deleting logbook entries: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("checking rows affected: %w", err)
	}
	return n, nil
}
