package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nerrad567/gray-logic-trace/internal/trace"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500

	// timeLayout is fixed width so stored timestamps sort as text.
	timeLayout = "2006-01-02T15:04:05.000000Z"
)

// TraceSummary is the listing view of a stored run.
type TraceSummary struct {
	RunID           string          `json:"run_id"`
	Domain          string          `json:"domain"`
	ItemID          string          `json:"item_id"`
	State           trace.RunState  `json:"state"`
	ScriptExecution trace.Execution `json:"script_execution,omitempty"`
	Start           time.Time       `json:"start"`
	Finish          *time.Time      `json:"finish,omitempty"`
	Error           string          `json:"error,omitempty"`
}

// TraceFilter narrows List. Zero values match everything.
type TraceFilter struct {
	Domain string
	ItemID string
	Limit  int
}

// TraceRepository stores trace records.
type TraceRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewTraceRepository creates a repository on an open, migrated database.
func NewTraceRepository(db *sql.DB) *TraceRepository {
	return &TraceRepository{db: db, now: time.Now}
}

// Save inserts the record, replacing any earlier version with the same run
// ID. Running traces are published repeatedly as they progress.
func (r *TraceRepository) Save(ctx context.Context, rec *trace.Record) error {
	if rec == nil || rec.RunID == "" {
		return ErrRunIDRequired
	}

	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshalling trace %s: %w", rec.RunID, err)
	}

	var finished sql.NullString
	if rec.Timestamp.Finish != nil {
		finished = sql.NullString{String: formatTime(*rec.Timestamp.Finish), Valid: true}
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO traces (run_id, domain, item_id, state, script_execution,
			started_at, finished_at, error, payload, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id) DO UPDATE SET
			domain = excluded.domain,
			item_id = excluded.item_id,
			state = excluded.state,
			script_execution = excluded.script_execution,
			started_at = excluded.started_at,
			finished_at = excluded.finished_at,
			error = excluded.error,
			payload = excluded.payload`,
		rec.RunID,
		rec.OwnDomain(),
		rec.ItemID,
		string(rec.State),
		string(rec.ScriptExecution),
		formatTime(rec.Timestamp.Start),
		finished,
		rec.Error,
		string(payload),
		formatTime(r.now()),
	)
	if err != nil {
		return fmt.Errorf("saving trace %s: %w", rec.RunID, err)
	}
	return nil
}

// Get returns the full record for runID.
func (r *TraceRepository) Get(ctx context.Context, runID string) (*trace.Record, error) {
	var payload string
	err := r.db.QueryRowContext(ctx, "SELECT payload FROM traces WHERE run_id = ?", runID).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTraceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying trace %s: %w", runID, err)
	}

	var rec trace.Record
	if err := json.Unmarshal([]byte(payload), &rec); err != nil {
		return nil, fmt.Errorf("decoding trace %s: %w", runID, err)
	}
	return &rec, nil
}

// List returns summaries newest first.
func (r *TraceRepository) List(ctx context.Context, f TraceFilter) ([]TraceSummary, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT run_id, domain, item_id, state, script_execution, started_at, finished_at, error
		FROM traces
		WHERE (? = '' OR domain = ?) AND (? = '' OR item_id = ?)
		ORDER BY started_at DESC
		LIMIT ?`,
		f.Domain, f.Domain, f.ItemID, f.ItemID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying traces: %w", err)
	}
	defer rows.Close()

	summaries := make([]TraceSummary, 0)
	for rows.Next() {
		var (
			s                 TraceSummary
			state, execution  string
			started           string
			finished, errText sql.NullString
		)
		if err := rows.Scan(&s.RunID, &s.Domain, &s.ItemID, &state, &execution, &started, &finished, &errText); err != nil {
			return nil, fmt.Errorf("scanning trace: %w", err)
		}
		s.State = trace.RunState(state)
		s.ScriptExecution = trace.Execution(execution)
		s.Error = errText.String
		if s.Start, err = parseTime(started); err != nil {
			return nil, err
		}
		if finished.Valid {
			t, err := parseTime(finished.String)
			if err != nil {
				return nil, err
			}
			s.Finish = &t
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating traces: %w", err)
	}
	return summaries, nil
}

// Prune deletes traces that started more than olderThan ago.
func (r *TraceRepository) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		return 0, ErrInvalidRetention
	}
	cutoff := formatTime(r.now().Add(-olderThan))
	result, err := r.db.ExecContext(ctx, "DELETE FROM traces WHERE started_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("deleting traces: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("checking rows affected: %w", err)
	}
	return n, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(value string) (time.Time, error) {
	t, err := time.Parse(timeLayout, value)
	if err == nil {
		return t, nil
	}
	if fallback, fallbackErr := time.Parse(time.RFC3339Nano, value); fallbackErr == nil {
		return fallback.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", value, err)
}
