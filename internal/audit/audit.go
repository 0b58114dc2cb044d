// Package audit persists a record of every question the assistant handles
// and archives old records to object storage as parquet files.
package audit

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

// Event is one handled question. RejectCategory is empty unless the
// validator refused the generated statement.
type Event struct {
	ID             int64     `json:"id"`
	AskedAt        time.Time `json:"asked_at"`
	TraceID        string    `json:"trace_id"`
	Caller         string    `json:"caller"`
	Question       string    `json:"question"`
	Outcome        string    `json:"outcome"`
	SQLQuery       string    `json:"sql_query"`
	RejectCategory string    `json:"reject_category"`
	RowCount       int       `json:"row_count"`
	Success        bool      `json:"success"`
	DurationMS     int64     `json:"duration_ms"`
}

// Recorder stores events. Implementations must never let a storage failure
// reach the caller; auditing is best-effort by contract.
type Recorder interface {
	Record(ctx context.Context, event Event)
}

// NopRecorder drops all events. Used when auditing is disabled.
type NopRecorder struct{}

func (NopRecorder) Record(context.Context, Event) {}

// PostgresRecorder appends events to the audit_events table.
type PostgresRecorder struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewPostgresRecorder(db *sql.DB, logger *slog.Logger) *PostgresRecorder {
	return &PostgresRecorder{db: db, logger: logger}
}

const insertEventSQL = `INSERT INTO audit_events
	(asked_at, trace_id, caller, question, outcome, sql_query, reject_category, row_count, success, duration_ms)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

func (r *PostgresRecorder) Record(ctx context.Context, event Event) {
	if event.AskedAt.IsZero() {
		event.AskedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, insertEventSQL,
		event.AskedAt, event.TraceID, event.Caller, event.Question,
		event.Outcome, event.SQLQuery, event.RejectCategory,
		event.RowCount, event.Success, event.DurationMS,
	)
	if err != nil {
		r.logger.WarnContext(ctx, "audit_record_failed",
			slog.String("trace_id", event.TraceID),
			slog.String("error", err.Error()),
		)
	}
}

// oldestBatch loads up to limit events older than cutoff, oldest first.
func (r *PostgresRecorder) oldestBatch(ctx context.Context, cutoff time.Time, limit int) ([]Event, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, asked_at, trace_id, caller, question, outcome, sql_query, reject_category, row_count, success, duration_ms
		 FROM audit_events WHERE asked_at < $1 ORDER BY asked_at, id LIMIT $2`,
		cutoff, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("audit: load batch: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.AskedAt, &e.TraceID, &e.Caller, &e.Question,
			&e.Outcome, &e.SQLQuery, &e.RejectCategory, &e.RowCount, &e.Success, &e.DurationMS); err != nil {
			return nil, fmt.Errorf("audit: scan event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *PostgresRecorder) deleteBatch(ctx context.Context, events []Event) error {
	if len(events) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("audit: begin delete: %w", err)
	}
	for _, event := range events {
		if _, err := tx.ExecContext(ctx, `DELETE FROM audit_events WHERE id = $1`, event.ID); err != nil {
			tx.Rollback()
			return fmt.Errorf("audit: delete event %d: %w", event.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("audit: commit delete: %w", err)
	}
	return nil
}
