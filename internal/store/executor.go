package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Result is the materialized outcome of one query. Columns preserves the
// select-list order; Rows holds one map per row with normalized values.
type Result struct {
	Columns   []string         `json:"columns"`
	Rows      []map[string]any `json:"rows"`
	Truncated bool             `json:"truncated"`
}

// Executor runs validated read-only queries against the academy database
// with a per-query timeout and a hard row cap.
type Executor struct {
	db      *sql.DB
	timeout time.Duration
	maxRows int
}

func NewExecutor(db *sql.DB, timeout time.Duration, maxRows int) *Executor {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if maxRows <= 0 {
		maxRows = 100
	}
	return &Executor{db: db, timeout: timeout, maxRows: maxRows}
}

// Query runs one statement on a dedicated connection so the session state
// cannot leak across requests. Rows beyond the cap are dropped and the
// result is marked truncated.
func (e *Executor) Query(ctx context.Context, query string) (Result, error) {
	queryCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	conn, err := e.db.Conn(queryCtx)
	if err != nil {
		return Result{}, fmt.Errorf("store: acquire connection: %w", err)
	}
	defer conn.Close()

	rows, err := conn.QueryContext(queryCtx, query)
	if err != nil {
		return Result{}, fmt.Errorf("store: query failed: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return Result{}, fmt.Errorf("store: read columns: %w", err)
	}

	result := Result{Columns: columns, Rows: []map[string]any{}}
	values := make([]any, len(columns))
	pointers := make([]any, len(columns))
	for i := range values {
		pointers[i] = &values[i]
	}

	for rows.Next() {
		if len(result.Rows) >= e.maxRows {
			result.Truncated = true
			break
		}
		if err := rows.Scan(pointers...); err != nil {
			return Result{}, fmt.Errorf("store: scan row: %w", err)
		}
		row := make(map[string]any, len(columns))
		for i, column := range columns {
			row[column] = normalizeValue(values[i])
		}
		result.Rows = append(result.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return Result{}, fmt.Errorf("store: iterate rows: %w", err)
	}
	return result, nil
}

// normalizeValue makes row values JSON- and prompt-friendly: timestamps
// become ISO-8601 strings and raw byte slices become text.
func normalizeValue(value any) any {
	switch v := value.(type) {
	case time.Time:
		if v.Hour() == 0 && v.Minute() == 0 && v.Second() == 0 && v.Nanosecond() == 0 {
			return v.Format("2006-01-02")
		}
		return v.Format(time.RFC3339)
	case []byte:
		return string(v)
	default:
		return value
	}
}
