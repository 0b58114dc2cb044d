package store

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestQueryMaterializesRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	query := "SELECT first_name, goals FROM scorers LIMIT 100"
	mock.ExpectQuery(regexp.QuoteMeta(query)).WillReturnRows(
		sqlmock.NewRows([]string{"first_name", "goals"}).
			AddRow("Ada", 12).
			AddRow("Grace", 9),
	)

	executor := NewExecutor(db, time.Second, 100)
	result, err := executor.Query(context.Background(), query)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(result.Columns) != 2 || result.Columns[0] != "first_name" {
		t.Fatalf("Columns = %v", result.Columns)
	}
	if len(result.Rows) != 2 {
		t.Fatalf("Rows = %d, want 2", len(result.Rows))
	}
	if result.Rows[0]["first_name"] != "Ada" {
		t.Fatalf("Rows[0] = %v", result.Rows[0])
	}
	if result.Truncated {
		t.Fatal("result should not be truncated")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestQueryNormalizesDatesAndBytes(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	birthday := time.Date(2010, time.March, 14, 0, 0, 0, 0, time.UTC)
	playedAt := time.Date(2026, time.May, 2, 15, 30, 0, 0, time.UTC)
	query := "SELECT date_of_birth, played_at, notes FROM x LIMIT 100"
	mock.ExpectQuery(regexp.QuoteMeta(query)).WillReturnRows(
		sqlmock.NewRows([]string{"date_of_birth", "played_at", "notes"}).
			AddRow(birthday, playedAt, []byte("solid left foot")),
	)

	executor := NewExecutor(db, time.Second, 100)
	result, err := executor.Query(context.Background(), query)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	row := result.Rows[0]
	if row["date_of_birth"] != "2010-03-14" {
		t.Fatalf("date_of_birth = %v", row["date_of_birth"])
	}
	if row["played_at"] != "2026-05-02T15:30:00Z" {
		t.Fatalf("played_at = %v", row["played_at"])
	}
	if row["notes"] != "solid left foot" {
		t.Fatalf("notes = %v", row["notes"])
	}
}

func TestQueryTruncatesAtRowCap(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id"})
	for i := 1; i <= 5; i++ {
		rows.AddRow(i)
	}
	query := "SELECT id FROM players"
	mock.ExpectQuery(regexp.QuoteMeta(query)).WillReturnRows(rows)

	executor := NewExecutor(db, time.Second, 3)
	result, err := executor.Query(context.Background(), query)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(result.Rows) != 3 {
		t.Fatalf("Rows = %d, want 3", len(result.Rows))
	}
	if !result.Truncated {
		t.Fatal("result should be marked truncated")
	}
}

func TestQueryPropagatesDatabaseErrors(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	query := "SELECT nope FROM players"
	mock.ExpectQuery(regexp.QuoteMeta(query)).WillReturnError(errors.New("column does not exist"))

	executor := NewExecutor(db, time.Second, 100)
	if _, err := executor.Query(context.Background(), query); err == nil {
		t.Fatal("Query() should surface database errors")
	}
}

func TestQueryEmptyResultHasColumns(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	query := "SELECT id, name FROM teams WHERE season = '1900'"
	mock.ExpectQuery(regexp.QuoteMeta(query)).WillReturnRows(sqlmock.NewRows([]string{"id", "name"}))

	executor := NewExecutor(db, time.Second, 100)
	result, err := executor.Query(context.Background(), query)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(result.Rows) != 0 {
		t.Fatalf("Rows = %d, want 0", len(result.Rows))
	}
	if len(result.Columns) != 2 {
		t.Fatalf("Columns = %v", result.Columns)
	}
}
