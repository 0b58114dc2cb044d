// Package pipeline orchestrates the question-to-answer flow: relevance
// filtering, SQL generation, validation, execution and answer synthesis.
package pipeline

import (
	"context"

	"github.com/soccercentral/assistant/internal/store"
)

// Request is one question entering the pipeline. Caller is the resolved
// identity name, empty for anonymous requests.
type Request struct {
	Question  string
	SessionID string
	Caller    string
}

// Response is the pipeline's answer. Ask never fails: every path, including
// provider and database trouble, ends in a well-formed Response.
type Response struct {
	Answer   string           `json:"answer"`
	SQLQuery string           `json:"sql_query"`
	Data     []map[string]any `json:"data"`
	Columns  []string         `json:"columns,omitempty"`
	Success  bool             `json:"success"`
}

// Executor runs a validated read-only statement.
type Executor interface {
	Query(ctx context.Context, query string) (store.Result, error)
}
