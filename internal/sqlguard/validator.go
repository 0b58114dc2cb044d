// Package sqlguard enforces read-only SQL. Every model-generated statement
// passes through Validate before it can reach the database; Sanitize and
// AddSafetyLimit normalize the statement for execution.
package sqlguard

import (
	"fmt"
	"regexp"
	"strings"
)

// Verdict is the outcome of validating one candidate statement. Category is
// stable and machine-readable; Reason is for logs and audit records.
type Verdict struct {
	OK       bool
	Category string
	Reason   string
}

const (
	CategoryEmpty       = "empty"
	CategoryNotReadOnly = "not_read_only"
	CategoryDML         = "dml"
	CategorySchema      = "schema"
	CategoryAdmin       = "admin"
	CategoryExec        = "exec"
	CategoryFile        = "file"
	CategorySystem      = "system"
	CategoryTransaction = "transaction"
	CategoryLock        = "lock"
	CategoryPattern     = "pattern"
)

type keywordGroup struct {
	category string
	pattern  *regexp.Regexp
}

func compileKeywords(category string, keywords ...string) keywordGroup {
	return keywordGroup{
		category: category,
		pattern:  regexp.MustCompile(`(?i)\b(` + strings.Join(keywords, "|") + `)\b`),
	}
}

var keywordGroups = []keywordGroup{
	compileKeywords(CategoryDML, "INSERT", "UPDATE", "DELETE", "REPLACE", "MERGE", "UPSERT"),
	compileKeywords(CategorySchema, "CREATE", "ALTER", "DROP", "TRUNCATE", "RENAME"),
	compileKeywords(CategoryAdmin, "GRANT", "REVOKE", "FLUSH", "RESET", "PURGE", "OPTIMIZE"),
	compileKeywords(CategoryExec, "EXEC", "EXECUTE", "CALL", "DECLARE", "SET", "USE"),
	compileKeywords(CategoryFile, "LOAD", "OUTFILE", "INFILE", "IMPORT", "EXPORT"),
	compileKeywords(CategorySystem, "SYSTEM", "SHELL", "BENCHMARK", "SLEEP"),
	compileKeywords(CategoryTransaction, "START", "COMMIT", "ROLLBACK", "SAVEPOINT"),
	compileKeywords(CategoryLock, "LOCK", "UNLOCK", "KILL", "SHOW", "PROCESSLIST"),
}

type forbiddenPattern struct {
	reason  string
	pattern *regexp.Regexp
}

var forbiddenPatterns = []forbiddenPattern{
	{"file write clause", regexp.MustCompile(`(?i)INTO\s+OUTFILE`)},
	{"file write clause", regexp.MustCompile(`(?i)INTO\s+DUMPFILE`)},
	{"file read function", regexp.MustCompile(`(?i)LOAD_FILE\s*\(`)},
	{"bulk file load", regexp.MustCompile(`(?i)LOAD\s+DATA`)},
	{"chained statement", regexp.MustCompile(`;\s*\w+`)},
	{"line comment", regexp.MustCompile(`--`)},
	{"block comment", regexp.MustCompile(`(?s)/\*.*?\*/`)},
	{"server variable access", regexp.MustCompile(`@@\w+`)},
	{"system catalog access", regexp.MustCompile(`(?i)INFORMATION_SCHEMA`)},
	{"system catalog access", regexp.MustCompile(`(?i)MYSQL\.`)},
	{"system catalog access", regexp.MustCompile(`(?i)PERFORMANCE_SCHEMA`)},
	{"system catalog access", regexp.MustCompile(`(?i)SYS\.`)},
}

// Validate inspects a candidate statement and reports whether it is a safe
// read-only query. Validation never modifies the statement; callers run
// Sanitize and AddSafetyLimit only after a passing verdict.
func Validate(query string) Verdict {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return Verdict{Category: CategoryEmpty, Reason: "empty statement"}
	}

	upper := strings.ToUpper(trimmed)
	if !strings.HasPrefix(upper, "SELECT") && !strings.HasPrefix(upper, "WITH") {
		return Verdict{Category: CategoryNotReadOnly, Reason: "statement must start with SELECT or WITH"}
	}

	for _, group := range keywordGroups {
		if match := group.pattern.FindString(trimmed); match != "" {
			return Verdict{
				Category: group.category,
				Reason:   fmt.Sprintf("forbidden keyword %q", strings.ToUpper(match)),
			}
		}
	}

	for _, forbidden := range forbiddenPatterns {
		if forbidden.pattern.MatchString(trimmed) {
			return Verdict{Category: CategoryPattern, Reason: forbidden.reason}
		}
	}

	return Verdict{OK: true}
}

// Sanitize normalizes a validated statement for execution: trims whitespace
// and cuts everything from the first semicolon onward. Chained payloads never
// get this far; Validate rejects them outright.
func Sanitize(query string) string {
	trimmed := strings.TrimSpace(query)
	if idx := strings.IndexByte(trimmed, ';'); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	return strings.TrimSpace(trimmed)
}

var limitClause = regexp.MustCompile(`(?i)\bLIMIT\s+\d+`)

// AddSafetyLimit appends a LIMIT clause when the statement has none. An
// existing LIMIT is kept as-is, even when it exceeds maxRows.
func AddSafetyLimit(query string, maxRows int) string {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" || maxRows <= 0 {
		return trimmed
	}
	if limitClause.MatchString(trimmed) {
		return trimmed
	}
	return fmt.Sprintf("%s LIMIT %d", trimmed, maxRows)
}
