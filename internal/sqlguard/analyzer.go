package sqlguard

import (
	"regexp"
	"strings"
)

// Complexity is a cheap structural estimate of a query, used for logging and
// metrics only. It never influences whether a query runs.
type Complexity struct {
	Joins      int    `json:"joins"`
	Aggregates int    `json:"aggregates"`
	Subqueries int    `json:"subqueries"`
	HasGroupBy bool   `json:"has_group_by"`
	HasOrderBy bool   `json:"has_order_by"`
	Cost       string `json:"cost"`
}

const (
	CostLow      = "low"
	CostModerate = "moderate"
	CostHigh     = "high"
)

var (
	joinPattern      = regexp.MustCompile(`(?i)\bJOIN\b`)
	aggregatePattern = regexp.MustCompile(`(?i)\b(COUNT|SUM|AVG|MIN|MAX)\s*\(`)
	subqueryPattern  = regexp.MustCompile(`(?i)\(\s*SELECT\b`)
	groupByPattern   = regexp.MustCompile(`(?i)\bGROUP\s+BY\b`)
	orderByPattern   = regexp.MustCompile(`(?i)\bORDER\s+BY\b`)
)

// Analyze inspects a query's surface structure. It tolerates any input and
// never fails; a garbage string just scores as low cost.
func Analyze(query string) Complexity {
	trimmed := strings.TrimSpace(query)
	c := Complexity{
		Joins:      len(joinPattern.FindAllString(trimmed, -1)),
		Aggregates: len(aggregatePattern.FindAllString(trimmed, -1)),
		Subqueries: len(subqueryPattern.FindAllString(trimmed, -1)),
		HasGroupBy: groupByPattern.MatchString(trimmed),
		HasOrderBy: orderByPattern.MatchString(trimmed),
	}

	score := c.Joins + c.Aggregates + 2*c.Subqueries
	if c.HasGroupBy {
		score++
	}
	switch {
	case score >= 5:
		c.Cost = CostHigh
	case score >= 2:
		c.Cost = CostModerate
	default:
		c.Cost = CostLow
	}
	return c
}
