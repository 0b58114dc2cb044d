package pipeline

import (
	"fmt"
	"strings"

	"github.com/soccercentral/assistant/internal/store"
)

// buildRecordContext renders query results as numbered records for the
// synthesis prompt, preserving the select-list column order.
func buildRecordContext(result store.Result) string {
	if len(result.Rows) == 0 {
		return ""
	}
	var b strings.Builder
	for i, row := range result.Rows {
		fmt.Fprintf(&b, "Record %d:", i+1)
		for _, column := range result.Columns {
			fmt.Fprintf(&b, " %s=%s;", column, formatValue(row[column]))
		}
		b.WriteString("\n")
	}
	if result.Truncated {
		b.WriteString("(additional records were omitted)\n")
	}
	return b.String()
}

func formatValue(value any) string {
	if value == nil {
		return "null"
	}
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.4f", v), "0"), ".")
	default:
		return fmt.Sprintf("%v", v)
	}
}
