package store

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// EncodeCSV renders a result as CSV with a header row, preserving the
// select-list column order.
func EncodeCSV(result Result) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(result.Columns); err != nil {
		return nil, fmt.Errorf("store: write csv header: %w", err)
	}
	record := make([]string, len(result.Columns))
	for _, row := range result.Rows {
		for i, column := range result.Columns {
			value := row[column]
			if value == nil {
				record[i] = ""
				continue
			}
			record[i] = fmt.Sprintf("%v", value)
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("store: write csv row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("store: flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
