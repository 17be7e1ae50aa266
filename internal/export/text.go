package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"

	"github.com/a3tai/mcp-grade-extractor/internal/grades"
)

// WriteCSV renders table as comma-separated values with a header row of
// column titles.
func WriteCSV(w io.Writer, table *grades.Table) error {
	cw := csv.NewWriter(w)

	header := make([]string, len(table.Columns))
	for i, c := range table.Columns {
		header[i] = c.Header()
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	record := make([]string, len(table.Columns))
	for _, rec := range table.Rows {
		for i, c := range table.Columns {
			record[i] = cellText(c.Value(rec))
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// jsonDocument is the JSON rendering: column keys in output order and one
// object per row holding only the values the row supplies.
type jsonDocument struct {
	Columns []string         `json:"columns"`
	Rows    []map[string]any `json:"rows"`
}

// WriteJSON renders table as an indented JSON document.
func WriteJSON(w io.Writer, table *grades.Table) error {
	doc := jsonDocument{
		Columns: make([]string, len(table.Columns)),
		Rows:    make([]map[string]any, 0, len(table.Rows)),
	}
	for i, c := range table.Columns {
		doc.Columns[i] = c.Key()
	}
	for _, rec := range table.Rows {
		row := make(map[string]any, len(table.Columns))
		for _, c := range table.Columns {
			if v := c.Value(rec); v != nil {
				row[c.Key()] = v
			}
		}
		doc.Rows = append(doc.Rows, row)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}
