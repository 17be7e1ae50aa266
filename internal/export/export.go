// Package export renders a reconciled grade table as a spreadsheet, CSV or
// JSON document.
package export

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/a3tai/mcp-grade-extractor/internal/grades"
)

// Format selects the output encoding.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ErrUnknownFormat is returned for an unsupported output format.
var ErrUnknownFormat = errors.New("unknown output format")

// ParseFormat parses a format name. An empty name selects FormatXLSX.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), "."))); f {
	case "":
		return FormatXLSX, nil
	case FormatXLSX, FormatCSV, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// Extension returns the file extension for the format, including the dot.
func (f Format) Extension() string {
	return "." + string(f)
}

// String returns the format name.
func (f Format) String() string {
	return string(f)
}

// Write renders table to w. An empty table is refused with
// grades.ErrNoRows so no header-only document is produced.
func Write(w io.Writer, format Format, table *grades.Table) error {
	if table.Empty() {
		return grades.ErrNoRows
	}

	switch format {
	case FormatXLSX:
		return WriteXLSX(w, table)
	case FormatCSV:
		return WriteCSV(w, table)
	case FormatJSON:
		return WriteJSON(w, table)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, string(format))
	}
}

// FileName derives the output name for an input document: the input's
// base name with its extension replaced, e.g. "k65.pdf" becomes "k65.xlsx".
func FileName(input string, format Format) string {
	base := filepath.Base(input)
	if ext := filepath.Ext(base); ext != "" {
		base = strings.TrimSuffix(base, ext)
	}
	if base == "" || base == "." || base == string(filepath.Separator) {
		base = "grades"
	}
	return base + format.Extension()
}

// WriteFile renders table into path. The file is written to a temporary
// name first and renamed into place, so a failed export leaves no partial
// file behind.
func WriteFile(path string, format Format, table *grades.Table) error {
	if table.Empty() {
		return grades.ErrNoRows
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := Write(tmp, format, table); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move output file into place: %w", err)
	}
	return nil
}

// cellText renders a column value for text formats. Absent values are
// empty.
func cellText(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case grades.Score:
		return v.String()
	case int:
		return strconv.Itoa(v)
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}
