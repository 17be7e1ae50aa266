package pdf

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/a3tai/mcp-grade-extractor/internal/grades"
)

// DocumentOption configures a Document.
type DocumentOption func(*Document)

// WithTables makes the document report table cells for pages that belong
// to a table with a recognizable header row.
func WithTables(enabled bool) DocumentOption {
	return func(d *Document) {
		d.tables = enabled
	}
}

// Document is a grades.PageSource over a PDF file. Pages are expected to be
// requested in order; a table header seen on one page carries to the next.
type Document struct {
	path   string
	file   *os.File
	reader *pdf.Reader
	tables bool

	// header is the last table header row seen, carried across pages.
	header []cell
}

// Open opens path as a PDF document. Any failure wraps
// ErrUnreadableDocument.
func Open(path string, opts ...DocumentOption) (*Document, error) {
	f, r, err := openPDF(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnreadableDocument, path, err)
	}

	d := &Document{path: path, file: f, reader: r}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// openPDF guards against the parser panicking on malformed trailers.
func openPDF(path string) (f *os.File, r *pdf.Reader, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			if f != nil {
				f.Close()
			}
			f, r, err = nil, nil, fmt.Errorf("malformed PDF: %v", rec)
		}
	}()
	return pdf.Open(path)
}

// Close releases the underlying file.
func (d *Document) Close() error {
	if d.file == nil {
		return nil
	}
	err := d.file.Close()
	d.file = nil
	return err
}

// Path returns the file the document was opened from.
func (d *Document) Path() string {
	return d.path
}

// NumPages returns the number of pages in the document.
func (d *Document) NumPages() int {
	return d.reader.NumPage()
}

// Page returns the text lines and, when enabled, the table cells of the
// page. A page the parser cannot decode yields an error rather than a
// panic.
func (d *Document) Page(_ context.Context, number int) (page grades.Page, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			page = grades.Page{Number: number}
			err = fmt.Errorf("failed to decode page %d: %v", number, rec)
		}
	}()

	page.Number = number
	p := d.reader.Page(number)
	if p.V.IsNull() {
		return page, nil
	}

	rows, err := p.GetTextByRow()
	if err != nil {
		return page, fmt.Errorf("failed to read text of page %d: %w", number, err)
	}

	spans := rowSpans(rows)
	page.Lines = make([]string, 0, len(spans))
	for _, row := range spans {
		page.Lines = append(page.Lines, strings.Join(cellTexts(row), "  "))
	}

	if d.tables {
		page.Tables = d.pageTable(spans)
	}
	return page, nil
}

// pageTable returns the rows of the page that belong to a grade table: the
// rows from a header row on, or every row when a previous page had a header.
// Data rows are aligned to the header's columns so a blank cell stays in
// place instead of shifting the cells after it.
func (d *Document) pageTable(rows [][]cell) [][][]string {
	start := -1
	if d.header != nil {
		start = 0
	}
	for i, row := range rows {
		if _, ok := grades.LearnLayout(cellTexts(row)); ok {
			start = i
			break
		}
	}
	if start < 0 {
		return nil
	}

	table := make([][]string, 0, len(rows)-start)
	for _, row := range rows[start:] {
		texts := cellTexts(row)
		if _, ok := grades.LearnLayout(texts); ok {
			d.header = row
			table = append(table, texts)
			continue
		}
		table = append(table, alignRow(row, d.header))
	}
	return [][][]string{table}
}

// ImageCount returns the number of image XObjects on a page.
func (d *Document) ImageCount(number int) (count int) {
	defer func() {
		if recover() != nil {
			count = 0
		}
	}()

	p := d.reader.Page(number)
	if p.V.IsNull() {
		return 0
	}
	xObjects := p.V.Key("Resources").Key("XObject")
	if xObjects.IsNull() || xObjects.Kind() != pdf.Dict {
		return 0
	}
	for _, key := range xObjects.Keys() {
		if xObjects.Key(key).Key("Subtype").Name() == "Image" {
			count++
		}
	}
	return count
}
