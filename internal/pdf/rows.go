package pdf

import (
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

const (
	// wordGap is the horizontal gap, relative to the font size, above which
	// two text runs are separate words.
	wordGap = 0.2
	// cellGap is the gap above which two runs belong to different cells.
	cellGap = 1.5
	// defaultFontSize is assumed for runs without a usable font size.
	defaultFontSize = 10.0
)

// cell is a run of text that belongs to one table cell, with its
// horizontal extent on the page.
type cell struct {
	text   string
	x0, x1 float64
}

// rowSpans turns the text rows of a page into cells, top row first. Runs
// are ordered left to right and merged into words and cells by the size of
// the gaps between them.
func rowSpans(rows pdf.Rows) [][]cell {
	sorted := make(pdf.Rows, 0, len(rows))
	for _, r := range rows {
		if r != nil {
			sorted = append(sorted, r)
		}
	}
	// PDF coordinates grow upwards.
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Position > sorted[j].Position
	})

	out := make([][]cell, 0, len(sorted))
	for _, r := range sorted {
		if cells := splitSpans(r.Content); len(cells) > 0 {
			out = append(out, cells)
		}
	}
	return out
}

func cellTexts(row []cell) []string {
	if len(row) == 0 {
		return nil
	}
	texts := make([]string, len(row))
	for i, c := range row {
		texts[i] = c.text
	}
	return texts
}

func splitSpans(texts pdf.TextHorizontal) []cell {
	runs := make([]pdf.Text, len(texts))
	copy(runs, texts)
	sort.SliceStable(runs, func(i, j int) bool { return runs[i].X < runs[j].X })

	var (
		cells   []cell
		b       strings.Builder
		x0      float64
		prevEnd float64
		started bool
		pending bool
	)
	flush := func() {
		if s := strings.Join(strings.Fields(b.String()), " "); s != "" {
			cells = append(cells, cell{text: s, x0: x0, x1: prevEnd})
		}
		b.Reset()
	}

	for _, t := range runs {
		if strings.TrimSpace(t.S) == "" {
			pending = started
			continue
		}

		size := t.FontSize
		if size <= 0 {
			size = defaultFontSize
		}
		if started {
			gap := t.X - prevEnd
			switch {
			case gap > cellGap*size:
				flush()
				x0 = t.X
			case gap > wordGap*size || pending:
				b.WriteByte(' ')
			}
		} else {
			x0 = t.X
		}
		b.WriteString(t.S)

		width := t.W
		if width <= 0 {
			width = float64(utf8.RuneCountInString(t.S)) * size * 0.5
		}
		prevEnd = t.X + width
		started = true
		pending = false
	}
	flush()
	return cells
}

// alignRow places the cells of a data row under the header columns they
// overlap most, or under the nearest header when they overlap none. The
// result has one entry per header column; columns without text are "".
func alignRow(row, header []cell) []string {
	out := make([]string, len(header))
	for _, c := range row {
		col := nearestColumn(c, header)
		if out[col] != "" {
			out[col] += " "
		}
		out[col] += c.text
	}
	return out
}

func nearestColumn(c cell, header []cell) int {
	best, bestOverlap := -1, 0.0
	for i, h := range header {
		if overlap := math.Min(c.x1, h.x1) - math.Max(c.x0, h.x0); overlap > bestOverlap {
			best, bestOverlap = i, overlap
		}
	}
	if best >= 0 {
		return best
	}

	mid := (c.x0 + c.x1) / 2
	best, bestDist := 0, math.Inf(1)
	for i, h := range header {
		if d := math.Abs(mid - (h.x0+h.x1)/2); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}
