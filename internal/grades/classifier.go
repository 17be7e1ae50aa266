package grades

import (
	"fmt"
	"regexp"
	"strings"
)

// Shape identifies the column layout a row was recognized under.
type Shape int

const (
	ShapeUnknown Shape = iota
	ShapeFull
	ShapeNoPractical
	ShapeMinimal
	ShapeTable
)

// String returns a string representation of the Shape
func (s Shape) String() string {
	switch s {
	case ShapeFull:
		return "full"
	case ShapeNoPractical:
		return "no_practical"
	case ShapeMinimal:
		return "minimal"
	case ShapeTable:
		return "table"
	default:
		return "unknown"
	}
}

// DefaultHeaderKeywords mark title and header lines of a grade sheet.
// Matching ignores case and diacritics and works on whole words.
var DefaultHeaderKeywords = []string{
	"STT",
	"MSSV",
	"Mã số sinh viên",
	"Mã sinh viên",
	"Mã SV",
	"Họ và tên",
	"Họ tên",
	"Họ đệm",
	"Bảng điểm",
	"Tổng cộng",
	"Giảng viên",
	"Môn học",
	"Học kỳ",
	"Lớp học phần",
	"Page",
}

// totalKeywords mark summary rows at the bottom of extracted tables.
var totalKeywords = []string{"Tổng cộng", "Tổng số", "Total"}

// minTableCells is the fewest filled cells a table row needs: sequence, ID, name
// and one score.
const minTableCells = 4

// Match is the classifier's output for one line or table row. Every field
// holds the raw captured text; fields the shape does not carry stay empty.
type Match struct {
	Shape Shape
	// Header is set when the input was rejected as a header, title or
	// total row rather than for failing every shape.
	Header bool
	// Misaligned is set for a table row whose cells cannot be mapped onto
	// the learned header, so its values would land in the wrong columns.
	Misaligned bool
	// Reason explains why an unmatched input was rejected.
	Reason string

	Sequence       string
	StudentID      string
	Name           string
	LastName       string
	Midterm        string
	Periodic       string
	Practical      string
	Final          string
	Average        string
	Letter         string
	Classification string
	Note           string
	// Tail is the free text after the scores of a text line. The parser
	// splits it into classification and note.
	Tail string
}

// Matched reports whether the input was recognized as a grade row.
func (m Match) Matched() bool {
	return m.Shape != ShapeUnknown
}

const (
	scorePattern  = `\d{1,2}[.,]\d{1,2}`
	markerPattern = `(?:V\s+)?`
	linePrefix    = `^(?P<seq>\d+)\s+(?P<id>\d+)\s+(?P<name>\D+?)\s+`
	// letterPattern takes a whole grade-like token, so "B+" or "AB" reach
	// letter validation instead of becoming a note.
	letterPattern = `(?P<letter>\pL[+-]?|[A-Z]{2}[+-]?)`
	lineSuffix    = `(?:\s+` + letterPattern + `)?(?:\s+(?P<tail>.*))?$`
)

func scoreGroup(name string) string {
	return `(?P<` + name + `>` + scorePattern + `)`
}

// lineMatcher recognizes one shape of text line.
type lineMatcher struct {
	shape Shape
	re    *regexp.Regexp
}

func newLineMatcher(shape Shape, body string) lineMatcher {
	return lineMatcher{shape: shape, re: regexp.MustCompile(linePrefix + body)}
}

func (m lineMatcher) match(line string) (Match, bool) {
	sub := m.re.FindStringSubmatch(line)
	if sub == nil {
		return Match{}, false
	}

	group := func(name string) string {
		if i := m.re.SubexpIndex(name); i >= 0 {
			return strings.TrimSpace(sub[i])
		}
		return ""
	}

	return Match{
		Shape:     m.shape,
		Sequence:  group("seq"),
		StudentID: group("id"),
		Name:      group("name"),
		Midterm:   group("mid"),
		Periodic:  group("periodic"),
		Practical: group("practical"),
		Final:     group("final"),
		Average:   group("avg"),
		Letter:    group("letter"),
		Tail:      group("tail"),
	}, true
}

// lineMatchers lists the shapes from most to fewest columns. Order is
// significant: a looser shape can match a subset of a fuller line.
var lineMatchers = []lineMatcher{
	newLineMatcher(ShapeFull,
		scoreGroup("mid")+`\s+`+scoreGroup("periodic")+`\s+`+markerPattern+
			scoreGroup("practical")+`\s+`+scoreGroup("final")+
			`(?:\s+`+scoreGroup("avg")+`)?`+lineSuffix),
	newLineMatcher(ShapeNoPractical,
		scoreGroup("mid")+`\s+`+scoreGroup("periodic")+`\s+`+markerPattern+
			scoreGroup("final")+
			`(?:\s+`+scoreGroup("avg")+`)?`+lineSuffix),
	newLineMatcher(ShapeMinimal,
		markerPattern+scoreGroup("final")+
			`(?:\s+`+scoreGroup("avg")+`)?`+
			`\s+`+letterPattern+`(?:\s+(?P<tail>.*))?$`),
}

// Classifier decides whether a line or table row is a grade record and
// which shape it has. It holds no per-document state.
type Classifier struct {
	headers keywordSet
	totals  keywordSet
}

// NewClassifier creates a classifier that treats DefaultHeaderKeywords and
// any extra keywords as header markers.
func NewClassifier(extraHeaderKeywords ...string) *Classifier {
	keywords := append(append([]string{}, DefaultHeaderKeywords...), extraHeaderKeywords...)
	return &Classifier{
		headers: newKeywordSet(keywords...),
		totals:  newKeywordSet(append(keywords, totalKeywords...)...),
	}
}

// ClassifyLine matches one line of page text against the known shapes,
// most specific first. Header keywords only mark lines no shape accepts,
// so a note mentioning "học kỳ" does not hide a grade row.
func (c *Classifier) ClassifyLine(line string) Match {
	line = normalizeText(line)
	if line == "" {
		return Match{Reason: "blank line"}
	}

	for _, m := range lineMatchers {
		if match, ok := m.match(line); ok {
			return match
		}
	}

	if c.headers.match(line) {
		return Match{Header: true, Reason: "header line"}
	}
	return Match{Reason: "no known shape"}
}

// ClassifyRow maps the cells of an extracted table row through layout.
func (c *Classifier) ClassifyRow(cells []string, layout TableLayout) Match {
	normalized := make([]string, len(cells))
	for i, cell := range cells {
		normalized[i] = normalizeText(cell)
	}
	cells = normalized

	if len(cells) == 0 || cells[0] == "" {
		return Match{Reason: "empty first cell"}
	}
	if c.totals.match(layout.cell(cells, ColumnStudentID)) || c.totals.match(layout.cell(cells, ColumnFirstMiddleName)) {
		return Match{Header: true, Reason: "header or total row"}
	}
	// Rows aligned to a header carry blank cells, so only filled ones count.
	if filledCells(cells) < minTableCells {
		return Match{Reason: "too few cells"}
	}
	if layout.width > 0 && len(cells) != layout.width {
		return Match{Misaligned: true, Reason: fmt.Sprintf("%d cells where the table header has %d", len(cells), layout.width)}
	}

	return Match{
		Shape:          ShapeTable,
		Sequence:       layout.cell(cells, ColumnSequence),
		StudentID:      layout.cell(cells, ColumnStudentID),
		Name:           layout.cell(cells, ColumnFirstMiddleName),
		LastName:       layout.cell(cells, ColumnLastName),
		Midterm:        layout.cell(cells, ColumnMidterm),
		Periodic:       layout.cell(cells, ColumnPeriodic),
		Practical:      layout.cell(cells, ColumnPractical),
		Final:          layout.cell(cells, ColumnFinal),
		Average:        layout.cell(cells, ColumnAverage),
		Letter:         layout.cell(cells, ColumnLetter),
		Classification: layout.cell(cells, ColumnClassification),
		Note:           layout.cell(cells, ColumnNote),
	}
}

func filledCells(cells []string) int {
	n := 0
	for _, c := range cells {
		if c != "" {
			n++
		}
	}
	return n
}
