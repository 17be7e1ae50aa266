// Package grades extracts grade records from the text and tables of grade
// sheet pages and reconciles them into a table with only the columns the
// document actually uses.
package grades

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Page is the raw content a page source supplies for one page. Either
// field may be empty; a scanned page usually has neither.
type Page struct {
	Number int
	// Lines is the page text in reading order.
	Lines []string
	// Tables holds extracted tables as rows of cell strings.
	Tables [][][]string
}

// PageSource supplies pages in order. Page numbers start at 1.
type PageSource interface {
	NumPages() int
	Page(ctx context.Context, number int) (Page, error)
}

// Recognizer turns the rendered image of a page into text. It is only
// consulted for pages without text or tables.
type Recognizer interface {
	Recognize(ctx context.Context, page int) (string, error)
}

// Outcome summarizes a finished extraction for presentation.
type Outcome int

const (
	// OutcomeNoData means no row was accepted.
	OutcomeNoData Outcome = iota
	// OutcomePartial means rows were accepted and others rejected.
	OutcomePartial
	// OutcomeComplete means rows were accepted and none rejected.
	OutcomeComplete
)

// String returns a string representation of the Outcome
func (o Outcome) String() string {
	switch o {
	case OutcomePartial:
		return "partial"
	case OutcomeComplete:
		return "complete"
	default:
		return "no_data"
	}
}

// MarshalText encodes the outcome by name.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// Result is everything one extraction produced.
type Result struct {
	RunID       string       `json:"run_id"`
	Pages       int          `json:"pages"`
	Table       *Table       `json:"table"`
	Diagnostics []Diagnostic `json:"diagnostics"`
	Accepted    int          `json:"accepted"`
	Rejected    int          `json:"rejected"`
	Outcome     Outcome      `json:"outcome"`
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithLetters sets the letter grade enumeration.
func WithLetters(letters LetterSet) Option {
	return func(e *Extractor) {
		if len(letters) > 0 {
			e.letters = letters
		}
	}
}

// WithHeaderKeywords adds header keywords to DefaultHeaderKeywords.
func WithHeaderKeywords(keywords ...string) Option {
	return func(e *Extractor) {
		e.headerKeywords = append(e.headerKeywords, keywords...)
	}
}

// WithRecognizer enables the image-to-text fallback for pages without text.
func WithRecognizer(r Recognizer) Option {
	return func(e *Extractor) {
		e.recognizer = r
	}
}

// WithSink forwards every diagnostic to s as well as to the Result.
func WithSink(s Sink) Option {
	return func(e *Extractor) {
		e.sink = s
	}
}

// Extractor turns pages of a grade sheet into a reconciled table.
// An Extractor is immutable once built and may be reused across documents.
type Extractor struct {
	letters        LetterSet
	headerKeywords []string
	recognizer     Recognizer
	sink           Sink

	classifier *Classifier
	parser     *Parser
}

// NewExtractor creates an extractor with the given options.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{letters: LettersABCDF}
	for _, opt := range opts {
		opt(e)
	}
	e.classifier = NewClassifier(e.headerKeywords...)
	e.parser = NewParser(e.letters)
	return e
}

// Letters returns the configured letter grade enumeration.
func (e *Extractor) Letters() LetterSet {
	return e.letters
}

// Extract processes every page of src in order. Per-page and per-row
// problems become diagnostics; Extract itself cannot fail once the source
// is open. A nil source is treated as a document with zero pages.
func (e *Extractor) Extract(ctx context.Context, src PageSource) *Result {
	runID := uuid.NewString()
	logger := zerolog.Ctx(ctx).With().Str("run_id", runID).Logger()

	collector := &Collector{}
	run := &extraction{
		Extractor: e,
		src:       src,
		out:       Tee{collector, e.sink},
		logger:    logger,
		layout:    DefaultTableLayout(),
		rows:      NewReconciler(),
	}

	pages := 0
	if src != nil {
		pages = src.NumPages()
	}
	for number := 1; number <= pages; number++ {
		run.processPage(ctx, number)
	}

	table := run.rows.Finalize()
	result := &Result{
		RunID:       runID,
		Pages:       pages,
		Table:       table,
		Diagnostics: collector.Diagnostics(),
		Accepted:    len(table.Rows),
		Rejected:    collector.Count(KindRejected),
	}
	switch {
	case result.Accepted == 0:
		result.Outcome = OutcomeNoData
	case result.Rejected > 0:
		result.Outcome = OutcomePartial
	default:
		result.Outcome = OutcomeComplete
	}
	if result.Diagnostics == nil {
		result.Diagnostics = []Diagnostic{}
	}

	logger.Info().
		Int("pages", pages).
		Int("accepted", result.Accepted).
		Int("rejected", result.Rejected).
		Int("diagnostics", len(result.Diagnostics)).
		Str("outcome", result.Outcome.String()).
		Msg("extraction finished")

	return result
}

// extraction is the state of one Extract call.
type extraction struct {
	*Extractor
	src    PageSource
	out    Sink
	logger zerolog.Logger

	// layout is learned from table headers and carries across pages.
	layout TableLayout
	rows   *Reconciler
}

// pageResult buffers one pass over a page so a pass can be discarded.
type pageResult struct {
	records     []GradeRecord
	diagnostics []Diagnostic
}

func (p *pageResult) diagnose(kind Kind, page int, raw, reason string) {
	p.diagnostics = append(p.diagnostics, Diagnostic{Kind: kind, Page: page, Raw: raw, Reason: reason})
}

func (x *extraction) emit(d Diagnostic) {
	x.out.Record(d)
}

func (x *extraction) commit(p pageResult) {
	for _, r := range p.records {
		x.rows.Add(r)
	}
	for _, d := range p.diagnostics {
		x.emit(d)
	}
}

func (x *extraction) processPage(ctx context.Context, number int) {
	page, err := x.src.Page(ctx, number)
	if err != nil {
		x.emit(Diagnostic{Kind: KindPageError, Page: number, Reason: err.Error()})
		return
	}

	lines := page.Lines
	if len(page.Tables) == 0 && !hasText(lines) {
		lines = x.recognize(ctx, number)
		if !hasText(lines) {
			x.emit(Diagnostic{Kind: KindEmptyPage, Page: number, Reason: "no text or tables on page"})
			return
		}
	}

	// Tables win when they yield rows; otherwise the text pass runs so a
	// table split into the wrong cells does not lose the page.
	if len(page.Tables) > 0 {
		tablePass := x.tablePass(number, page.Tables)
		if len(tablePass.records) > 0 || !hasText(lines) {
			x.commit(tablePass)
			x.logPage(number, "tables", len(tablePass.records))
			return
		}
	}

	linePass := x.linePass(number, lines)
	x.commit(linePass)
	x.logPage(number, "text", len(linePass.records))
}

func (x *extraction) logPage(number int, source string, accepted int) {
	x.logger.Debug().
		Int("page", number).
		Str("source", source).
		Int("accepted", accepted).
		Msg("page processed")
}

func (x *extraction) recognize(ctx context.Context, number int) []string {
	if x.recognizer == nil {
		return nil
	}
	text, err := x.recognizer.Recognize(ctx, number)
	if err != nil {
		x.emit(Diagnostic{Kind: KindRecognitionFailed, Page: number, Reason: err.Error()})
		return nil
	}
	return splitLines(text)
}

func (x *extraction) linePass(number int, lines []string) pageResult {
	var p pageResult
	for _, raw := range lines {
		if strings.TrimSpace(raw) == "" {
			continue
		}

		m := x.classifier.ClassifyLine(raw)
		if !m.Matched() {
			kind := KindUnmatched
			if m.Header {
				kind = KindHeader
			}
			p.diagnose(kind, number, raw, m.Reason)
			continue
		}

		rec, err := x.parser.Parse(m)
		if err != nil {
			p.diagnose(KindRejected, number, raw, err.Error())
			continue
		}
		rec.Page = number
		p.records = append(p.records, rec)
	}
	return p
}

func (x *extraction) tablePass(number int, tables [][][]string) pageResult {
	var p pageResult
	for _, table := range tables {
		for _, cells := range table {
			raw := strings.Join(cells, " | ")
			if strings.TrimSpace(strings.Join(cells, "")) == "" {
				continue
			}

			if layout, ok := LearnLayout(cells); ok {
				x.layout = layout
				p.diagnose(KindHeader, number, raw, "table header")
				continue
			}

			m := x.classifier.ClassifyRow(cells, x.layout)
			if !m.Matched() {
				kind := KindUnmatched
				switch {
				case m.Header:
					kind = KindHeader
				case m.Misaligned:
					kind = KindRejected
				}
				p.diagnose(kind, number, raw, m.Reason)
				continue
			}

			rec, err := x.parser.Parse(m)
			if err != nil {
				p.diagnose(KindRejected, number, raw, err.Error())
				continue
			}
			rec.Page = number
			p.records = append(p.records, rec)
		}
	}
	return p
}

func hasText(lines []string) bool {
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			return true
		}
	}
	return false
}

func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.Split(text, "\n")
}
