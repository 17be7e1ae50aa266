package grades

import (
	"fmt"
	"os"
	"sync"

	"github.com/rs/zerolog"
)

// Kind classifies a diagnostic event.
type Kind int

const (
	// KindUnmatched is a line or row that matched no known shape.
	KindUnmatched Kind = iota
	// KindHeader is a header, title or total line.
	KindHeader
	// KindRejected is a row that matched a shape but failed validation.
	KindRejected
	// KindEmptyPage is a page without text or tables.
	KindEmptyPage
	// KindPageError is a page the source could not read.
	KindPageError
	// KindRecognitionFailed is a failed image-to-text fallback.
	KindRecognitionFailed
)

// String returns a string representation of the Kind
func (k Kind) String() string {
	switch k {
	case KindUnmatched:
		return "UNMATCHED"
	case KindHeader:
		return "HEADER"
	case KindRejected:
		return "REJECTED"
	case KindEmptyPage:
		return "EMPTY_PAGE"
	case KindPageError:
		return "PAGE_ERROR"
	case KindRecognitionFailed:
		return "RECOGNITION_FAILED"
	default:
		return "UNKNOWN"
	}
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Diagnostic describes one line, row or page that did not produce a record.
type Diagnostic struct {
	Kind   Kind   `json:"kind"`
	Page   int    `json:"page"`
	Raw    string `json:"raw,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// String renders the diagnostic in the "Page N: raw" form operators see.
func (d Diagnostic) String() string {
	if d.Raw == "" {
		return fmt.Sprintf("Page %d: [%s] %s", d.Page, d.Kind, d.Reason)
	}
	return fmt.Sprintf("Page %d: %s", d.Page, d.Raw)
}

// Sink receives diagnostics. Implementations must not block extraction and
// must swallow their own failures.
type Sink interface {
	Record(d Diagnostic)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(d Diagnostic)

// Record calls f(d).
func (f SinkFunc) Record(d Diagnostic) {
	f(d)
}

// Tee fans diagnostics out to several sinks.
type Tee []Sink

// Record forwards d to every non-nil sink.
func (t Tee) Record(d Diagnostic) {
	for _, s := range t {
		if s != nil {
			s.Record(d)
		}
	}
}

// Collector keeps diagnostics in memory.
type Collector struct {
	items []Diagnostic
}

// Record appends d.
func (c *Collector) Record(d Diagnostic) {
	c.items = append(c.items, d)
}

// Diagnostics returns everything recorded so far.
func (c *Collector) Diagnostics() []Diagnostic {
	return c.items
}

// Count returns how many diagnostics of kind k were recorded.
func (c *Collector) Count(k Kind) int {
	n := 0
	for _, d := range c.items {
		if d.Kind == k {
			n++
		}
	}
	return n
}

// logSink writes diagnostics to a zerolog logger.
type logSink struct {
	logger zerolog.Logger
}

// NewLogSink returns a sink that logs header lines at debug level and
// everything else at warn level.
func NewLogSink(logger zerolog.Logger) Sink {
	return logSink{logger: logger}
}

func (s logSink) Record(d Diagnostic) {
	ev := s.logger.Warn()
	if d.Kind == KindHeader {
		ev = s.logger.Debug()
	}
	ev.Str("kind", d.Kind.String()).
		Int("page", d.Page).
		Str("raw", d.Raw).
		Str("reason", d.Reason).
		Msg("line not extracted")
}

// FileSink appends diagnostics to a text file, one "Page N: raw" entry per
// line. The file is created on the first diagnostic, so clean documents
// leave nothing behind. Write failures are logged once and then ignored.
type FileSink struct {
	path   string
	logger zerolog.Logger

	mu     sync.Mutex
	file   *os.File
	failed bool
}

// NewFileSink creates a sink writing to path.
func NewFileSink(path string, logger zerolog.Logger) *FileSink {
	return &FileSink{path: path, logger: logger}
}

// Path returns the file the sink writes to.
func (s *FileSink) Path() string {
	return s.path
}

// Record appends d to the file.
func (s *FileSink) Record(d Diagnostic) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failed {
		return
	}
	if s.file == nil {
		f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
		if err != nil {
			s.fail(err)
			return
		}
		s.file = f
	}
	if _, err := fmt.Fprintln(s.file, d.String()); err != nil {
		s.fail(err)
	}
}

func (s *FileSink) fail(err error) {
	s.failed = true
	s.logger.Error().Err(err).Str("path", s.path).Msg("diagnostics file disabled")
}

// Close closes the underlying file, if it was opened. Later records are
// dropped.
func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.failed = true
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}
