package pdf

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/a3tai/mcp-grade-extractor/internal/export"
	"github.com/a3tai/mcp-grade-extractor/internal/grades"
	"github.com/a3tai/mcp-grade-extractor/internal/ocr"
	"github.com/a3tai/mcp-grade-extractor/internal/pdf/security"
)

const (
	// maxReportedDiagnostics bounds the diagnostics returned with a result.
	maxReportedDiagnostics = 50
	// previewRows is the number of records returned with a result.
	previewRows = 5
	// directoryScanLimit bounds the files listed by ServerInfo.
	directoryScanLimit = 100
)

// ServiceConfig holds the settings of a Service.
type ServiceConfig struct {
	MaxFileSize int64
	// Directory confines every path the service touches.
	Directory string
	// OutputDir receives the rendered tables; empty writes next to the input.
	OutputDir string
	Letters   grades.LetterSet
	Format    export.Format
	// HeaderKeywords extend grades.DefaultHeaderKeywords.
	HeaderKeywords []string
	// Diagnostics names the unmatched-lines file; empty disables it. The
	// input's base name is prepended so each PDF keeps its own file, and
	// relative paths are resolved against the output directory.
	Diagnostics string
	// Tables enables table cell extraction for pages under a header row.
	Tables       bool
	OCR          bool
	OCRLanguages string
}

// Service handles grade extraction by orchestrating the PDF components
type Service struct {
	cfg           ServiceConfig
	validator     *Validator
	search        *Search
	pathValidator *security.PathValidator
	logger        zerolog.Logger

	// newOCR opens the OCR engine; replaced in tests.
	newOCR func(languages string) (ocrClient, error)
}

type ocrClient interface {
	ImageReader
	Close() error
}

// NewService creates a new grade extraction service with all components
func NewService(cfg ServiceConfig, logger zerolog.Logger) (*Service, error) {
	pathValidator, err := security.NewPathValidator(cfg.Directory)
	if err != nil {
		return nil, fmt.Errorf("failed to create path validator: %w", err)
	}
	if len(cfg.Letters) == 0 {
		cfg.Letters = grades.LettersABCDF
	}
	if cfg.Format == "" {
		cfg.Format = export.FormatXLSX
	}

	return &Service{
		cfg:           cfg,
		validator:     NewValidator(cfg.MaxFileSize),
		search:        NewSearch(cfg.MaxFileSize),
		pathValidator: pathValidator,
		logger:        logger,
		newOCR: func(languages string) (ocrClient, error) {
			return ocr.New(languages)
		},
	}, nil
}

// Config returns the service settings.
func (s *Service) Config() ServiceConfig {
	return s.cfg
}

// ExtractFile extracts the grade table of a PDF and writes it in the
// requested format. Only an inaccessible or unreadable document is an
// error; a document without grade rows yields grades.OutcomeNoData and no
// output file.
func (s *Service) ExtractFile(ctx context.Context, req GradesExtractFileRequest) (*GradesExtractFileResult, error) {
	if err := s.pathValidator.ValidatePath(req.Path); err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}
	if err := s.validator.validatePath(req.Path); err != nil {
		return nil, err
	}

	format := s.cfg.Format
	if req.Format != "" {
		f, err := export.ParseFormat(req.Format)
		if err != nil {
			return nil, err
		}
		format = f
	}
	letters := s.cfg.Letters
	if req.Letters != "" {
		ls, err := grades.ParseLetterSet(req.Letters)
		if err != nil {
			return nil, err
		}
		letters = ls
	}
	outDir, err := s.outputDir(req)
	if err != nil {
		return nil, err
	}

	doc, err := Open(req.Path, WithTables(s.cfg.Tables))
	if err != nil {
		return nil, err
	}
	defer doc.Close()

	logger := s.logger.With().Str("file", req.Path).Logger()
	ctx = logger.WithContext(ctx)

	sinks := grades.Tee{grades.NewLogSink(logger)}
	var fileSink *grades.FileSink
	if s.cfg.Diagnostics != "" {
		fileSink = grades.NewFileSink(diagnosticsPath(s.cfg.Diagnostics, req.Path, outDir), logger)
		defer fileSink.Close()
		sinks = append(sinks, fileSink)
	}

	opts := []grades.Option{
		grades.WithLetters(letters),
		grades.WithHeaderKeywords(s.cfg.HeaderKeywords...),
		grades.WithSink(sinks),
	}
	recognizer, closeOCR := s.recognizer(req.Path, logger)
	defer closeOCR()
	if recognizer != nil {
		opts = append(opts, grades.WithRecognizer(recognizer))
	}

	res := grades.NewExtractor(opts...).Extract(ctx, doc)

	result := &GradesExtractFileResult{
		Path:            req.Path,
		Format:          format.String(),
		RunID:           res.RunID,
		Pages:           res.Pages,
		Accepted:        res.Accepted,
		Rejected:        res.Rejected,
		Outcome:         res.Outcome,
		Columns:         columnKeys(res.Table.Columns),
		DiagnosticCount: len(res.Diagnostics),
		Diagnostics:     res.Diagnostics,
		OCR:             recognizer != nil,
	}
	if len(result.Diagnostics) > maxReportedDiagnostics {
		result.Diagnostics = result.Diagnostics[:maxReportedDiagnostics]
	}
	if n := len(res.Table.Rows); n > 0 {
		result.Preview = res.Table.Rows[:min(n, previewRows)]
	}
	if fileSink != nil && len(res.Diagnostics) > 0 {
		result.DiagnosticsPath = fileSink.Path()
	}

	switch {
	case res.Outcome == grades.OutcomeNoData:
		result.Message = "no grade rows were found in the document"
	case req.DryRun:
		result.Message = fmt.Sprintf("extracted %d rows (dry run, nothing written)", res.Accepted)
	default:
		outPath := filepath.Join(outDir, export.FileName(req.Path, format))
		if err := export.WriteFile(outPath, format, res.Table); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", outPath, err)
		}
		result.OutputPath = outPath
		result.Message = fmt.Sprintf("extracted %d rows to %s", res.Accepted, outPath)
		if res.Outcome == grades.OutcomePartial {
			result.Message += fmt.Sprintf("; %d rows rejected", res.Rejected)
		}
	}
	return result, nil
}

// outputDir resolves where the rendered table goes.
func (s *Service) outputDir(req GradesExtractFileRequest) (string, error) {
	dir := req.OutputDir
	if dir == "" {
		dir = s.cfg.OutputDir
	}
	if dir == "" {
		return filepath.Dir(req.Path), nil
	}
	if req.OutputDir != "" {
		if err := s.pathValidator.ValidateDirectory(dir); err != nil {
			return "", fmt.Errorf("security validation failed: %w", err)
		}
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("cannot create output directory: %w", err)
	}
	return dir, nil
}

// recognizer opens the OCR engine when enabled. Failing to open it only
// disables recognition.
func (s *Service) recognizer(path string, logger zerolog.Logger) (grades.Recognizer, func()) {
	noop := func() {}
	if !s.cfg.OCR {
		return nil, noop
	}

	client, err := s.newOCR(s.cfg.OCRLanguages)
	if err != nil {
		if errors.Is(err, ocr.ErrOCRNotEnabled) {
			logger.Warn().Msg("OCR requested but not compiled in; scanned pages will be reported as empty")
		} else {
			logger.Warn().Err(err).Msg("OCR unavailable; scanned pages will be reported as empty")
		}
		return nil, noop
	}
	return NewPageImageRecognizer(path, client), func() {
		if err := client.Close(); err != nil {
			logger.Debug().Err(err).Msg("failed to close OCR client")
		}
	}
}

// ValidateFile performs validation on a PDF file
func (s *Service) ValidateFile(req GradesValidateFileRequest) (*GradesValidateFileResult, error) {
	if err := s.pathValidator.ValidatePath(req.Path); err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}
	return s.validator.ValidateFile(req)
}

// SearchDirectory searches for PDF files in a directory
func (s *Service) SearchDirectory(req GradesSearchDirectoryRequest) (*GradesSearchDirectoryResult, error) {
	// If no directory specified, use configured directory
	if req.Directory == "" {
		req.Directory = s.pathValidator.GetConfiguredDirectory()
	}

	if err := s.pathValidator.ValidateDirectory(req.Directory); err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}

	return s.search.SearchDirectory(req)
}

// GetMaxFileSize returns the maximum file size limit
func (s *Service) GetMaxFileSize() int64 {
	return s.cfg.MaxFileSize
}

// ServerInfo returns server information and usage guidance
func (s *Service) ServerInfo(ctx context.Context, _ GradesServerInfoRequest, serverName, version string) (*GradesServerInfoResult, error) {
	dir := s.pathValidator.GetConfiguredDirectory()

	// The directory scan is bounded so a huge tree cannot stall the reply.
	scanCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	resultCh := make(chan []FileInfo, 1)
	go func() {
		res, err := s.search.SearchDirectory(GradesSearchDirectoryRequest{Directory: dir, Limit: directoryScanLimit})
		if err != nil {
			resultCh <- []FileInfo{}
			return
		}
		resultCh <- res.Files
	}()

	directoryContents := []FileInfo{}
	select {
	case files := <-resultCh:
		directoryContents = files
	case <-scanCtx.Done():
	}

	outDir := s.cfg.OutputDir
	if outDir == "" {
		outDir = "(next to each input file)"
	}

	return &GradesServerInfoResult{
		ServerName:        serverName,
		Version:           version,
		DefaultDirectory:  dir,
		OutputDirectory:   outDir,
		MaxFileSize:       s.cfg.MaxFileSize,
		Letters:           s.cfg.Letters.String(),
		Format:            s.cfg.Format.String(),
		OCREnabled:        s.cfg.OCR && ocr.Enabled(),
		AvailableTools:    availableTools(),
		DirectoryContents: directoryContents,
		UsageGuidance:     usageGuidance(s.cfg),
	}, nil
}

// ValidateConfiguration validates the service configuration
func (s *Service) ValidateConfiguration() error {
	if s.cfg.MaxFileSize <= 0 {
		return fmt.Errorf("maxFileSize must be greater than 0")
	}

	if s.cfg.MaxFileSize > 1024*1024*1024 { // 1GB limit
		return fmt.Errorf("maxFileSize cannot exceed 1GB")
	}

	return nil
}

func columnKeys(cols []grades.Column) []string {
	keys := make([]string, len(cols))
	for i, c := range cols {
		keys[i] = c.Key()
	}
	return keys
}

// diagnosticsPath returns the unmatched-lines file for one input, e.g.
// out/k65.unmatched_lines.txt for k65.pdf and unmatched_lines.txt.
func diagnosticsPath(name, input, outDir string) string {
	if !filepath.IsAbs(name) {
		name = filepath.Join(outDir, name)
	}
	stem := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	return filepath.Join(filepath.Dir(name), stem+"."+filepath.Base(name))
}
