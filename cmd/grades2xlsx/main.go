package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/a3tai/mcp-grade-extractor/internal/config"
	"github.com/a3tai/mcp-grade-extractor/internal/grades"
	"github.com/a3tai/mcp-grade-extractor/internal/logging"
	"github.com/a3tai/mcp-grade-extractor/internal/pdf"
)

// Exit codes
const (
	exitOK       = 0
	exitFailure  = 1
	exitNoData   = 2
	exitBadUsage = 64
)

var (
	reportJSON = pflag.Bool("json", false, "Print the extraction results as JSON")
	dryRun     = pflag.Bool("dry-run", false, "Extract and report without writing output files")
)

func main() {
	cfg, err := config.LoadFromFlags(config.WithoutServerFlags())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitBadUsage)
	}
	if len(cfg.Args) == 0 {
		fmt.Fprintf(os.Stderr, "Error: PDF file path required\n\n")
		printUsage()
		os.Exit(exitBadUsage)
	}

	logger, err := logging.NewConsole(cfg.LogLevel, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitBadUsage)
	}

	os.Exit(run(context.Background(), cfg, cfg.Args, logger, os.Stdout))
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage: grades2xlsx [options] <file.pdf>...\n\n")
	fmt.Fprintf(os.Stderr, "Converts PDF grade sheets into spreadsheets.\n")
	fmt.Fprintf(os.Stderr, "Exit status is %d when a file cannot be read and %d when no grade rows were found.\n",
		exitFailure, exitNoData)
	fmt.Fprintf(os.Stderr, "Run with -h for all options.\n")
}

// fileReport is the per-file entry of the JSON report.
type fileReport struct {
	Path   string                       `json:"path"`
	Result *pdf.GradesExtractFileResult `json:"result,omitempty"`
	Error  string                       `json:"error,omitempty"`
}

// run converts every file and returns the process exit code. A hard
// failure outranks a document without data.
func run(ctx context.Context, cfg *config.Config, files []string, logger zerolog.Logger, out io.Writer) int {
	code := exitOK
	services := map[string]*pdf.Service{}
	reports := make([]fileReport, 0, len(files))

	for _, file := range files {
		report := fileReport{Path: file}
		result, err := extract(ctx, cfg, services, file, logger)
		if err != nil {
			report.Error = err.Error()
			code = exitFailure
			if !*reportJSON {
				fmt.Fprintf(out, "❌ %s: %v\n", file, err)
			}
			reports = append(reports, report)
			continue
		}

		report.Result = result
		if result.Outcome == grades.OutcomeNoData && code == exitOK {
			code = exitNoData
		}
		if !*reportJSON {
			printResult(out, file, result)
		}
		reports = append(reports, report)
	}

	if *reportJSON {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(reports); err != nil {
			logger.Error().Err(err).Msg("failed to write report")
			return exitFailure
		}
	}
	return code
}

// extract runs one file through a service confined to the file's directory.
func extract(
	ctx context.Context, cfg *config.Config, services map[string]*pdf.Service, file string, logger zerolog.Logger,
) (*pdf.GradesExtractFileResult, error) {
	path, err := filepath.Abs(file)
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(path)
	service, ok := services[dir]
	if !ok {
		sc := cfg.ServiceConfig()
		sc.Directory = dir
		service, err = pdf.NewService(sc, logger)
		if err != nil {
			return nil, err
		}
		services[dir] = service
	}

	return service.ExtractFile(ctx, pdf.GradesExtractFileRequest{Path: path, DryRun: *dryRun})
}

func printResult(out io.Writer, file string, result *pdf.GradesExtractFileResult) {
	switch result.Outcome {
	case grades.OutcomeComplete:
		fmt.Fprintf(out, "✅ %s: %s\n", file, result.Message)
	case grades.OutcomePartial:
		fmt.Fprintf(out, "⚠️  %s: %s\n", file, result.Message)
	default:
		fmt.Fprintf(out, "❌ %s: %s\n", file, result.Message)
	}
	if result.DiagnosticsPath != "" {
		fmt.Fprintf(out, "   unmatched lines: %s\n", result.DiagnosticsPath)
	}
}
