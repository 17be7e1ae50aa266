package mcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"github.com/a3tai/mcp-grade-extractor/internal/config"
	"github.com/a3tai/mcp-grade-extractor/internal/descriptions"
	"github.com/a3tai/mcp-grade-extractor/internal/grades"
	"github.com/a3tai/mcp-grade-extractor/internal/pdf"
)

const shutdownTimeout = 5 * time.Second

// Server represents the MCP server instance
type Server struct {
	config     *config.Config
	pdfService *pdf.Service
	mcpServer  *server.MCPServer
	logger     zerolog.Logger
}

// NewServer creates a new MCP server instance
func NewServer(cfg *config.Config, pdfService *pdf.Service, logger zerolog.Logger) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if pdfService == nil {
		return nil, errors.New("pdfService cannot be nil")
	}

	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false), // We don't support dynamic tool capabilities
	)

	s := &Server{
		config:     cfg,
		pdfService: pdfService,
		mcpServer:  mcpServer,
		logger:     logger.With().Str("component", "mcp").Logger(),
	}

	s.registerTools()

	return s, nil
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	extractTool := mcp.NewTool(
		"grades_extract_file",
		mcp.WithDescription(descriptions.GetToolDescription("grades_extract_file")),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Full path to the PDF file"),
		),
		mcp.WithString("format",
			mcp.Description("Output format: xlsx, csv or json (uses the server default if empty)"),
			mcp.Enum("xlsx", "csv", "json"),
		),
		mcp.WithString("letters",
			mcp.Description("Accepted letter grades: ABCD or ABCDF"),
			mcp.Enum("ABCD", "ABCDF"),
		),
		mcp.WithString("output_dir",
			mcp.Description("Directory for the output file (defaults to the server setting)"),
		),
		mcp.WithBoolean("dry_run",
			mcp.Description("Extract and report without writing a file"),
		),
	)
	s.mcpServer.AddTool(extractTool, s.handleGradesExtractFile)

	validateTool := mcp.NewTool(
		"grades_validate_file",
		mcp.WithDescription(descriptions.GetToolDescription("grades_validate_file")),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Full path to the PDF file"),
		),
	)
	s.mcpServer.AddTool(validateTool, s.handleGradesValidateFile)

	searchTool := mcp.NewTool(
		"grades_search_directory",
		mcp.WithDescription(descriptions.GetToolDescription("grades_search_directory")),
		mcp.WithString("directory",
			mcp.Description("Directory path to search (uses default if empty)"),
		),
		mcp.WithString("query",
			mcp.Description("Optional words that must appear in the file name"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of files to return"),
		),
	)
	s.mcpServer.AddTool(searchTool, s.handleGradesSearchDirectory)

	serverInfoTool := mcp.NewTool(
		"grades_server_info",
		mcp.WithDescription(descriptions.GetToolDescription("grades_server_info")),
	)
	s.mcpServer.AddTool(serverInfoTool, s.handleGradesServerInfo)
}

// Handler functions
func (s *Server) handleGradesExtractFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	args := request.GetArguments()
	req := pdf.GradesExtractFileRequest{
		Path:      path,
		Format:    stringArg(args, "format"),
		Letters:   stringArg(args, "letters"),
		OutputDir: stringArg(args, "output_dir"),
	}
	if dryRun, ok := args["dry_run"].(bool); ok {
		req.DryRun = dryRun
	}

	result, err := s.pdfService.ExtractFile(ctx, req)
	if err != nil {
		s.logger.Warn().Err(err).Str("file", path).Msg("extraction failed")
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(s.formatGradesExtractFileResult(result)), nil
}

func (s *Server) handleGradesValidateFile(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.pdfService.ValidateFile(pdf.GradesValidateFileRequest{Path: path})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var responseText string
	if result.Valid {
		responseText = fmt.Sprintf("PDF file %s is valid and readable\n", result.Path)
		responseText += fmt.Sprintf("Pages: %d (with text: %d)\n", result.Pages, result.TextPages)
		responseText += fmt.Sprintf("Images: %d\n", result.Images)
		responseText += fmt.Sprintf("Content Type: %s\n", result.ContentType)
		if result.ContentType == "scanned_images" {
			responseText += "\n🔍 RECOMMENDATION: This PDF has no text layer. Enable OCR to extract grades from it.\n"
		}
	} else {
		responseText = fmt.Sprintf("PDF validation failed for %s: %s", result.Path, result.Message)
	}

	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handleGradesSearchDirectory(_ context.Context, request mcp.CallToolRequest) (
	*mcp.CallToolResult, error,
) {
	args := request.GetArguments()

	directory := s.config.PDFDirectory // default
	if dir := stringArg(args, "directory"); dir != "" {
		directory = dir
	}

	req := pdf.GradesSearchDirectoryRequest{
		Directory: directory,
		Query:     stringArg(args, "query"),
	}
	if limit, ok := args["limit"].(float64); ok && limit > 0 {
		req.Limit = int(limit)
	}

	result, err := s.pdfService.SearchDirectory(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var responseText string
	if result.TotalCount == 0 {
		responseText = fmt.Sprintf("No PDF files found in directory: %s", result.Directory)
		if result.SearchQuery != "" {
			responseText += fmt.Sprintf(" (searched for: %s)", result.SearchQuery)
		}
	} else {
		responseText = s.formatGradesSearchDirectoryResult(result)
	}

	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handleGradesServerInfo(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := s.pdfService.ServerInfo(ctx, pdf.GradesServerInfoRequest{}, s.config.ServerName, s.config.Version)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(s.formatGradesServerInfoResult(result)), nil
}

func stringArg(args map[string]any, key string) string {
	if v, ok := args[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

// Formatting methods
func (s *Server) formatGradesExtractFileResult(result *pdf.GradesExtractFileResult) string {
	var icon string
	switch result.Outcome {
	case grades.OutcomeComplete:
		icon = "✅"
	case grades.OutcomePartial:
		icon = "⚠️ "
	default:
		icon = "❌"
	}

	text := fmt.Sprintf("%s %s\n", icon, result.Message)
	text += fmt.Sprintf("File: %s\n", result.Path)
	text += fmt.Sprintf("Outcome: %s\n", result.Outcome)
	text += fmt.Sprintf("Pages: %d\n", result.Pages)
	text += fmt.Sprintf("Accepted rows: %d\n", result.Accepted)
	text += fmt.Sprintf("Rejected rows: %d\n", result.Rejected)
	if result.OutputPath != "" {
		text += fmt.Sprintf("Output (%s): %s\n", result.Format, result.OutputPath)
	}
	if len(result.Columns) > 0 {
		text += fmt.Sprintf("Columns: %s\n", strings.Join(result.Columns, ", "))
	}
	if result.OCR {
		text += "OCR: enabled\n"
	}
	text += fmt.Sprintf("Run ID: %s\n", result.RunID)

	if len(result.Preview) > 0 {
		text += "\nPreview:\n"
		for _, rec := range result.Preview {
			text += fmt.Sprintf("  %d. %s %s", rec.Sequence, rec.StudentID, rec.FullName())
			if rec.Final != nil {
				text += fmt.Sprintf(" final=%s", rec.Final)
			}
			if rec.Letter != "" {
				text += fmt.Sprintf(" letter=%s", rec.Letter)
			}
			text += "\n"
		}
	}

	if result.DiagnosticCount > 0 {
		text += fmt.Sprintf("\nDiagnostics (%d):\n", result.DiagnosticCount)
		for _, d := range result.Diagnostics {
			if d.Kind == grades.KindHeader {
				continue
			}
			text += "  " + d.String()
			if d.Raw != "" && d.Reason != "" {
				text += fmt.Sprintf(" (%s: %s)", d.Kind, d.Reason)
			}
			text += "\n"
		}
		if len(result.Diagnostics) < result.DiagnosticCount {
			text += fmt.Sprintf("  ... and %d more\n", result.DiagnosticCount-len(result.Diagnostics))
		}
		if result.DiagnosticsPath != "" {
			text += fmt.Sprintf("Full list: %s\n", result.DiagnosticsPath)
		}
	}

	return text
}

func (s *Server) formatGradesSearchDirectoryResult(result *pdf.GradesSearchDirectoryResult) string {
	text := fmt.Sprintf("Found %d PDF file(s) in directory: %s\n", result.TotalCount, result.Directory)
	if result.SearchQuery != "" {
		text += fmt.Sprintf("Search query: %s\n", result.SearchQuery)
	}
	text += "\nFiles:\n"

	for i, file := range result.Files {
		text += fmt.Sprintf("%d. %s\n", i+1, file.Name)
		text += fmt.Sprintf("   Path: %s\n", file.Path)
		text += fmt.Sprintf("   Size: %d bytes\n", file.Size)
		text += fmt.Sprintf("   Modified: %s\n", file.ModifiedTime)
		if i < len(result.Files)-1 {
			text += "\n"
		}
	}

	return text
}

func (s *Server) formatGradesServerInfoResult(result *pdf.GradesServerInfoResult) string {
	text := fmt.Sprintf("📋 %s v%s - Server Information\n", result.ServerName, result.Version)
	text += fmt.Sprintf("📁 Default Directory: %s\n", result.DefaultDirectory)
	text += fmt.Sprintf("📤 Output Directory: %s\n", result.OutputDirectory)
	text += fmt.Sprintf("📏 Max File Size: %d MB\n", result.MaxFileSize/(1024*1024))
	text += fmt.Sprintf("🔤 Letter Grades: %s\n", result.Letters)
	text += fmt.Sprintf("📄 Output Format: %s\n", result.Format)
	text += fmt.Sprintf("👁️  OCR: %t\n\n", result.OCREnabled)

	if len(result.DirectoryContents) > 0 {
		text += fmt.Sprintf("📂 Directory Contents (%d PDF files found):\n", len(result.DirectoryContents))
		for i, file := range result.DirectoryContents {
			if i >= 10 { // Limit to first 10 files for readability
				text += fmt.Sprintf("   ... and %d more files\n", len(result.DirectoryContents)-10)
				break
			}
			text += fmt.Sprintf("   %d. %s (%d bytes)\n", i+1, file.Name, file.Size)
		}
		text += "\n"
	} else {
		text += "📂 Directory Contents: No PDF files found in default directory\n\n"
	}

	text += "🛠️  Available Tools:\n"
	for _, tool := range result.AvailableTools {
		text += fmt.Sprintf("\n• %s\n", tool.Name)
		text += fmt.Sprintf("  Description: %s\n", tool.Description)
		text += fmt.Sprintf("  Usage: %s\n", tool.Usage)
		text += fmt.Sprintf("  Parameters: %s\n", tool.Parameters)
	}

	text += "\n" + result.UsageGuidance

	return text
}

// Run starts the MCP server in the configured mode and blocks until ctx is
// done or the transport fails.
func (s *Server) Run(ctx context.Context) error {
	if s.config.IsServerMode() {
		return s.runServerMode(ctx)
	}
	return s.runStdioMode(ctx)
}

// runStdioMode serves MCP over standard input and output
func (s *Server) runStdioMode(ctx context.Context) error {
	s.logger.Debug().
		Str("directory", s.config.PDFDirectory).
		Msg("starting grade extractor MCP server in stdio mode")

	stdio := server.NewStdioServer(s.mcpServer)
	if err := stdio.Listen(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}

// runServerMode serves MCP over HTTP with server-sent events
func (s *Server) runServerMode(ctx context.Context) error {
	addr := s.config.Address()
	sse := server.NewSSEServer(s.mcpServer, server.WithBaseURL("http://"+addr))

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("address", addr).Msg("starting grade extractor MCP server in SSE mode")
		errCh <- sse.Start(addr)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to serve SSE: %w", err)
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := sse.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down SSE server: %w", err)
		}
		s.logger.Info().Msg("SSE server stopped")
		return nil
	}
}
