package pdf

import "github.com/a3tai/mcp-grade-extractor/internal/grades"

// FileInfo represents basic file information
type FileInfo struct {
	Path         string `json:"path"`
	Name         string `json:"name"`
	Size         int64  `json:"size"`
	ModifiedTime string `json:"modified_time"`
}

// Request types

// GradesExtractFileRequest represents a request to extract grades from a PDF
type GradesExtractFileRequest struct {
	Path string `json:"path"`
	// Format overrides the configured output format.
	Format string `json:"format,omitempty"`
	// OutputDir overrides the configured output directory.
	OutputDir string `json:"output_dir,omitempty"`
	// Letters overrides the configured letter grade set ("ABCD" or "ABCDF").
	Letters string `json:"letters,omitempty"`
	// DryRun extracts without writing an output file.
	DryRun bool `json:"dry_run,omitempty"`
}

// GradesValidateFileRequest represents a request to validate a PDF file
type GradesValidateFileRequest struct {
	Path string `json:"path"`
}

// GradesSearchDirectoryRequest represents a request to search for grade sheets
type GradesSearchDirectoryRequest struct {
	Directory string `json:"directory"`
	Query     string `json:"query"`
	Limit     int    `json:"limit,omitempty"`
}

// GradesServerInfoRequest represents a request for server information
type GradesServerInfoRequest struct{}

// Result types

// GradesExtractFileResult represents the result of a grade extraction
type GradesExtractFileResult struct {
	Path            string               `json:"path"`
	OutputPath      string               `json:"output_path,omitempty"`
	Format          string               `json:"format"`
	RunID           string               `json:"run_id"`
	Pages           int                  `json:"pages"`
	Accepted        int                  `json:"accepted"`
	Rejected        int                  `json:"rejected"`
	Outcome         grades.Outcome       `json:"outcome"`
	Columns         []string             `json:"columns"`
	Preview         []grades.GradeRecord `json:"preview,omitempty"`
	DiagnosticCount int                  `json:"diagnostic_count"`
	Diagnostics     []grades.Diagnostic  `json:"diagnostics,omitempty"`
	DiagnosticsPath string               `json:"diagnostics_path,omitempty"`
	OCR             bool                 `json:"ocr"`
	Message         string               `json:"message"`
}

// GradesValidateFileResult represents the result of PDF validation
type GradesValidateFileResult struct {
	Valid     bool   `json:"valid"`
	Path      string `json:"path"`
	Pages     int    `json:"pages,omitempty"`
	TextPages int    `json:"text_pages,omitempty"`
	Images    int    `json:"images,omitempty"`
	// ContentType is "text", "scanned_images", "mixed" or "no_content".
	ContentType string `json:"content_type,omitempty"`
	Message     string `json:"message,omitempty"`
}

// GradesSearchDirectoryResult represents the result of a directory search
type GradesSearchDirectoryResult struct {
	Files       []FileInfo `json:"files"`
	TotalCount  int        `json:"total_count"`
	Directory   string     `json:"directory"`
	SearchQuery string     `json:"search_query,omitempty"`
}

// GradesServerInfoResult represents server information and usage guidance
type GradesServerInfoResult struct {
	ServerName        string     `json:"server_name"`
	Version           string     `json:"version"`
	DefaultDirectory  string     `json:"default_directory"`
	OutputDirectory   string     `json:"output_directory"`
	MaxFileSize       int64      `json:"max_file_size"`
	Letters           string     `json:"letters"`
	Format            string     `json:"format"`
	OCREnabled        bool       `json:"ocr_enabled"`
	AvailableTools    []ToolInfo `json:"available_tools"`
	DirectoryContents []FileInfo `json:"directory_contents"`
	UsageGuidance     string     `json:"usage_guidance"`
}

// ToolInfo represents information about an available tool
type ToolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Usage       string `json:"usage"`
	Parameters  string `json:"parameters"`
}
