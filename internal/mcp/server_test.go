package mcp

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/mcp-grade-extractor/internal/config"
	"github.com/a3tai/mcp-grade-extractor/internal/grades"
	"github.com/a3tai/mcp-grade-extractor/internal/pdf"
	"github.com/a3tai/mcp-grade-extractor/internal/pdf/pdftest"
)

func newTestServer(t *testing.T, dir string) *Server {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.PDFDirectory = dir
	cfg.ServerName = "test-server"
	cfg.Diagnostics = "unmatched_lines.txt"
	require.NoError(t, cfg.Validate())

	pdfService, err := pdf.NewService(cfg.ServiceConfig(), zerolog.Nop())
	require.NoError(t, err)

	server, err := NewServer(cfg, pdfService, zerolog.Nop())
	require.NoError(t, err)
	return server
}

func callTool(args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{Arguments: args},
	}
}

func TestNewServer(t *testing.T) {
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.PDFDirectory = dir

	pdfService, err := pdf.NewService(cfg.ServiceConfig(), zerolog.Nop())
	require.NoError(t, err)

	server, err := NewServer(cfg, pdfService, zerolog.Nop())
	require.NoError(t, err)
	assert.Same(t, cfg, server.config)
	assert.Same(t, pdfService, server.pdfService)
	assert.NotNil(t, server.mcpServer)

	_, err = NewServer(cfg, nil, zerolog.Nop())
	assert.Error(t, err)

	_, err = NewServer(nil, pdfService, zerolog.Nop())
	assert.Error(t, err)
}

func TestServer_HandleGradesExtractFile(t *testing.T) {
	dir := t.TempDir()
	path := pdftest.Write(t, dir, "k65.pdf", pdftest.GradeSheet...)
	server := newTestServer(t, dir)

	result, err := server.handleGradesExtractFile(context.Background(), callTool(map[string]interface{}{
		"path": path,
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	text := extractTextFromResult(result)
	assert.Contains(t, text, "Outcome: partial")
	assert.Contains(t, text, "Accepted rows: 3")
	assert.Contains(t, text, "Rejected rows: 1")
	assert.Contains(t, text, "20210001 Nguyen Van A")
	assert.Contains(t, text, "Page 2: 3 20210003 Le Van C")
	assert.Contains(t, text, filepath.Join(dir, "k65.unmatched_lines.txt"))
	assert.NotContains(t, text, "Page 1: STT", "header lines are not listed")

	assert.FileExists(t, filepath.Join(dir, "k65.xlsx"))
}

func TestServer_HandleGradesExtractFile_Options(t *testing.T) {
	dir := t.TempDir()
	path := pdftest.Write(t, dir, "k65.pdf", pdftest.GradeSheet...)
	server := newTestServer(t, dir)

	result, err := server.handleGradesExtractFile(context.Background(), callTool(map[string]interface{}{
		"path":       path,
		"format":     "csv",
		"output_dir": filepath.Join(dir, "out"),
	}))
	require.NoError(t, err)
	require.False(t, result.IsError, extractTextFromResult(result))
	assert.FileExists(t, filepath.Join(dir, "out", "k65.csv"))

	result, err = server.handleGradesExtractFile(context.Background(), callTool(map[string]interface{}{
		"path":    path,
		"dry_run": true,
		"letters": "ABCD",
	}))
	require.NoError(t, err)
	text := extractTextFromResult(result)
	assert.Contains(t, text, "dry run")
	assert.Contains(t, text, "Rejected rows: 2", "F is not a letter grade in ABCD")
}

func TestServer_HandleGradesExtractFile_Errors(t *testing.T) {
	dir := t.TempDir()
	server := newTestServer(t, dir)

	tests := []struct {
		name string
		args map[string]interface{}
	}{
		{name: "missing path", args: map[string]interface{}{}},
		{name: "missing file", args: map[string]interface{}{"path": filepath.Join(dir, "missing.pdf")}},
		{name: "outside directory", args: map[string]interface{}{"path": "/etc/passwd.pdf"}},
		{name: "bad format", args: map[string]interface{}{
			"path":   pdftest.Write(t, dir, "a.pdf", pdftest.GradeSheet...),
			"format": "ods",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := server.handleGradesExtractFile(context.Background(), callTool(tt.args))
			require.NoError(t, err, "tool errors are reported in the result")
			assert.True(t, result.IsError)
		})
	}
}

func TestServer_HandleGradesExtractFile_NoData(t *testing.T) {
	dir := t.TempDir()
	path := pdftest.Write(t, dir, "cover.pdf", pdftest.Page{Lines: []string{"TRUONG DAI HOC"}})
	server := newTestServer(t, dir)

	result, err := server.handleGradesExtractFile(context.Background(), callTool(map[string]interface{}{
		"path": path,
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Contains(t, extractTextFromResult(result), "Outcome: no_data")
	assert.NoFileExists(t, filepath.Join(dir, "cover.xlsx"))
}

func TestServer_HandleGradesValidateFile(t *testing.T) {
	dir := t.TempDir()
	text := pdftest.Write(t, dir, "k65.pdf", pdftest.GradeSheet...)
	scan := pdftest.Write(t, dir, "scan.pdf", pdftest.Page{Image: true})
	broken := filepath.Join(dir, "broken.pdf")
	require.NoError(t, os.WriteFile(broken, []byte("not a pdf"), 0o600))
	server := newTestServer(t, dir)

	result, err := server.handleGradesValidateFile(context.Background(), callTool(map[string]interface{}{"path": text}))
	require.NoError(t, err)
	assert.Contains(t, extractTextFromResult(result), "is valid and readable")
	assert.Contains(t, extractTextFromResult(result), "Pages: 2 (with text: 2)")

	result, err = server.handleGradesValidateFile(context.Background(), callTool(map[string]interface{}{"path": scan}))
	require.NoError(t, err)
	assert.Contains(t, extractTextFromResult(result), "RECOMMENDATION")

	result, err = server.handleGradesValidateFile(context.Background(), callTool(map[string]interface{}{"path": broken}))
	require.NoError(t, err)
	assert.Contains(t, extractTextFromResult(result), "PDF validation failed")

	result, err = server.handleGradesValidateFile(context.Background(), callTool(map[string]interface{}{}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestServer_HandleGradesSearchDirectory(t *testing.T) {
	dir := t.TempDir()
	pdftest.Write(t, dir, "bang-diem-toan.pdf", pdftest.GradeSheet...)
	pdftest.Write(t, dir, "bang-diem-ly.pdf", pdftest.GradeSheet...)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600))
	server := newTestServer(t, dir)

	tests := []struct {
		name     string
		args     map[string]interface{}
		contains []string
		excludes []string
	}{
		{
			name:     "default directory",
			args:     map[string]interface{}{},
			contains: []string{"Found 2 PDF file(s)", "bang-diem-toan.pdf", "bang-diem-ly.pdf"},
			excludes: []string{"notes.txt"},
		},
		{
			name:     "query",
			args:     map[string]interface{}{"query": "toán"},
			contains: []string{"Found 1 PDF file(s)", "Search query: toán", "bang-diem-toan.pdf"},
		},
		{
			name:     "limit",
			args:     map[string]interface{}{"limit": float64(1)},
			contains: []string{"Found 1 PDF file(s)"},
		},
		{
			name:     "no match",
			args:     map[string]interface{}{"query": "hoa"},
			contains: []string{"No PDF files found", "(searched for: hoa)"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := server.handleGradesSearchDirectory(context.Background(), callTool(tt.args))
			require.NoError(t, err)
			require.False(t, result.IsError)

			text := extractTextFromResult(result)
			for _, s := range tt.contains {
				assert.Contains(t, text, s)
			}
			for _, s := range tt.excludes {
				assert.NotContains(t, text, s)
			}
		})
	}

	result, err := server.handleGradesSearchDirectory(context.Background(), callTool(map[string]interface{}{
		"directory": t.TempDir(),
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError, "directories outside the configured one are refused")
}

func TestServer_HandleGradesServerInfo(t *testing.T) {
	dir := t.TempDir()
	pdftest.Write(t, dir, "k65.pdf", pdftest.GradeSheet...)
	server := newTestServer(t, dir)

	result, err := server.handleGradesServerInfo(context.Background(), callTool(nil))
	require.NoError(t, err)

	text := extractTextFromResult(result)
	assert.Contains(t, text, "test-server")
	assert.Contains(t, text, "Letter Grades: ABCDF")
	assert.Contains(t, text, "Output Format: xlsx")
	assert.Contains(t, text, "k65.pdf")
	for _, tool := range []string{"grades_extract_file", "grades_validate_file", "grades_search_directory", "grades_server_info"} {
		assert.Contains(t, text, tool)
	}
}

func TestFormatGradesExtractFileResult(t *testing.T) {
	server := &Server{}
	final := grades.Score(850)

	text := server.formatGradesExtractFileResult(&pdf.GradesExtractFileResult{
		Path:       "/data/k65.pdf",
		OutputPath: "/data/k65.xlsx",
		Format:     "xlsx",
		Pages:      1,
		Accepted:   1,
		Outcome:    grades.OutcomeComplete,
		Columns:    []string{"sequence", "student_id"},
		Preview: []grades.GradeRecord{
			{Sequence: 1, StudentID: "20210001", FirstMiddleName: "Nguyen Van", LastName: "A", Final: &final, Letter: "B"},
		},
		DiagnosticCount: 3,
		Diagnostics: []grades.Diagnostic{
			{Kind: grades.KindHeader, Page: 1, Raw: "STT MSSV"},
			{Kind: grades.KindUnmatched, Page: 1, Raw: "Ghi chu", Reason: "no known shape"},
		},
		Message: "extracted 1 rows to /data/k65.xlsx",
	})

	assert.Contains(t, text, "✅ extracted 1 rows")
	assert.Contains(t, text, "Output (xlsx): /data/k65.xlsx")
	assert.Contains(t, text, "Columns: sequence, student_id")
	assert.Contains(t, text, "1. 20210001 Nguyen Van A final=8.50 letter=B")
	assert.Contains(t, text, "Page 1: Ghi chu (UNMATCHED: no known shape)")
	assert.Contains(t, text, "... and 1 more")
	assert.NotContains(t, text, "STT MSSV")
}

// Helper function to extract text from a CallToolResult
func extractTextFromResult(result *mcp.CallToolResult) string {
	if result == nil || len(result.Content) == 0 {
		return ""
	}

	for _, content := range result.Content {
		if textContent, ok := content.(mcp.TextContent); ok {
			return textContent.Text
		}
		if textContentPtr, ok := content.(*mcp.TextContent); ok {
			return textContentPtr.Text
		}
	}

	return ""
}
