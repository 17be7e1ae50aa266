package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/mcp-grade-extractor/internal/export"
	"github.com/a3tai/mcp-grade-extractor/internal/grades"
)

// Helper function to reset flags and viper for each test
func resetFlags() {
	pflag.CommandLine = pflag.NewFlagSet(os.Args[0], pflag.ExitOnError)
	viper.Reset()
}

// Helper function to clear environment variables
func clearEnvVars(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"MODE", "HOST", "PORT", "DIR", "OUTDIR", "LOGLEVEL", "MAXFILESIZE", "LETTERS",
		"FORMAT", "DIAGNOSTICS", "HEADER_KEYWORDS", "TABLES", "OCR", "OCRLANG",
	} {
		name := EnvPrefix + "_" + key
		if old, ok := os.LookupEnv(name); ok {
			t.Cleanup(func() { os.Setenv(name, old) })
		}
		os.Unsetenv(name)
	}
}

// loadWithArgs runs LoadFromFlags against the given command line.
func loadWithArgs(t *testing.T, args ...string) (*Config, error) {
	t.Helper()
	originalArgs := os.Args
	t.Cleanup(func() {
		os.Args = originalArgs
		resetFlags()
	})

	resetFlags()
	os.Args = append([]string{"grades"}, args...)
	return LoadFromFlags()
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, ModeStdio, cfg.Mode)
	assert.Equal(t, DefaultHost, cfg.Host)
	assert.Equal(t, DefaultPort, cfg.Port)
	assert.NotEmpty(t, cfg.PDFDirectory)
	assert.Empty(t, cfg.OutputDirectory)
	assert.Equal(t, "xlsx", cfg.Format)
	assert.Equal(t, "ABCDF", cfg.Letters)
	assert.Equal(t, "vie+eng", cfg.OCRLanguages)
	assert.False(t, cfg.OCR)
	assert.False(t, cfg.Tables)
	assert.Equal(t, "mcp-grade-extractor", cfg.ServerName)
	assert.Equal(t, int64(DefaultMaxFileSize), cfg.MaxFileSize)
	assert.NoError(t, cfg.Validate())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "invalid mode", mutate: func(c *Config) { c.Mode = "http" }, wantErr: "mode"},
		{name: "server port", mutate: func(c *Config) { c.Mode = ModeServer; c.Port = 0 }, wantErr: "port"},
		{name: "stdio ignores port", mutate: func(c *Config) { c.Port = 0 }},
		{name: "empty directory", mutate: func(c *Config) { c.PDFDirectory = "" }, wantErr: "PDF directory"},
		{name: "file size", mutate: func(c *Config) { c.MaxFileSize = 0 }, wantErr: "file size"},
		{name: "log level", mutate: func(c *Config) { c.LogLevel = "loud" }, wantErr: "log level"},
		{name: "warning level", mutate: func(c *Config) { c.LogLevel = "warning" }},
		{name: "letters", mutate: func(c *Config) { c.Letters = "ABCDE" }, wantErr: "letter set"},
		{name: "lowercase letters", mutate: func(c *Config) { c.Letters = "abcd" }},
		{name: "format", mutate: func(c *Config) { c.Format = "ods" }, wantErr: "ods"},
		{name: "ocr languages", mutate: func(c *Config) { c.OCR = true; c.OCRLanguages = " " }, wantErr: "OCR languages"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.PDFDirectory = t.TempDir()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfig_ValidateCreatesDirectory(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PDFDirectory = filepath.Join(t.TempDir(), "nested", "sheets")

	require.NoError(t, cfg.Validate())
	assert.DirExists(t, cfg.PDFDirectory)
}

func TestLoadFromFlags_Defaults(t *testing.T) {
	clearEnvVars(t)
	dir := t.TempDir()

	cfg, err := loadWithArgs(t, "--dir", dir)
	require.NoError(t, err)

	assert.Equal(t, ModeStdio, cfg.Mode)
	assert.Equal(t, dir, cfg.PDFDirectory)
	assert.Equal(t, "xlsx", cfg.Format)
	assert.Equal(t, "ABCDF", cfg.Letters)
	assert.Empty(t, cfg.HeaderKeywords)
	assert.Empty(t, cfg.Args)
}

func TestLoadFromFlags_Flags(t *testing.T) {
	clearEnvVars(t)
	dir := t.TempDir()
	out := filepath.Join(dir, "out")

	cfg, err := loadWithArgs(t,
		"--mode", "server",
		"--port", "9090",
		"--dir", dir,
		"--outdir", out,
		"--letters", "ABCD",
		"--format", "csv",
		"--diagnostics", "unmatched_lines.txt",
		"--header-keywords", "Mã lớp,Khoa",
		"--tables",
		"--ocr",
		"--ocrlang", "vie",
		"--loglevel", "debug",
		"k65.pdf", "k66.pdf",
	)
	require.NoError(t, err)

	assert.True(t, cfg.IsServerMode())
	assert.Equal(t, "127.0.0.1:9090", cfg.Address())
	assert.Equal(t, out, cfg.OutputDirectory)
	assert.Equal(t, "ABCD", cfg.Letters)
	assert.Equal(t, "csv", cfg.Format)
	assert.Equal(t, "unmatched_lines.txt", cfg.Diagnostics)
	assert.Equal(t, []string{"Mã lớp", "Khoa"}, cfg.HeaderKeywords)
	assert.True(t, cfg.Tables)
	assert.True(t, cfg.OCR)
	assert.Equal(t, "vie", cfg.OCRLanguages)
	assert.True(t, cfg.IsDebug())
	assert.Equal(t, []string{"k65.pdf", "k66.pdf"}, cfg.Args)
}

func TestLoadFromFlags_Environment(t *testing.T) {
	clearEnvVars(t)
	dir := t.TempDir()
	t.Setenv("GRADES_DIR", dir)
	t.Setenv("GRADES_LETTERS", "ABCD")
	t.Setenv("GRADES_FORMAT", "json")
	t.Setenv("GRADES_HEADER_KEYWORDS", "Mã lớp, Khoa ,")
	t.Setenv("GRADES_OCR", "true")

	cfg, err := loadWithArgs(t)
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.PDFDirectory)
	assert.Equal(t, "ABCD", cfg.Letters)
	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, []string{"Mã lớp", "Khoa"}, cfg.HeaderKeywords)
	assert.True(t, cfg.OCR)
}

func TestLoadFromFlags_FlagOverridesEnvironment(t *testing.T) {
	clearEnvVars(t)
	t.Setenv("GRADES_FORMAT", "json")

	cfg, err := loadWithArgs(t, "--dir", t.TempDir(), "--format", "csv")
	require.NoError(t, err)
	assert.Equal(t, "csv", cfg.Format)
}

func TestLoadFromFlags_Invalid(t *testing.T) {
	clearEnvVars(t)

	_, err := loadWithArgs(t, "--dir", t.TempDir(), "--letters", "XYZ")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestLoadFromFlags_WithoutServerFlags(t *testing.T) {
	clearEnvVars(t)
	t.Setenv(EnvPrefix+"_MODE", "bogus")
	originalArgs := os.Args
	t.Cleanup(func() {
		os.Args = originalArgs
		resetFlags()
	})

	resetFlags()
	os.Args = []string{"grades2xlsx", "--format", "csv", "k65.pdf"}
	cfg, err := LoadFromFlags(WithoutServerFlags())
	require.NoError(t, err, "server settings are ignored")

	for _, name := range []string{"mode", "host", "port"} {
		assert.Nil(t, pflag.Lookup(name), name)
	}
	assert.NotNil(t, pflag.Lookup("format"))
	assert.Equal(t, ModeStdio, cfg.Mode)
	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, "csv", cfg.Format)
	assert.Equal(t, []string{"k65.pdf"}, cfg.Args)
}

func TestConfig_ServiceConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PDFDirectory = "/data/sheets"
	cfg.OutputDirectory = "/data/out"
	cfg.Letters = "abcd"
	cfg.Format = "CSV"
	cfg.HeaderKeywords = []string{"Khoa"}
	cfg.Tables = true

	sc := cfg.ServiceConfig()
	assert.Equal(t, "/data/sheets", sc.Directory)
	assert.Equal(t, "/data/out", sc.OutputDir)
	assert.Equal(t, grades.LettersABCD, sc.Letters)
	assert.Equal(t, export.FormatCSV, sc.Format)
	assert.Equal(t, []string{"Khoa"}, sc.HeaderKeywords)
	assert.True(t, sc.Tables)
	assert.Equal(t, cfg.MaxFileSize, sc.MaxFileSize)
}

func TestConfig_String(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PDFDirectory = "/data/sheets"

	s := cfg.String()
	assert.Contains(t, s, "Mode: stdio")
	assert.Contains(t, s, "PDFDirectory: /data/sheets")
	assert.Contains(t, s, "Letters: ABCDF")
	assert.True(t, cfg.IsStdioMode())
	assert.False(t, cfg.IsServerMode())
}
