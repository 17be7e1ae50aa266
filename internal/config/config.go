package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/a3tai/mcp-grade-extractor/internal/export"
	"github.com/a3tai/mcp-grade-extractor/internal/grades"
	"github.com/a3tai/mcp-grade-extractor/internal/logging"
	"github.com/a3tai/mcp-grade-extractor/internal/ocr"
	"github.com/a3tai/mcp-grade-extractor/internal/pdf"
)

const (
	// Mode constants
	ModeStdio  = "stdio"
	ModeServer = "server"

	// Default values
	DefaultPort        = 8080
	DefaultHost        = "127.0.0.1"
	DefaultLogLevel    = "info"
	DefaultMaxFileSize = 100 * 1024 * 1024 // 100MB
	DefaultLetters     = "ABCDF"
	DefaultFormat      = "xlsx"

	// Directory permissions
	DefaultDirPerm = 0o750

	// EnvPrefix prefixes every environment variable, e.g. GRADES_DIR.
	EnvPrefix = "GRADES"
)

// Config holds all configuration for the grade extractor
type Config struct {
	// Server configuration
	Mode string // "server" or "stdio"
	Host string
	Port int

	// Input and output
	PDFDirectory    string
	OutputDirectory string // empty writes next to each input
	Format          string
	Diagnostics     string // unmatched lines file; empty disables

	// Extraction
	Letters        string
	HeaderKeywords []string
	Tables         bool
	OCR            bool
	OCRLanguages   string

	// Application configuration
	Version     string
	ServerName  string
	LogLevel    string
	MaxFileSize int64 // Maximum PDF file size in bytes

	// Args holds the positional arguments left after flag parsing.
	Args []string
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	currentDir, err := os.Getwd()
	if err != nil {
		currentDir = "."
	}

	return &Config{
		Mode:         ModeStdio, // Default to stdio mode for MCP compatibility
		Host:         DefaultHost,
		Port:         DefaultPort,
		PDFDirectory: currentDir,
		Format:       DefaultFormat,
		Letters:      DefaultLetters,
		OCRLanguages: ocr.DefaultLanguages,
		Version:      "1.0.0",
		ServerName:   "mcp-grade-extractor",
		LogLevel:     DefaultLogLevel,
		MaxFileSize:  DefaultMaxFileSize,
	}
}

// LoadFromFlags parses command line flags and environment variables and
// returns a validated configuration
func LoadFromFlags(opts ...LoadOption) (*Config, error) {
	cfg := DefaultConfig()
	lo := loadOptions{}
	for _, opt := range opts {
		opt(&lo)
	}

	setupViperEnvironment(cfg)
	defineCommandLineFlags(cfg, lo)
	bindFlagsToViper()
	setupUsageMessage()

	pflag.Parse()

	populateConfigFromViper(cfg)
	cfg.Args = pflag.Args()
	if lo.noServerFlags {
		// Server settings from the environment do not apply.
		d := DefaultConfig()
		cfg.Mode, cfg.Host, cfg.Port = d.Mode, d.Host, d.Port
	}

	if cfg.PDFDirectory != "" {
		if expandedPath, err := filepath.Abs(cfg.PDFDirectory); err == nil {
			cfg.PDFDirectory = expandedPath
		}
	}
	if cfg.OutputDirectory != "" {
		if expandedPath, err := filepath.Abs(cfg.OutputDirectory); err == nil {
			cfg.OutputDirectory = expandedPath
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// LoadOption adjusts the flags LoadFromFlags defines.
type LoadOption func(*loadOptions)

type loadOptions struct {
	noServerFlags bool
}

// WithoutServerFlags leaves out --mode, --host and --port for commands that
// never run the MCP server.
func WithoutServerFlags() LoadOption {
	return func(o *loadOptions) { o.noServerFlags = true }
}

// flagKeys lists every setting that can come from a flag or the environment.
var flagKeys = []string{
	"mode", "host", "port", "dir", "outdir", "loglevel", "maxfilesize",
	"letters", "format", "diagnostics", "header-keywords", "tables", "ocr", "ocrlang",
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(cfg *Config) {
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("mode", cfg.Mode)
	viper.SetDefault("host", cfg.Host)
	viper.SetDefault("port", cfg.Port)
	viper.SetDefault("dir", cfg.PDFDirectory)
	viper.SetDefault("outdir", cfg.OutputDirectory)
	viper.SetDefault("loglevel", cfg.LogLevel)
	viper.SetDefault("maxfilesize", cfg.MaxFileSize)
	viper.SetDefault("letters", cfg.Letters)
	viper.SetDefault("format", cfg.Format)
	viper.SetDefault("diagnostics", cfg.Diagnostics)
	viper.SetDefault("header-keywords", cfg.HeaderKeywords)
	viper.SetDefault("tables", cfg.Tables)
	viper.SetDefault("ocr", cfg.OCR)
	viper.SetDefault("ocrlang", cfg.OCRLanguages)
}

// defineCommandLineFlags sets up all command line flags
func defineCommandLineFlags(cfg *Config, opts loadOptions) {
	if !opts.noServerFlags {
		pflag.String("mode", cfg.Mode, "Server mode: 'stdio' for MCP standard I/O, 'server' for HTTP server")
		pflag.String("host", cfg.Host, "Server host address (server mode only)")
		pflag.Int("port", cfg.Port, "Server port (server mode only)")
	}
	pflag.String("dir", cfg.PDFDirectory, "Directory containing grade sheet PDFs")
	pflag.String("outdir", cfg.OutputDirectory, "Directory for extracted tables (default: next to each PDF)")
	pflag.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	pflag.Int64("maxfilesize", cfg.MaxFileSize, "Maximum PDF file size in bytes")
	pflag.String("letters", cfg.Letters, "Accepted letter grades: ABCD or ABCDF")
	pflag.String("format", cfg.Format, "Output format: xlsx, csv or json")
	pflag.String("diagnostics", cfg.Diagnostics, "File receiving lines that were not extracted (empty disables)")
	pflag.StringSlice("header-keywords", cfg.HeaderKeywords, "Extra keywords marking header and title lines")
	pflag.Bool("tables", cfg.Tables, "Read table cells below a recognized header row")
	pflag.Bool("ocr", cfg.OCR, "Recognize scanned pages with Tesseract (requires a build with -tags ocr)")
	pflag.String("ocrlang", cfg.OCRLanguages, "Tesseract languages, '+' separated")
}

// bindFlagsToViper binds command line flags to viper configuration
func bindFlagsToViper() {
	for _, key := range flagKeys {
		if flag := pflag.Lookup(key); flag != nil {
			_ = viper.BindPFlag(key, flag)
		}
	}
}

// setupUsageMessage configures the custom usage message
func setupUsageMessage() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nGrade Extractor - extracts grade tables from PDF grade sheets into spreadsheets\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		for _, key := range flagKeys {
			fmt.Fprintf(os.Stderr, "  %s_%s\n", EnvPrefix, strings.ToUpper(strings.ReplaceAll(key, "-", "_")))
		}
	}
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(cfg *Config) {
	cfg.Mode = viper.GetString("mode")
	cfg.Host = viper.GetString("host")
	cfg.Port = viper.GetInt("port")
	cfg.PDFDirectory = viper.GetString("dir")
	cfg.OutputDirectory = viper.GetString("outdir")
	cfg.LogLevel = viper.GetString("loglevel")
	cfg.MaxFileSize = viper.GetInt64("maxfilesize")
	cfg.Letters = viper.GetString("letters")
	cfg.Format = viper.GetString("format")
	cfg.Diagnostics = viper.GetString("diagnostics")
	cfg.HeaderKeywords = stringList(viper.Get("header-keywords"))
	cfg.Tables = viper.GetBool("tables")
	cfg.OCR = viper.GetBool("ocr")
	cfg.OCRLanguages = viper.GetString("ocrlang")
}

// stringList reads a list setting. Environment values are comma separated;
// keywords may contain spaces.
func stringList(v any) []string {
	var items []string
	switch v := v.(type) {
	case []string:
		items = v
	case string:
		items = strings.Split(v, ",")
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Mode != ModeStdio && c.Mode != ModeServer {
		return errors.New("mode must be either 'stdio' or 'server'")
	}

	// Validate port range (only for server mode)
	if c.Mode == ModeServer && (c.Port < 1 || c.Port > 65535) {
		return errors.New("port must be between 1 and 65535")
	}

	if c.PDFDirectory == "" {
		return errors.New("PDF directory cannot be empty")
	}

	// Check if PDF directory exists, create if it doesn't
	if _, err := os.Stat(c.PDFDirectory); os.IsNotExist(err) {
		if err := os.MkdirAll(c.PDFDirectory, DefaultDirPerm); err != nil {
			return fmt.Errorf("cannot create PDF directory %s: %w", c.PDFDirectory, err)
		}
	} else if err != nil {
		return fmt.Errorf("cannot access PDF directory %s: %w", c.PDFDirectory, err)
	}

	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}

	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w (must be one of: debug, info, warn, error)", err)
	}

	if _, err := grades.ParseLetterSet(c.Letters); err != nil {
		return err
	}

	if _, err := export.ParseFormat(c.Format); err != nil {
		return err
	}

	if c.OCR && strings.TrimSpace(c.OCRLanguages) == "" {
		return errors.New("OCR languages cannot be empty when OCR is enabled")
	}

	return nil
}

// ServiceConfig converts the configuration into PDF service settings. It
// assumes Validate succeeded.
func (c *Config) ServiceConfig() pdf.ServiceConfig {
	letters, _ := grades.ParseLetterSet(c.Letters)
	format, _ := export.ParseFormat(c.Format)

	return pdf.ServiceConfig{
		MaxFileSize:    c.MaxFileSize,
		Directory:      c.PDFDirectory,
		OutputDir:      c.OutputDirectory,
		Letters:        letters,
		Format:         format,
		HeaderKeywords: c.HeaderKeywords,
		Diagnostics:    c.Diagnostics,
		Tables:         c.Tables,
		OCR:            c.OCR,
		OCRLanguages:   c.OCRLanguages,
	}
}

// Address returns the server address as host:port
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return strings.EqualFold(c.LogLevel, "debug")
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{Mode: %s, Host: %s, Port: %d, PDFDirectory: %s, OutputDirectory: %s, "+
		"Format: %s, Letters: %s, OCR: %t, LogLevel: %s, MaxFileSize: %d}",
		c.Mode, c.Host, c.Port, c.PDFDirectory, c.OutputDirectory,
		c.Format, c.Letters, c.OCR, c.LogLevel, c.MaxFileSize)
}

// IsServerMode returns true if the server is running in HTTP server mode
func (c *Config) IsServerMode() bool {
	return c.Mode == ModeServer
}

// IsStdioMode returns true if the server is running in stdio mode
func (c *Config) IsStdioMode() bool {
	return c.Mode == ModeStdio
}
