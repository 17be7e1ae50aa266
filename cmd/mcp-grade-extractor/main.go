package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/a3tai/mcp-grade-extractor/internal/config"
	"github.com/a3tai/mcp-grade-extractor/internal/logging"
	"github.com/a3tai/mcp-grade-extractor/internal/mcp"
	"github.com/a3tai/mcp-grade-extractor/internal/pdf"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

// setupLogging configures logging based on the server mode
func setupLogging(cfg *config.Config) (zerolog.Logger, error) {
	if cfg.IsStdioMode() {
		// stdout carries the MCP protocol; logs go to stderr and stay quiet
		// unless debug is enabled
		var w io.Writer = io.Discard
		if cfg.IsDebug() || os.Getenv("DEBUG") != "" {
			w = os.Stderr
		}
		return logging.New(cfg.LogLevel, w)
	}
	return logging.NewConsole(cfg.LogLevel, os.Stderr)
}

// runServerMode handles server mode execution with signal handling
func runServerMode(ctx context.Context, cancel context.CancelFunc, server *mcp.Server, logger zerolog.Logger) {
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- server.Run(ctx)
	}()

	select {
	case sig := <-signalCh:
		logger.Info().Str("signal", sig.String()).Msg("initiating graceful shutdown")
		cancel()

		if err := <-serverErrCh; err != nil {
			logger.Error().Err(err).Msg("server shutdown with error")
			os.Exit(1)
		}

	case err := <-serverErrCh:
		if err != nil {
			logger.Error().Err(err).Msg("server error")
			os.Exit(1)
		}
	}

	logger.Info().Msg("server stopped successfully")
}

// runStdioMode handles stdio mode execution
func runStdioMode(ctx context.Context, server *mcp.Server, logger zerolog.Logger) {
	// The parent process controls our lifecycle; stop on interrupt or when
	// stdin closes
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("server error")
		os.Exit(1)
	}
}

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			printVersion()
			return
		}
	}

	cfg, err := config.LoadFromFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := setupLogging(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up logging: %v\n", err)
		os.Exit(1)
	}

	// Set version if it was provided during build
	if version != "dev" {
		cfg.Version = version
	}

	logger.Debug().Str("config", cfg.String()).Msg("starting")

	pdfService, err := pdf.NewService(cfg.ServiceConfig(), logger)
	if err != nil {
		logger.Error().Err(err).Msg("failed to create PDF service")
		os.Exit(1)
	}

	server, err := mcp.NewServer(cfg, pdfService, logger)
	if err != nil {
		logger.Error().Err(err).Msg("failed to create MCP server")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.IsServerMode() {
		runServerMode(ctx, cancel, server, logger)
	} else {
		runStdioMode(ctx, server, logger)
	}
}

// printVersion prints version information
func printVersion() {
	fmt.Printf("MCP Grade Extractor\n")
	fmt.Printf("Version: %s\n", version)
	fmt.Printf("Build Time: %s\n", buildTime)
	fmt.Printf("Git Commit: %s\n", gitCommit)
	fmt.Printf("Built with: %s\n", runtime.Version())
}
