package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ironsheep/canny-pipeline/internal/canny"
	"github.com/ironsheep/canny-pipeline/internal/config"
	"github.com/ironsheep/canny-pipeline/internal/logging"
	"github.com/ironsheep/canny-pipeline/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Handle --version and -v flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("canny-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			fmt.Println("canny-mcp - MCP server for Canny edge detection")
			fmt.Println()
			fmt.Println("Usage: canny-mcp [options]")
			fmt.Println()
			fmt.Println("Options:")
			fmt.Println("  --version, -v    Print version information")
			fmt.Println("  --help, -h       Print this help message")
			fmt.Println()
			fmt.Println("Environment variables:")
			fmt.Printf("  %s=debug      Log level (debug, info, warn, error)\n", logging.EnvLevel)
			fmt.Printf("  %s=N             Workers per pipeline stage (default: all CPUs)\n", config.EnvWorkers)
			fmt.Println()
			fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
			return
		}
	}

	// Logs go to stderr; stdout is for MCP protocol
	logger := logging.FromEnv()

	workers, err := config.WorkersFromEnv(os.Getenv)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	det := canny.New(canny.WithWorkers(workers), canny.WithLogger(logger))
	logger.Debug().
		Str("version", Version).
		Str("built", BuildTime).
		Str("commit", GitCommit).
		Int("workers", det.Workers()).
		Msg("canny MCP server starting")

	srv := server.New(server.WithDetector(det), server.WithLogger(logger))
	if err := srv.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal().Err(err).Msg("server error")
	}
}
