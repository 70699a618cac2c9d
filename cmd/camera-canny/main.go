package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/ironsheep/canny-pipeline/internal/canny"
	"github.com/ironsheep/canny-pipeline/internal/config"
	"github.com/ironsheep/canny-pipeline/internal/frames"
	"github.com/ironsheep/canny-pipeline/internal/logging"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// statsFileName receives the run summary in the output directory.
const statsFileName = "stats.json"

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("camera-canny %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			config.Usage(os.Stdout, "camera-canny")
			return
		}
	}

	cfg, err := config.Parse(os.Args[1:], os.Getenv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "camera-canny: %v\n\n", err)
		config.Usage(os.Stderr, "camera-canny")
		os.Exit(1)
	}

	logger := logging.NewConsole(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Warn().Msg("interrupted")
			os.Exit(130)
		}
		logger.Fatal().Err(err).Msg("run failed")
	}
}

func run(ctx context.Context, cfg config.Camera, logger zerolog.Logger) error {
	source, err := openSource(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.OutDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}
	if err := config.Save(cfg.OutDir, cfg); err != nil {
		return fmt.Errorf("failed to save run config: %w", err)
	}

	det := canny.New(canny.WithWorkers(cfg.Workers), canny.WithLogger(logger))
	logger.Info().
		Str("version", Version).
		Float64("sigma", cfg.Sigma).
		Float64("tlow", cfg.TLow).
		Float64("thigh", cfg.THigh).
		Int("frames", cfg.NumImages).
		Int("workers", det.Workers()).
		Str("source", sourceName(cfg)).
		Str("out", cfg.OutDir).
		Msg("taking images")

	loop := &frames.Loop{
		Source:         source,
		Detector:       det,
		Params:         cfg.Params(),
		OutDir:         cfg.OutDir,
		WriteDirection: cfg.WriteDirection,
		Logger:         logger,
	}
	sum, err := loop.Run(ctx, cfg.NumImages)
	if saveErr := saveStats(cfg.OutDir, sum); saveErr != nil {
		logger.Warn().Err(saveErr).Msg("failed to save stats")
	}
	if err != nil {
		return err
	}

	logger.Info().
		Dur("cpu_total", sum.Total()).
		Dur("wall", sum.Wall).
		Float64("average_fps", sum.AverageFPS()).
		Msg("FINISHED")
	return nil
}

func openSource(cfg config.Camera) (frames.Source, error) {
	if cfg.Source == "" {
		return frames.NewSyntheticSource(cfg.Width, cfg.Height), nil
	}
	return frames.NewDirSource(cfg.Source, cfg.Width, cfg.Height)
}

func sourceName(cfg config.Camera) string {
	if cfg.Source == "" {
		return "synthetic"
	}
	return cfg.Source
}

func saveStats(dir string, sum frames.Summary) error {
	data, err := json.MarshalIndent(sum, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, statsFileName), data, 0o644)
}
