// Package config assembles the camera tool's run configuration from
// defaults, an optional YAML file, environment variables, flags and the
// positional arguments, in that order of increasing precedence.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ironsheep/canny-pipeline/internal/canny"
	"github.com/ironsheep/canny-pipeline/internal/frames"
	"github.com/ironsheep/canny-pipeline/internal/logging"
)

// EnvWorkers names the environment variable holding the worker count.
const EnvWorkers = "CANNY_WORKERS"

// RunFileName is the name of the configuration record written to the output
// directory.
const RunFileName = "run.yaml"

// ErrUsage reports a malformed command line.
var ErrUsage = errors.New("usage")

// Camera is the configuration of one camera-canny run.
type Camera struct {
	Sigma float64 `yaml:"sigma"`
	TLow  float64 `yaml:"tlow"`
	THigh float64 `yaml:"thigh"`

	// NumImages is the number of frames to process.
	NumImages int `yaml:"num_images"`

	// WriteDirection also writes each frame's direction raster.
	WriteDirection bool `yaml:"write_direction"`

	// Source is a directory of frames. Empty selects the synthetic source.
	Source string `yaml:"source,omitempty"`

	// OutDir receives the output files.
	OutDir string `yaml:"out_dir"`

	// Width and Height are the frame size; frames from Source are fitted to
	// it.
	Width  int `yaml:"width"`
	Height int `yaml:"height"`

	// Workers per stage; 0 uses every CPU.
	Workers int `yaml:"workers"`

	LogLevel string `yaml:"log_level"`
}

// Default returns the configuration used before any file, variable or flag
// is applied.
func Default() Camera {
	return Camera{
		OutDir:   ".",
		Width:    frames.DefaultCols,
		Height:   frames.DefaultRows,
		LogLevel: "info",
	}
}

// Params returns the detection parameters.
func (c Camera) Params() canny.Params {
	return canny.Params{Sigma: c.Sigma, TLow: c.TLow, THigh: c.THigh}
}

// Validate checks the configuration.
func (c Camera) Validate() error {
	if err := c.Params().Validate(); err != nil {
		return err
	}
	if c.NumImages <= 0 {
		return fmt.Errorf("%w: numimages must be positive, got %d", canny.ErrInvalidParameter, c.NumImages)
	}
	if c.Width < 0 || c.Height < 0 {
		return fmt.Errorf("%w: frame size must not be negative, got %dx%d", canny.ErrInvalidParameter, c.Width, c.Height)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must not be negative, got %d", canny.ErrInvalidParameter, c.Workers)
	}
	return nil
}

// Load reads a YAML configuration file on top of Default.
func Load(path string) (Camera, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// Save writes cfg as run.yaml into dir.
func Save(dir string, cfg Camera) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, RunFileName), data, 0o644)
}

// WorkersFromEnv reads CANNY_WORKERS. Unset means 0.
func WorkersFromEnv(getenv func(string) string) (int, error) {
	v := strings.TrimSpace(getenv(EnvWorkers))
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer, got %q", EnvWorkers, v)
	}
	return n, nil
}

// Parse builds a Camera from command-line arguments (without the program
// name):
//
//	[flags] sigma tlow thigh numimages [writedirim]
//
// Any fifth positional argument turns on direction output. The positional
// arguments may be omitted when -config supplies them. The result is
// validated.
func Parse(args []string, getenv func(string) string) (Camera, error) {
	fs := flag.NewFlagSet("camera-canny", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var (
		configPath = fs.String("config", "", "YAML run configuration")
		source     = fs.String("source", "", "directory of input frames (default: synthetic)")
		outDir     = fs.String("out", ".", "output directory")
		width      = fs.Int("width", frames.DefaultCols, "frame width")
		height     = fs.Int("height", frames.DefaultRows, "frame height")
		workers    = fs.Int("workers", 0, "workers per stage (default: all CPUs)")
		logLevel   = fs.String("log-level", "info", "log level")
	)
	if err := fs.Parse(args); err != nil {
		return Camera{}, fmt.Errorf("%w: %v", ErrUsage, err)
	}

	cfg := Default()
	if *configPath != "" {
		var err error
		if cfg, err = Load(*configPath); err != nil {
			return Camera{}, err
		}
	}

	n, err := WorkersFromEnv(getenv)
	if err != nil {
		return Camera{}, err
	}
	if n > 0 {
		cfg.Workers = n
	}
	if lvl := getenv(logging.EnvLevel); lvl != "" {
		cfg.LogLevel = lvl
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "source":
			cfg.Source = *source
		case "out":
			cfg.OutDir = *outDir
		case "width":
			cfg.Width = *width
		case "height":
			cfg.Height = *height
		case "workers":
			cfg.Workers = *workers
		case "log-level":
			cfg.LogLevel = *logLevel
		}
	})

	if err := applyPositional(&cfg, fs.Args(), *configPath != ""); err != nil {
		return Camera{}, err
	}
	return cfg, cfg.Validate()
}

func applyPositional(cfg *Camera, rest []string, optional bool) error {
	switch {
	case len(rest) == 0 && optional:
		return nil
	case len(rest) < 4 || len(rest) > 5:
		return fmt.Errorf("%w: want sigma tlow thigh numimages [writedirim], got %d arguments", ErrUsage, len(rest))
	}

	floats := []*float64{&cfg.Sigma, &cfg.TLow, &cfg.THigh}
	names := []string{"sigma", "tlow", "thigh"}
	for i, dst := range floats {
		v, err := strconv.ParseFloat(rest[i], 64)
		if err != nil {
			return fmt.Errorf("%w: %s: %q is not a number", ErrUsage, names[i], rest[i])
		}
		*dst = v
	}
	n, err := strconv.Atoi(rest[3])
	if err != nil {
		return fmt.Errorf("%w: numimages: %q is not an integer", ErrUsage, rest[3])
	}
	cfg.NumImages = n
	cfg.WriteDirection = len(rest) == 5
	return nil
}

// Usage writes the command-line help.
func Usage(w io.Writer, program string) {
	fmt.Fprintf(w, "Usage: %s [flags] sigma tlow thigh numimages [writedirim]\n\n", program)
	fmt.Fprintln(w, "  sigma:      Standard deviation of the gaussian blur kernel.")
	fmt.Fprintln(w, "  tlow:       Fraction (0.0-1.0) of the high edge strength threshold.")
	fmt.Fprintln(w, "  thigh:      Fraction (0.0-1.0) of the non-zero edge strengths, counted")
	fmt.Fprintln(w, "              from the strongest, at or above the high threshold.")
	fmt.Fprintln(w, "  numimages:  Number of frames to process.")
	fmt.Fprintln(w, "  writedirim: Optional; also write a floating point direction image.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -config FILE     YAML run configuration")
	fmt.Fprintln(w, "  -source DIR      Directory of input frames (default: synthetic scene)")
	fmt.Fprintln(w, "  -out DIR         Output directory (default: .)")
	fmt.Fprintf(w, "  -width N         Frame width (default: %d)\n", frames.DefaultCols)
	fmt.Fprintf(w, "  -height N        Frame height (default: %d)\n", frames.DefaultRows)
	fmt.Fprintln(w, "  -workers N       Workers per stage (default: all CPUs)")
	fmt.Fprintln(w, "  -log-level LVL   debug, info, warn or error")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment variables:")
	fmt.Fprintf(w, "  %s=N         Workers per stage\n", EnvWorkers)
	fmt.Fprintf(w, "  %s=LVL     Log level\n", logging.EnvLevel)
}
