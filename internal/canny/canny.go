package canny

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/ironsheep/canny-pipeline/internal/logging"
	"github.com/ironsheep/canny-pipeline/internal/workers"
)

// DefaultMaxPixels is the largest frame a Detector accepts unless configured
// otherwise (64 megapixels).
const DefaultMaxPixels = 64 << 20

// Image is an 8-bit grayscale raster, row-major, one byte per pixel, no
// padding between rows.
type Image struct {
	Pix  []uint8
	Rows int
	Cols int
}

// Params are the per-frame detection parameters.
type Params struct {
	// Sigma is the standard deviation of the Gaussian blur. Must be > 0.
	Sigma float64 `json:"sigma"`

	// TLow is the low threshold as a fraction (0-1) of the high threshold.
	TLow float64 `json:"tlow"`

	// THigh is the fraction (0-1) of the non-zero suppressed magnitudes,
	// counted from the strongest down, that lie at or above the high
	// threshold.
	THigh float64 `json:"thigh"`

	// WantDirection requests the floating-point direction raster.
	WantDirection bool `json:"want_direction,omitempty"`
}

// Validate checks the parameter ranges. TLow greater than THigh is accepted:
// the low threshold is derived as TLow times the high threshold, so it never
// exceeds the high one.
func (p Params) Validate() error {
	if err := validateSigma(p.Sigma); err != nil {
		return err
	}
	if !inUnit(p.TLow) {
		return fmt.Errorf("%w: tlow must be in [0,1], got %g", ErrInvalidParameter, p.TLow)
	}
	if !inUnit(p.THigh) {
		return fmt.Errorf("%w: thigh must be in [0,1], got %g", ErrInvalidParameter, p.THigh)
	}
	return nil
}

func inUnit(f float64) bool {
	return !math.IsNaN(f) && f >= 0 && f <= 1
}

// Stats describes how a frame moved through the pipeline.
type Stats struct {
	// Workers is the number of workers each stage was split across.
	Workers int `json:"workers"`

	// KernelRadius is the Gaussian radius; it is also the width of the
	// border band excluded from edge candidates.
	KernelRadius int `json:"kernel_radius"`

	// NonZeroGradient counts pixels with a non-zero gradient magnitude.
	NonZeroGradient int `json:"non_zero_gradient"`

	// Survivors counts pixels left after non-maximal suppression.
	Survivors int `json:"survivors"`

	// EdgePixels counts pixels marked as edges.
	EdgePixels int `json:"edge_pixels"`

	// LinkRounds is the number of flood rounds hysteresis needed.
	LinkRounds int `json:"link_rounds"`
}

// Result is the output of one frame.
type Result struct {
	// Edges has the input's dimensions: EdgeValue for edges, NonEdgeValue
	// elsewhere.
	Edges []uint8
	Rows  int
	Cols  int

	// Direction holds the gradient angle in radians, [0, 2π), for every
	// pixel. Nil unless Params.WantDirection was set.
	Direction []float64

	Thresholds Thresholds
	Stats      Stats
}

// Config is the immutable configuration of a Detector.
type Config struct {
	// Workers is the number of parallel workers per stage. <= 0 uses
	// GOMAXPROCS.
	Workers int

	// MaxPixels caps rows*cols. Larger frames fail with ErrAllocationFailure.
	MaxPixels int

	// Logger receives per-stage debug output.
	Logger zerolog.Logger
}

// Option configures a Detector.
type Option func(*Config)

// WithWorkers sets the number of workers per stage.
func WithWorkers(n int) Option {
	return func(c *Config) { c.Workers = n }
}

// WithMaxPixels sets the largest accepted frame size.
func WithMaxPixels(n int) Option {
	return func(c *Config) { c.MaxPixels = n }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Config) { c.Logger = l }
}

// Detector runs the Canny pipeline. It keeps no per-frame state, so one
// Detector may process frames from several goroutines at once.
type Detector struct {
	cfg   Config
	group *workers.Group
	log   zerolog.Logger
}

// New creates a Detector.
func New(opts ...Option) *Detector {
	cfg := Config{
		MaxPixels: DefaultMaxPixels,
		Logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.MaxPixels <= 0 {
		cfg.MaxPixels = DefaultMaxPixels
	}

	g := workers.New(cfg.Workers)
	cfg.Workers = g.NumWorkers()
	return &Detector{
		cfg:   cfg,
		group: g,
		log:   logging.Component(cfg.Logger, "canny"),
	}
}

// Workers returns the number of workers per stage.
func (d *Detector) Workers() int {
	return d.cfg.Workers
}

// DetectEdges runs the pipeline with default configuration and returns only
// the edge map.
func DetectEdges(ctx context.Context, image []uint8, rows, cols int, sigma, tlow, thigh float64) ([]uint8, error) {
	res, err := New().Detect(ctx, Image{Pix: image, Rows: rows, Cols: cols}, Params{Sigma: sigma, TLow: tlow, THigh: thigh})
	if err != nil {
		return nil, err
	}
	return res.Edges, nil
}

// Detect computes the edge map of img.
//
// Stages run in order (blur, x and y derivatives, magnitude and direction,
// non-maximal suppression, threshold derivation, linking), each split across
// the configured workers and each ending in a barrier. Parameters and frame
// dimensions are validated before any buffer is allocated. The first worker
// failure aborts the frame; nothing is retained between calls.
func (d *Detector) Detect(ctx context.Context, img Image, p Params) (*Result, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := d.checkImage(img); err != nil {
		return nil, err
	}

	kernel, err := NewKernel(p.Sigma)
	if err != nil {
		return nil, err
	}

	rows, cols := img.Rows, img.Cols
	n := rows * cols
	c := &convolver{group: d.group, rows: rows, cols: cols}
	log := d.log.With().Int("rows", rows).Int("cols", cols).Logger()
	timer := newStageTimer(log)

	tmp := make([]float64, n)
	smoothed := make([]float64, n)
	if err := c.blur(ctx, img.Pix, kernel, tmp, smoothed); err != nil {
		return nil, fmt.Errorf("blur: %w", err)
	}
	timer.done("blur")

	deriv := DerivativeKernel()
	gx, gy := tmp, make([]float64, n)
	if err := c.derivative(ctx, smoothed, deriv, AxisX, gx); err != nil {
		return nil, fmt.Errorf("derivative x: %w", err)
	}
	if err := c.derivative(ctx, smoothed, deriv, AxisY, gy); err != nil {
		return nil, fmt.Errorf("derivative y: %w", err)
	}
	timer.done("derivative")

	grad := &gradient{
		magnitude: make([]float64, n),
		direction: make([]Direction, n),
	}
	if p.WantDirection {
		grad.radians = make([]float64, n)
	}
	if err := c.magnitudeAndDirection(ctx, gx, gy, kernel.Radius(), grad); err != nil {
		return nil, fmt.Errorf("gradient: %w", err)
	}
	nonZero, err := c.countNonZero(ctx, grad.magnitude)
	if err != nil {
		return nil, fmt.Errorf("gradient: %w", err)
	}
	timer.done("gradient")

	// The smoothed buffer is no longer read; reuse it for the suppressed
	// magnitudes.
	nms := smoothed
	survivors, err := c.suppress(ctx, grad, nms)
	if err != nil {
		return nil, fmt.Errorf("non-maximal suppression: %w", err)
	}
	timer.done("nms")

	thresholds, err := c.deriveThresholds(ctx, nms, p.TLow, p.THigh)
	if err != nil {
		return nil, fmt.Errorf("thresholds: %w", err)
	}

	edges := make([]uint8, n)
	rounds, err := c.link(ctx, nms, thresholds, p.TLow, edges)
	if err != nil {
		return nil, fmt.Errorf("hysteresis: %w", err)
	}
	timer.done("hysteresis")

	edgeCount := 0
	for _, v := range edges {
		if v == EdgeValue {
			edgeCount++
		}
	}

	log.Debug().
		Float64("low", thresholds.Low).
		Float64("high", thresholds.High).
		Int("survivors", survivors).
		Int("edges", edgeCount).
		Int("rounds", rounds).
		Msg("frame done")

	return &Result{
		Edges:      edges,
		Rows:       rows,
		Cols:       cols,
		Direction:  grad.radians,
		Thresholds: thresholds,
		Stats: Stats{
			Workers:         d.cfg.Workers,
			KernelRadius:    kernel.Radius(),
			NonZeroGradient: nonZero,
			Survivors:       survivors,
			EdgePixels:      edgeCount,
			LinkRounds:      rounds,
		},
	}, nil
}

// checkImage validates frame dimensions and the allocation budget.
func (d *Detector) checkImage(img Image) error {
	if img.Rows <= 0 || img.Cols <= 0 {
		return fmt.Errorf("%w: image must be at least 1x1, got %dx%d", ErrInvalidParameter, img.Cols, img.Rows)
	}
	if img.Rows > d.cfg.MaxPixels/img.Cols {
		return fmt.Errorf("%w: %dx%d exceeds the %d pixel limit", ErrAllocationFailure, img.Cols, img.Rows, d.cfg.MaxPixels)
	}
	if len(img.Pix) != img.Rows*img.Cols {
		return fmt.Errorf("%w: buffer holds %d bytes, %dx%d needs %d", ErrInvalidParameter, len(img.Pix), img.Cols, img.Rows, img.Rows*img.Cols)
	}
	return nil
}

// stageTimer logs the duration of each stage at debug level.
type stageTimer struct {
	log  zerolog.Logger
	last time.Time
}

func newStageTimer(log zerolog.Logger) *stageTimer {
	return &stageTimer{log: log, last: time.Now()}
}

func (t *stageTimer) done(stage string) {
	now := time.Now()
	t.log.Debug().Str("stage", stage).Dur("elapsed", now.Sub(t.last)).Msg("stage complete")
	t.last = now
}
