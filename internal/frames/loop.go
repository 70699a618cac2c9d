package frames

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ironsheep/canny-pipeline/internal/canny"
	"github.com/ironsheep/canny-pipeline/internal/imaging"
	"github.com/ironsheep/canny-pipeline/internal/logging"
)

// Loop pulls frames from a Source, runs edge detection on each and writes
// the results to OutDir.
type Loop struct {
	Source   Source
	Detector *canny.Detector
	Params   canny.Params

	// OutDir receives frameNNN.pgm for every frame. Empty means the current
	// directory.
	OutDir string

	// WriteDirection also writes the direction raster of each frame, plus a
	// color preview PNG next to it.
	WriteDirection bool

	Logger zerolog.Logger
}

// FrameTiming is the wall time spent on one frame.
type FrameTiming struct {
	Seq     uint64        `json:"seq"`
	TraceID string        `json:"trace_id"`
	Capture time.Duration `json:"capture"`
	Process time.Duration `json:"process"`
	Edges   int           `json:"edges"`
}

// Elapsed is capture plus process time.
func (t FrameTiming) Elapsed() time.Duration {
	return t.Capture + t.Process
}

// FPS is the frame rate this frame alone would sustain.
func (t FrameTiming) FPS() float64 {
	return fps(1, t.Elapsed())
}

// Summary describes a finished run.
type Summary struct {
	Frames  []FrameTiming `json:"frames"`
	Capture time.Duration `json:"capture"`
	Process time.Duration `json:"process"`
	Wall    time.Duration `json:"wall"`
}

// Total is the summed capture and process time of all frames.
func (s Summary) Total() time.Duration {
	return s.Capture + s.Process
}

// AverageFPS is frames per second of capture plus processing time.
func (s Summary) AverageFPS() float64 {
	return fps(len(s.Frames), s.Total())
}

func fps(n int, d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	return float64(n) / d.Seconds()
}

// FrameFileName returns the edge map file name of frame n (1-based).
func FrameFileName(n int) string {
	return fmt.Sprintf("frame%03d.pgm", n)
}

// Run processes n frames, numbering output files from 1. It stops at the
// first error; the summary covers the frames completed before it.
func (l *Loop) Run(ctx context.Context, n int) (sum Summary, err error) {
	if n <= 0 {
		return Summary{}, fmt.Errorf("%w: frame count must be positive, got %d", canny.ErrInvalidParameter, n)
	}
	if err := l.Params.Validate(); err != nil {
		return Summary{}, err
	}
	if l.OutDir != "" {
		if err := os.MkdirAll(l.OutDir, 0o755); err != nil {
			return Summary{}, fmt.Errorf("failed to create output dir: %w", err)
		}
	}

	params := l.Params
	params.WantDirection = l.WriteDirection

	log := logging.Component(l.Logger, "frames")
	start := time.Now()
	defer func() { sum.Wall = time.Since(start) }()

	for i := 1; i <= n; i++ {
		t0 := time.Now()
		frame, err := l.Source.Next(ctx)
		if err != nil {
			return sum, fmt.Errorf("frame %d: capture: %w", i, err)
		}
		t1 := time.Now()

		res, err := l.Detector.Detect(ctx, frame.Image, params)
		if err != nil {
			return sum, fmt.Errorf("frame %d: %w", i, err)
		}
		if err := l.write(i, res); err != nil {
			return sum, fmt.Errorf("frame %d: %w", i, err)
		}
		t2 := time.Now()

		ft := FrameTiming{
			Seq:     frame.Seq,
			TraceID: frame.TraceID,
			Capture: t1.Sub(t0),
			Process: t2.Sub(t1),
			Edges:   res.Stats.EdgePixels,
		}
		sum.Frames = append(sum.Frames, ft)
		sum.Capture += ft.Capture
		sum.Process += ft.Process

		log.Info().
			Int("frame", i).
			Str("origin", frame.Origin).
			Str("trace_id", frame.TraceID).
			Dur("capture", ft.Capture).
			Dur("process", ft.Process).
			Dur("elapsed", ft.Elapsed()).
			Float64("fps", ft.FPS()).
			Int("edges", ft.Edges).
			Msg("frame processed")
	}

	log.Info().
		Int("frames", len(sum.Frames)).
		Dur("total", sum.Total()).
		Float64("average_fps", sum.AverageFPS()).
		Msg("finished")
	return sum, nil
}

func (l *Loop) write(i int, res *canny.Result) error {
	if err := imaging.SavePGM(filepath.Join(l.OutDir, FrameFileName(i)), res.Edges, res.Rows, res.Cols); err != nil {
		return err
	}
	if !l.WriteDirection {
		return nil
	}

	name := imaging.DirectionFileName(l.Params.Sigma, l.Params.TLow, l.Params.THigh, i)
	if err := imaging.SaveDirection(filepath.Join(l.OutDir, name), res.Direction, res.Rows, res.Cols); err != nil {
		return err
	}
	preview := imaging.DirectionPreview(res.Direction, res.Edges, res.Rows, res.Cols)
	return imaging.SavePNG(filepath.Join(l.OutDir, strings.TrimSuffix(name, ".fim")+".png"), preview)
}
