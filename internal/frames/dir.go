package frames

import (
	"context"
	"errors"
	"fmt"
	"image"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ironsheep/canny-pipeline/internal/imaging"
)

// Default frame size, matching the capture resolution the camera tool uses.
const (
	DefaultCols = 640
	DefaultRows = 480
)

// ErrNoFrames is returned when a directory holds no usable images.
var ErrNoFrames = errors.New("no frames found")

var frameExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".pgm":  true,
	".ppm":  true,
	".pnm":  true,
}

// DirSource replays the image files of a directory in name order, wrapping
// around after the last one. Every frame is scaled and center-cropped to the
// configured size so the whole run shares one resolution.
type DirSource struct {
	paths []string
	cols  int
	rows  int
	next  int
	seq   uint64
}

// NewDirSource lists the image files in dir. cols or rows <= 0 keep each
// file's own size.
func NewDirSource(dir string, cols, rows int) (*DirSource, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*"))
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, m := range matches {
		if frameExtensions[strings.ToLower(filepath.Ext(m))] {
			paths = append(paths, m)
		}
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoFrames, dir)
	}
	sort.Strings(paths)
	return &DirSource{paths: paths, cols: cols, rows: rows}, nil
}

// Len returns the number of distinct files.
func (s *DirSource) Len() int {
	return len(s.paths)
}

// Next decodes the next file.
func (s *DirSource) Next(ctx context.Context) (*Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := s.paths[s.next]
	s.next = (s.next + 1) % len(s.paths)

	img, err := s.decode(path)
	if err != nil {
		return nil, err
	}
	f := &Frame{
		Image:     imaging.ToGray(imaging.Fit(img, s.cols, s.rows)),
		Seq:       s.seq,
		Timestamp: time.Now(),
		TraceID:   uuid.New().String(),
		Origin:    path,
	}
	s.seq++
	return f, nil
}

func (s *DirSource) decode(path string) (image.Image, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("frame %s: %w", path, err)
	}
	return img, nil
}
