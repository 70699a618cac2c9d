package frames

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ironsheep/canny-pipeline/internal/canny"
)

// SyntheticSource generates a deterministic test scene: a horizontal
// brightness ramp with a bright square that moves two pixels right and one
// pixel down per frame, wrapping at the frame border.
type SyntheticSource struct {
	cols int
	rows int
	seq  uint64
}

// NewSyntheticSource creates a generator for cols×rows frames. Non-positive
// dimensions fall back to DefaultCols×DefaultRows.
func NewSyntheticSource(cols, rows int) *SyntheticSource {
	if cols <= 0 || rows <= 0 {
		cols, rows = DefaultCols, DefaultRows
	}
	return &SyntheticSource{cols: cols, rows: rows}
}

// Next renders the next frame.
func (s *SyntheticSource) Next(ctx context.Context) (*Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f := &Frame{
		Image:     Scene(s.cols, s.rows, s.seq),
		Seq:       s.seq,
		Timestamp: time.Now(),
		TraceID:   uuid.New().String(),
		Origin:    "synthetic",
	}
	s.seq++
	return f, nil
}

// Scene renders frame seq of the synthetic sequence.
func Scene(cols, rows int, seq uint64) canny.Image {
	side := max(min(cols, rows)/4, 1)
	x0 := int((seq * 2) % uint64(cols))
	y0 := int(seq % uint64(rows))

	pix := make([]uint8, rows*cols)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			v := uint8(40 + 80*x/cols)
			dx := (x - x0 + cols) % cols
			dy := (y - y0 + rows) % rows
			if dx < side && dy < side {
				v = 230
			}
			pix[y*cols+x] = v
		}
	}
	return canny.Image{Pix: pix, Rows: rows, Cols: cols}
}
