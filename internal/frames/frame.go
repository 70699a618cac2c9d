package frames

import (
	"context"
	"time"

	"github.com/ironsheep/canny-pipeline/internal/canny"
)

// Frame is one grayscale frame handed from a Source to the Loop.
//
// The raster is owned by the receiver once Next returns; sources never touch
// it again.
type Frame struct {
	canny.Image

	// Seq is assigned by the source, starting at 0 and increasing by one per
	// frame.
	Seq uint64

	// Timestamp is when the frame was acquired.
	Timestamp time.Time

	// Origin names where the frame came from (a file path, or "synthetic").
	Origin string

	// TraceID identifies the frame in logs and run statistics.
	TraceID string
}

// Source produces frames. Next blocks until a frame is available or ctx is
// done.
type Source interface {
	Next(ctx context.Context) (*Frame, error)
}
