package canny

import (
	"errors"

	"github.com/ironsheep/canny-pipeline/internal/workers"
)

// Error kinds reported by the pipeline. Every failure is scoped to the frame
// being processed; callers check them with errors.Is.
var (
	// ErrInvalidParameter reports a non-positive sigma, a threshold fraction
	// outside [0,1], or an image whose dimensions do not match its buffer.
	// It is returned before any buffer is allocated.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrAllocationFailure reports a frame too large to allocate working
	// buffers for.
	ErrAllocationFailure = errors.New("allocation failure")

	// ErrWorkerFailure reports a failed or panicking stage worker.
	ErrWorkerFailure = workers.ErrWorkerFailure
)
