// Package workers runs row-partitioned stages of the edge pipeline.
//
// A Group splits the rows of a frame into contiguous bands, one per worker,
// and blocks until every band has finished. Each call is therefore a full
// stage barrier: when Rows returns, every write made by every worker is
// visible to the caller and to the next stage.
//
// Usage:
//
//	g := workers.New(runtime.GOMAXPROCS(0))
//	err := g.Rows(ctx, height, func(start, end int) error {
//	    for y := start; y < end; y++ {
//	        processRow(y)
//	    }
//	    return nil
//	})
package workers

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"runtime/debug"

	"golang.org/x/sync/errgroup"
)

// ErrWorkerFailure is returned when a worker panics or returns an error.
var ErrWorkerFailure = errors.New("worker failure")

// Group is a fixed-size set of workers. It holds no goroutines between
// calls, so a Group can be shared by concurrent pipelines.
type Group struct {
	numWorkers int
}

// New creates a Group with the given number of workers.
// If numWorkers <= 0, uses GOMAXPROCS.
func New(numWorkers int) *Group {
	if numWorkers <= 0 {
		numWorkers = runtime.GOMAXPROCS(0)
	}
	return &Group{numWorkers: numWorkers}
}

// NumWorkers returns the number of workers in the group.
func (g *Group) NumWorkers() int {
	return g.numWorkers
}

// Band is a half-open row range [Start, End).
type Band struct {
	Start int
	End   int
}

// Bands partitions n rows into at most NumWorkers contiguous bands.
// Band sizes differ by at most one row.
func (g *Group) Bands(n int) []Band {
	if n <= 0 {
		return nil
	}
	workers := min(g.numWorkers, n)
	bands := make([]Band, 0, workers)
	base, extra := n/workers, n%workers
	start := 0
	for i := range workers {
		size := base
		if i < extra {
			size++
		}
		bands = append(bands, Band{Start: start, End: start + size})
		start += size
	}
	return bands
}

// Rows executes fn over [0, n) split into contiguous bands and waits for all
// of them. The first error (or recovered panic) is returned wrapped in
// ErrWorkerFailure; remaining bands still run to completion before Rows
// returns, so no worker outlives the barrier.
func (g *Group) Rows(ctx context.Context, n int, fn func(start, end int) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	bands := g.Bands(n)
	if len(bands) == 0 {
		return nil
	}
	if len(bands) == 1 {
		return guard(bands[0], fn)
	}

	var eg errgroup.Group
	eg.SetLimit(g.numWorkers)
	for _, b := range bands {
		eg.Go(func() error {
			return guard(b, fn)
		})
	}
	return eg.Wait()
}

// guard runs fn on one band, converting panics into errors.
func guard(b Band, fn func(start, end int) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: rows [%d,%d): panic: %v\n%s", ErrWorkerFailure, b.Start, b.End, r, debug.Stack())
		}
	}()
	if err := fn(b.Start, b.End); err != nil {
		if errors.Is(err, ErrWorkerFailure) {
			return err
		}
		return fmt.Errorf("%w: rows [%d,%d): %w", ErrWorkerFailure, b.Start, b.End, err)
	}
	return nil
}
