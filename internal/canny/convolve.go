package canny

import (
	"context"

	"github.com/ironsheep/canny-pipeline/internal/workers"
)

// Axis selects the direction a 1-D kernel is applied along.
type Axis int

const (
	// AxisX runs the kernel along a row (horizontal pass).
	AxisX Axis = iota
	// AxisY runs the kernel down a column (vertical pass).
	AxisY
)

func (a Axis) String() string {
	if a == AxisY {
		return "y"
	}
	return "x"
}

// sample is the element type a pass can read: raw 8-bit input or a float
// buffer produced by an earlier pass.
type sample interface {
	~uint8 | ~float64
}

// convolver runs separable passes over rows×cols buffers. Every pass reads a
// completed source buffer and writes a distinct destination buffer; workers
// own disjoint destination rows, so no locking is needed inside a pass.
//
// Pixels whose kernel footprint leaves the image read the nearest edge pixel
// (edge replication). The same policy applies to the blur and derivative
// passes.
type convolver struct {
	group *workers.Group
	rows  int
	cols  int
}

// blur smooths src with k along both axes. tmp receives the horizontal pass
// and dst the final result; both must hold rows*cols elements.
func (c *convolver) blur(ctx context.Context, src []uint8, k *Kernel, tmp, dst []float64) error {
	if err := pass(ctx, c, src, k, AxisX, tmp); err != nil {
		return err
	}
	return pass(ctx, c, tmp, k, AxisY, dst)
}

// derivative differentiates src along axis with k. The orthogonal pass of the
// separable pair is the identity, so it is a single pass.
func (c *convolver) derivative(ctx context.Context, src []float64, k *Kernel, axis Axis, dst []float64) error {
	return pass(ctx, c, src, k, axis, dst)
}

// pass applies k along axis, parallelised over destination rows.
func pass[T sample](ctx context.Context, c *convolver, src []T, k *Kernel, axis Axis, dst []float64) error {
	rows, cols := c.rows, c.cols
	w := k.weights
	center := k.center

	return c.group.Rows(ctx, rows, func(start, end int) error {
		for y := start; y < end; y++ {
			out := dst[y*cols : (y+1)*cols]
			if axis == AxisX {
				in := src[y*cols : (y+1)*cols]
				for x := range out {
					var sum float64
					for i, wt := range w {
						sum += wt * float64(in[clamp(x+i-center, 0, cols-1)])
					}
					out[x] = sum
				}
				continue
			}
			for x := range out {
				var sum float64
				for i, wt := range w {
					sum += wt * float64(src[clamp(y+i-center, 0, rows-1)*cols+x])
				}
				out[x] = sum
			}
		}
		return nil
	})
}

// clamp constrains an integer value to the range [lo, hi].
// Used for boundary handling in convolution operations.
func clamp(val, lo, hi int) int {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}
