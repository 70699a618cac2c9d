package canny

import (
	"context"
	"sync/atomic"
)

// suppress thins the gradient to one-pixel ridges. A candidate keeps its
// magnitude only when it is a local maximum along its quantized direction:
//
//	mag > behind  &&  mag >= ahead
//
// where ahead is the neighbor one step along the gradient and behind is the
// neighbor one step against it. The strict comparison on one side breaks
// ties, so a symmetric step edge yields a single line instead of a
// two-pixel-wide one. Everything else is written as zero.
//
// It must run after the whole gradient is materialized: rows y-1 and y+1 of
// the magnitude buffer belong to other workers' bands.
//
// Returns the number of surviving pixels.
func (c *convolver) suppress(ctx context.Context, g *gradient, dst []float64) (int, error) {
	rows, cols := c.rows, c.cols
	mag, dir := g.magnitude, g.direction

	var survivors atomic.Int64
	err := c.group.Rows(ctx, rows, func(start, end int) error {
		var kept int64
		for y := start; y < end; y++ {
			for x := 0; x < cols; x++ {
				i := y*cols + x
				d := dir[i]
				m := mag[i]
				if d == DirNone || m == 0 {
					dst[i] = 0
					continue
				}
				dx, dy := d.Step()
				ahead := mag[i+dy*cols+dx]
				behind := mag[i-dy*cols-dx]
				if m > behind && m >= ahead {
					dst[i] = m
					kept++
				} else {
					dst[i] = 0
				}
			}
		}
		survivors.Add(kept)
		return nil
	})
	return int(survivors.Load()), err
}

// countNonZero returns the number of non-zero values in buf.
func (c *convolver) countNonZero(ctx context.Context, buf []float64) (int, error) {
	cols := c.cols
	var n atomic.Int64
	err := c.group.Rows(ctx, c.rows, func(start, end int) error {
		var local int64
		for _, v := range buf[start*cols : end*cols] {
			if v != 0 {
				local++
			}
		}
		n.Add(local)
		return nil
	})
	return int(n.Load()), err
}
