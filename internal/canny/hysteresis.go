package canny

import (
	"context"
	"math"
	"sync"
	"sync/atomic"
)

// HistogramScale is the number of histogram bins per unit of gradient
// magnitude. Magnitudes of 8-bit input stay below 255·√2, so the histogram
// never exceeds a few thousand bins.
const HistogramScale = 16.0

// Edge map pixel values.
const (
	EdgeValue    uint8 = 255
	NonEdgeValue uint8 = 0
)

// Thresholds is the hysteresis threshold pair derived for one frame.
type Thresholds struct {
	// Low and High are in gradient magnitude units. Low <= High always.
	Low  float64 `json:"low"`
	High float64 `json:"high"`

	// Ceiling is the largest magnitude that survived suppression.
	Ceiling float64 `json:"ceiling"`

	// Candidates is the number of non-zero pixels the histogram was built from.
	Candidates int `json:"candidates"`

	// highBin is High expressed in histogram bins. Pixels are compared in
	// bin space so seeding agrees exactly with the histogram walk.
	highBin int
}

// LowFraction returns Low relative to Ceiling, in [0,1].
func (t Thresholds) LowFraction() float64 {
	if t.Ceiling == 0 {
		return 0
	}
	return t.Low / t.Ceiling
}

// HighFraction returns High relative to Ceiling, in [0,1].
func (t Thresholds) HighFraction() float64 {
	if t.Ceiling == 0 {
		return 0
	}
	return t.High / t.Ceiling
}

// bandHistogram is one worker's share of the magnitude histogram.
type bandHistogram struct {
	counts  []int
	total   int
	ceiling float64
}

// histogramBin maps a magnitude to its bin. Bin r holds [r, r+1)/HistogramScale.
func histogramBin(m float64) int {
	return int(m * HistogramScale)
}

// deriveThresholds builds the histogram of non-zero suppressed magnitudes and
// walks it from the top bin down, accumulating counts until the running total
// reaches thigh of all candidates. The lower edge of that bin is the high
// threshold; the low threshold is tlow times the high one.
//
// A frame without candidates yields the zero Thresholds.
func (c *convolver) deriveThresholds(ctx context.Context, nms []float64, tlow, thigh float64) (Thresholds, error) {
	cols := c.cols

	var (
		mu    sync.Mutex
		bands []bandHistogram
	)
	err := c.group.Rows(ctx, c.rows, func(start, end int) error {
		var h bandHistogram
		for _, m := range nms[start*cols : end*cols] {
			if m == 0 {
				continue
			}
			b := histogramBin(m)
			if b >= len(h.counts) {
				grown := make([]int, b+1)
				copy(grown, h.counts)
				h.counts = grown
			}
			h.counts[b]++
			h.total++
			if m > h.ceiling {
				h.ceiling = m
			}
		}
		mu.Lock()
		bands = append(bands, h)
		mu.Unlock()
		return nil
	})
	if err != nil {
		return Thresholds{}, err
	}

	// Integer counts and max are order-independent, so merging in whatever
	// order the bands finished is deterministic.
	var t Thresholds
	nbins := 0
	for _, h := range bands {
		t.Candidates += h.total
		t.Ceiling = math.Max(t.Ceiling, h.ceiling)
		nbins = max(nbins, len(h.counts))
	}
	if t.Candidates == 0 {
		return Thresholds{}, nil
	}
	hist := make([]int, nbins)
	for _, h := range bands {
		for b, n := range h.counts {
			hist[b] += n
		}
	}

	target := thigh * float64(t.Candidates)
	cumulative := 0
	r := nbins - 1
	for ; r > 0; r-- {
		cumulative += hist[r]
		if cumulative > 0 && float64(cumulative) >= target {
			break
		}
	}

	t.highBin = r
	t.High = float64(r) / HistogramScale
	t.Low = tlow * t.High
	return t, nil
}

// link performs hysteresis edge linking and writes the binary edge map.
//
// Seeds are non-zero pixels at or above the high threshold. Acceptance then
// spreads through 8-connected non-zero pixels at or above the low threshold.
// The flood runs in rounds: within a round each worker floods only its own
// row band and reads neighboring bands from a snapshot taken when the round
// started. Rounds repeat until one accepts nothing, which is the reachability
// fixed point; it does not depend on the band layout or visiting order.
//
// Returns the number of rounds run.
func (c *convolver) link(ctx context.Context, nms []float64, t Thresholds, tlow float64, edges []uint8) (int, error) {
	rows, cols := c.rows, c.cols
	if t.Candidates == 0 {
		err := c.group.Rows(ctx, rows, func(start, end int) error {
			clear(edges[start*cols : end*cols])
			return nil
		})
		return 0, err
	}

	seedAt := float64(t.highBin)
	lowAt := tlow * seedAt
	eligible := func(i int) bool {
		m := nms[i]
		return m != 0 && m*HistogramScale >= lowAt
	}

	accepted := make([]bool, rows*cols)
	snapshot := make([]bool, rows*cols)

	rounds := 0
	for {
		copy(snapshot, accepted)
		first := rounds == 0
		var added atomic.Int64

		err := c.group.Rows(ctx, rows, func(start, end int) error {
			var stack []int
			accept := func(i int) {
				accepted[i] = true
				stack = append(stack, i)
			}

			if first {
				for i := start * cols; i < end*cols; i++ {
					if m := nms[i]; m != 0 && m*HistogramScale >= seedAt {
						accept(i)
					}
				}
			} else {
				if start > 0 {
					c.adoptAcross(start, start-1, snapshot, accepted, eligible, accept)
				}
				if end < rows {
					c.adoptAcross(end-1, end, snapshot, accepted, eligible, accept)
				}
			}

			n := int64(len(stack))
			for len(stack) > 0 {
				i := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				y, x := i/cols, i%cols
				for ny := max(y-1, start); ny <= min(y+1, end-1); ny++ {
					for nx := max(x-1, 0); nx <= min(x+1, cols-1); nx++ {
						j := ny*cols + nx
						if !accepted[j] && eligible(j) {
							accept(j)
							n++
						}
					}
				}
			}
			added.Add(n)
			return nil
		})
		if err != nil {
			return rounds, err
		}
		rounds++
		if added.Load() == 0 {
			break
		}
	}

	err := c.group.Rows(ctx, rows, func(start, end int) error {
		for i := start * cols; i < end*cols; i++ {
			if accepted[i] {
				edges[i] = EdgeValue
			} else {
				edges[i] = NonEdgeValue
			}
		}
		return nil
	})
	return rounds, err
}

// adoptAcross accepts eligible pixels on row y that touch a pixel accepted in
// the snapshot of the neighboring row across a band boundary.
func (c *convolver) adoptAcross(y, across int, snapshot, accepted []bool, eligible func(int) bool, accept func(int)) {
	cols := c.cols
	for x := 0; x < cols; x++ {
		i := y*cols + x
		if accepted[i] || !eligible(i) {
			continue
		}
		for nx := max(x-1, 0); nx <= min(x+1, cols-1); nx++ {
			if snapshot[across*cols+nx] {
				accept(i)
				break
			}
		}
	}
}
