package canny

import (
	"context"
	"math"
)

// Direction is a gradient direction quantized to one of eight 45° compass
// sectors. Angles follow image coordinates: x grows to the right and y grows
// downward, so South is +y and sectors advance clockwise on screen.
type Direction uint8

const (
	DirEast Direction = iota
	DirSouthEast
	DirSouth
	DirSouthWest
	DirWest
	DirNorthWest
	DirNorth
	DirNorthEast

	// DirNone marks border pixels whose neighborhood the smoothing kernel
	// did not fully cover. They are never edge candidates.
	DirNone Direction = 0xFF
)

// numDirections is the number of compass sectors.
const numDirections = 8

// directionStep holds the unit pixel offset along each direction.
var directionStep = [numDirections][2]int{
	DirEast:      {1, 0},
	DirSouthEast: {1, 1},
	DirSouth:     {0, 1},
	DirSouthWest: {-1, 1},
	DirWest:      {-1, 0},
	DirNorthWest: {-1, -1},
	DirNorth:     {0, -1},
	DirNorthEast: {1, -1},
}

var directionNames = [numDirections]string{"E", "SE", "S", "SW", "W", "NW", "N", "NE"}

func (d Direction) String() string {
	if d < numDirections {
		return directionNames[d]
	}
	return "none"
}

// IsHorizontal reports whether the gradient points along the x axis, which is
// the case across a vertical edge.
func (d Direction) IsHorizontal() bool {
	return d == DirEast || d == DirWest
}

// IsVertical reports whether the gradient points along the y axis.
func (d Direction) IsVertical() bool {
	return d == DirNorth || d == DirSouth
}

// Step returns the pixel offset one step along d. DirNone has no step.
func (d Direction) Step() (dx, dy int) {
	if d >= numDirections {
		return 0, 0
	}
	s := directionStep[d]
	return s[0], s[1]
}

// quantize maps an angle in radians to the nearest compass sector.
func quantize(angle float64) Direction {
	b := int(math.Round(angle / (math.Pi / 4)))
	return Direction(((b % numDirections) + numDirections) % numDirections)
}

// gradient holds the per-pixel gradient samples of one frame.
type gradient struct {
	magnitude []float64
	direction []Direction
	// radians is the unquantized direction in [0, 2π); nil unless requested.
	radians []float64
}

// magnitudeAndDirection combines the two derivative buffers. Pixels within
// border of any image edge are marked DirNone; their magnitude is still
// stored so interior pixels can read it during suppression.
func (c *convolver) magnitudeAndDirection(ctx context.Context, gx, gy []float64, border int, g *gradient) error {
	rows, cols := c.rows, c.cols
	return c.group.Rows(ctx, rows, func(start, end int) error {
		for y := start; y < end; y++ {
			edgeRow := y < border || y >= rows-border
			for x := 0; x < cols; x++ {
				i := y*cols + x
				dx, dy := gx[i], gy[i]
				g.magnitude[i] = math.Sqrt(dx*dx + dy*dy)

				angle := math.Atan2(dy, dx)
				if g.radians != nil {
					if angle < 0 {
						g.radians[i] = angle + 2*math.Pi
					} else {
						g.radians[i] = angle
					}
				}

				if edgeRow || x < border || x >= cols-border {
					g.direction[i] = DirNone
					continue
				}
				g.direction[i] = quantize(angle)
			}
		}
		return nil
	})
}
