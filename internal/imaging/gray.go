package imaging

import (
	"image"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/canny-pipeline/internal/canny"
)

// ToGray converts img to the 8-bit row-major raster the detector consumes.
//
// Color is reduced to luminance with ITU-R BT.601 weights
// (0.299*R + 0.587*G + 0.114*B); the image origin is moved to (0,0).
func ToGray(img image.Image) canny.Image {
	g := imaging.Grayscale(img)
	b := g.Bounds()
	rows, cols := b.Dy(), b.Dx()

	pix := make([]uint8, rows*cols)
	for y := 0; y < rows; y++ {
		row := g.Pix[y*g.Stride:]
		for x := 0; x < cols; x++ {
			pix[y*cols+x] = row[x*4]
		}
	}
	return canny.Image{Pix: pix, Rows: rows, Cols: cols}
}

// Fit scales and center-crops img to exactly cols×rows. Images that already
// have that size are returned unchanged. A non-positive dimension disables
// fitting.
func Fit(img image.Image, cols, rows int) image.Image {
	b := img.Bounds()
	if cols <= 0 || rows <= 0 || (b.Dx() == cols && b.Dy() == rows) {
		return img
	}
	return imaging.Fill(img, cols, rows, imaging.Center, imaging.Lanczos)
}

// ToImage wraps a raster in an *image.Gray without copying.
func ToImage(pix []uint8, rows, cols int) *image.Gray {
	return &image.Gray{
		Pix:    pix,
		Stride: cols,
		Rect:   image.Rect(0, 0, cols, rows),
	}
}
