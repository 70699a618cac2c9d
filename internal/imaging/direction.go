package imaging

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"io"
	"math"
	"os"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/lucasb-eyer/go-colorful"
)

// fimMagic opens every direction raster file.
const fimMagic = "FIM1"

// DirectionFileName returns the file name of a frame's direction raster,
// encoding the detection parameters the way the camera tool always has.
func DirectionFileName(sigma, tlow, thigh float64, frame int) string {
	return fmt.Sprintf("camera_s_%3.2f_l_%3.2f_h_%3.2f_frame%03d.fim", sigma, tlow, thigh, frame)
}

// WriteDirection writes a floating-point direction raster: a text header
// "FIM1\n<cols> <rows>\n" followed by rows*cols little-endian float32
// angles in radians.
func WriteDirection(w io.Writer, radians []float64, rows, cols int) error {
	if len(radians) != rows*cols {
		return fmt.Errorf("fim: raster holds %d values, %dx%d needs %d", len(radians), cols, rows, rows*cols)
	}
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "%s\n%d %d\n", fimMagic, cols, rows); err != nil {
		return fmt.Errorf("failed to write fim header: %w", err)
	}
	var buf [4]byte
	for _, v := range radians {
		binary.LittleEndian.PutUint32(buf[:], math.Float32bits(float32(v)))
		if _, err := bw.Write(buf[:]); err != nil {
			return fmt.Errorf("failed to write fim data: %w", err)
		}
	}
	return bw.Flush()
}

// SaveDirection writes a direction raster file at path.
func SaveDirection(path string, radians []float64, rows, cols int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := WriteDirection(f, radians, rows, cols); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadDirection decodes a raster written by WriteDirection.
func ReadDirection(r io.Reader) (radians []float64, rows, cols int, err error) {
	br := bufio.NewReader(r)
	var magic string
	if _, err := fmt.Fscanf(br, "%s\n%d %d\n", &magic, &cols, &rows); err != nil {
		return nil, 0, 0, fmt.Errorf("fim: bad header: %w", err)
	}
	if magic != fimMagic {
		return nil, 0, 0, fmt.Errorf("fim: bad magic %q", magic)
	}
	if err := checkPixels(cols, rows); err != nil {
		return nil, 0, 0, fmt.Errorf("fim: %w", err)
	}

	radians = make([]float64, rows*cols)
	var buf [4]byte
	for i := range radians {
		if _, err := io.ReadFull(br, buf[:]); err != nil {
			return nil, 0, 0, fmt.Errorf("fim: short data: %w", err)
		}
		radians[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(buf[:])))
	}
	return radians, rows, cols, nil
}

// DirectionPreview renders a direction raster as a color wheel: hue encodes
// the gradient angle. When edges is non-nil only edge pixels are colored and
// the rest are black.
func DirectionPreview(radians []float64, edges []uint8, rows, cols int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, cols, rows))
	black := color.RGBA{0, 0, 0, 255}
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			i := y*cols + x
			if edges != nil && edges[i] == 0 {
				img.SetRGBA(x, y, black)
				continue
			}
			hue := math.Mod(radians[i]*180/math.Pi, 360)
			if hue < 0 {
				hue += 360
			}
			r, g, b := colorful.Hsv(hue, 1, 1).Clamped().RGB255()
			img.SetRGBA(x, y, color.RGBA{r, g, b, 255})
		}
	}
	return img
}

// SavePNG writes img as a PNG file.
func SavePNG(path string, img image.Image) error {
	if err := imgio.Save(path, img, imgio.PNGEncoder()); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}
