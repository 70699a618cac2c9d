package imaging

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"os"

	"github.com/spakin/netpbm"

	"github.com/ironsheep/canny-pipeline/internal/canny"
)

// WritePGM writes a binary (P5) PGM with a maxval of 255.
func WritePGM(w io.Writer, pix []uint8, rows, cols int) error {
	if len(pix) != rows*cols {
		return fmt.Errorf("pgm: buffer holds %d bytes, %dx%d needs %d", len(pix), cols, rows, rows*cols)
	}
	opts := &netpbm.EncodeOptions{
		Format:   netpbm.PGM,
		MaxValue: 255,
		Plain:    false,
	}
	if err := netpbm.Encode(w, ToImage(pix, rows, cols), opts); err != nil {
		return fmt.Errorf("failed to write pgm: %w", err)
	}
	return nil
}

// SavePGM writes a binary PGM file at path.
func SavePGM(path string, pix []uint8, rows, cols int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := WritePGM(f, pix, rows, cols); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadPGM decodes a PGM into an 8-bit raster. Samples wider than a byte are
// scaled down. The header is checked against canny.DefaultMaxPixels before
// the raster is allocated.
func ReadPGM(r io.Reader) (canny.Image, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return canny.Image{}, fmt.Errorf("pgm: %w", err)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return canny.Image{}, fmt.Errorf("pgm: bad header: %w", err)
	}
	if err := checkPixels(cfg.Width, cfg.Height); err != nil {
		return canny.Image{}, fmt.Errorf("pgm: %w", err)
	}
	img, err := netpbm.Decode(bytes.NewReader(data), &netpbm.DecodeOptions{Target: netpbm.PGM})
	if err != nil {
		return canny.Image{}, fmt.Errorf("pgm: %w", err)
	}
	return ToGray(img), nil
}

// LoadPGM reads a PGM file.
func LoadPGM(path string) (canny.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return canny.Image{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	return ReadPGM(f)
}
