package imaging

import (
	"bytes"
	"math"
	"path/filepath"
	"strings"
	"testing"
)

func TestDirectionFileName(t *testing.T) {
	tests := []struct {
		sigma, tlow, thigh float64
		frame              int
		want               string
	}{
		{1, 0.3, 0.7, 1, "camera_s_1.00_l_0.30_h_0.70_frame001.fim"},
		{2.5, 0.25, 0.9, 42, "camera_s_2.50_l_0.25_h_0.90_frame042.fim"},
		{0.75, 0, 1, 1234, "camera_s_0.75_l_0.00_h_1.00_frame1234.fim"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := DirectionFileName(tt.sigma, tt.tlow, tt.thigh, tt.frame); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDirectionRoundTrip(t *testing.T) {
	radians := []float64{0, math.Pi / 4, math.Pi, 3 * math.Pi / 2, 6.25, 1.5}
	path := filepath.Join(t.TempDir(), DirectionFileName(1, 0.5, 0.5, 0))
	if err := SaveDirection(path, radians, 2, 3); err != nil {
		t.Fatalf("SaveDirection failed: %v", err)
	}

	var buf bytes.Buffer
	if err := WriteDirection(&buf, radians, 2, 3); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(buf.String(), "FIM1\n3 2\n") {
		t.Errorf("unexpected header %q", buf.String()[:10])
	}

	got, rows, cols, err := ReadDirection(&buf)
	if err != nil {
		t.Fatalf("ReadDirection failed: %v", err)
	}
	if rows != 2 || cols != 3 {
		t.Fatalf("dimensions: got %dx%d, want 3x2", cols, rows)
	}
	for i := range radians {
		if math.Abs(got[i]-radians[i]) > 1e-6 {
			t.Errorf("value %d: got %g, want %g", i, got[i], radians[i])
		}
	}
}

func TestWriteDirection_SizeMismatch(t *testing.T) {
	if err := WriteDirection(&bytes.Buffer{}, make([]float64, 3), 2, 2); err == nil {
		t.Error("WriteDirection should reject a raster of the wrong size")
	}
}

func TestReadDirection_Invalid(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"wrong magic", "FIM2\n1 1\n\x00\x00\x00\x00"},
		{"zero size", "FIM1\n0 1\n"},
		{"short data", "FIM1\n2 2\n\x00\x00"},
		{"oversized header", "FIM1\n100000 100000\n\x00\x00\x00\x00"},
		{"overflowing header", "FIM1\n4000000000 4000000000\n\x00\x00\x00\x00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, _, err := ReadDirection(strings.NewReader(tt.src)); err == nil {
				t.Error("ReadDirection should fail")
			}
		})
	}
}

func TestDirectionPreview(t *testing.T) {
	radians := []float64{0, 2 * math.Pi / 3, 4 * math.Pi / 3, 0}
	edges := []uint8{255, 255, 255, 0}
	img := DirectionPreview(radians, edges, 2, 2)

	tests := []struct {
		name    string
		x, y    int
		r, g, b uint8
	}{
		{"east is red", 0, 0, 255, 0, 0},
		{"120 degrees is green", 1, 0, 0, 255, 0},
		{"240 degrees is blue", 0, 1, 0, 0, 255},
		{"non-edge is black", 1, 1, 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := img.RGBAAt(tt.x, tt.y)
			if c.R != tt.r || c.G != tt.g || c.B != tt.b || c.A != 255 {
				t.Errorf("got %v, want (%d,%d,%d)", c, tt.r, tt.g, tt.b)
			}
		})
	}

	all := DirectionPreview(radians, nil, 2, 2)
	if c := all.RGBAAt(1, 1); c.R != 255 || c.G != 0 {
		t.Errorf("without an edge mask every pixel is colored, got %v", c)
	}
}

func TestSavePNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preview.png")
	if err := SavePNG(path, createEdgeTestImage(8, 8)); err != nil {
		t.Fatalf("SavePNG failed: %v", err)
	}
	frame, err := LoadGray(path)
	if err != nil {
		t.Fatalf("LoadGray failed: %v", err)
	}
	if frame.Rows != 8 || frame.Cols != 8 {
		t.Errorf("dimensions: got %dx%d", frame.Cols, frame.Rows)
	}
}
