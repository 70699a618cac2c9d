package imaging

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/imgio"

	"github.com/ironsheep/canny-pipeline/internal/canny"
)

// EdgeDetectResult contains an edge map encoded as base64 PNG together with
// the thresholds and statistics of the run.
//
// The image is grayscale: white pixels (255) are edges, black pixels (0)
// are not.
type EdgeDetectResult struct {
	// Width of the output image in pixels (same as input).
	Width int `json:"width"`

	// Height of the output image in pixels (same as input).
	Height int `json:"height"`

	// ImageBase64 is the edge map encoded as base64 PNG.
	ImageBase64 string `json:"image_base64"`

	// MimeType is always "image/png".
	MimeType string `json:"mime_type"`

	// DirectionBase64 is a color-wheel rendering of the gradient direction
	// on edge pixels, as base64 PNG. Empty unless requested.
	DirectionBase64 string `json:"direction_base64,omitempty"`

	// Thresholds are the hysteresis thresholds derived for this image.
	Thresholds canny.Thresholds `json:"thresholds"`

	// Stats describes the pipeline run.
	Stats canny.Stats `json:"stats"`
}

// EdgeDetect runs the Canny pipeline on a grayscale raster and packages the
// result for transport.
//
// Parameters:
//   - det: The detector to run. Must not be nil.
//   - frame: 8-bit grayscale input, usually from ToGray or a FrameCache.
//   - params: sigma, tlow and thigh; WantDirection adds a direction preview.
//
// Returns:
//   - *EdgeDetectResult: The edge map as base64 PNG plus thresholds and stats.
//   - error: Non-nil if detection or PNG encoding fails.
func EdgeDetect(ctx context.Context, det *canny.Detector, frame canny.Image, params canny.Params) (*EdgeDetectResult, error) {
	res, err := det.Detect(ctx, frame, params)
	if err != nil {
		return nil, err
	}

	encoded, err := EncodePNG(ToImage(res.Edges, res.Rows, res.Cols))
	if err != nil {
		return nil, fmt.Errorf("failed to encode edge image: %w", err)
	}

	out := &EdgeDetectResult{
		Width:       res.Cols,
		Height:      res.Rows,
		ImageBase64: encoded,
		MimeType:    "image/png",
		Thresholds:  res.Thresholds,
		Stats:       res.Stats,
	}

	if res.Direction != nil {
		preview := DirectionPreview(res.Direction, res.Edges, res.Rows, res.Cols)
		if out.DirectionBase64, err = EncodePNG(preview); err != nil {
			return nil, fmt.Errorf("failed to encode direction image: %w", err)
		}
	}
	return out, nil
}

// EncodePNG encodes img as PNG and returns it base64-encoded.
func EncodePNG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := imgio.PNGEncoder()(&buf, img); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
