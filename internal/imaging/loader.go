package imaging

import (
	"fmt"
	"image"
	_ "image/gif" // Register GIF format decoder
	"os"
	"sync"

	"github.com/anthonynsimon/bild/imgio"

	"github.com/ironsheep/canny-pipeline/internal/canny"
)

// FrameCache provides thread-safe caching of decoded grayscale frames to avoid
// redundant disk reads and color conversion.
//
// Frames are keyed by their file path. Once a file is loaded, subsequent
// Load() calls for the same path return the cached raster. Cached rasters are
// shared: callers must not modify their pixels.
//
// FrameCache is safe for concurrent use by multiple goroutines.
//
// # Memory Management
//
// Cached frames remain in memory until explicitly removed via Evict() or
// Clear(). Long-running processes handling many files should evict what they
// no longer need.
type FrameCache struct {
	mu     sync.RWMutex
	frames map[string]canny.Image
}

// NewFrameCache creates and initializes a new empty frame cache.
func NewFrameCache() *FrameCache {
	return &FrameCache{
		frames: make(map[string]canny.Image),
	}
}

// Load retrieves a frame from the cache or decodes it from disk.
//
// PNG, JPEG, GIF and Netpbm files are decoded and reduced to luminance with
// ToGray.
//
// # Errors
//
//   - Returns error if the file does not exist or cannot be read
//   - Returns error if the file is not a supported image
//   - Returns error if the header claims more than canny.DefaultMaxPixels
func (c *FrameCache) Load(path string) (canny.Image, error) {
	c.mu.RLock()
	if f, ok := c.frames[path]; ok {
		c.mu.RUnlock()
		return f, nil
	}
	c.mu.RUnlock()

	frame, err := LoadGray(path)
	if err != nil {
		return canny.Image{}, err
	}

	c.mu.Lock()
	c.frames[path] = frame
	c.mu.Unlock()

	return frame, nil
}

// Clear removes all frames from the cache.
func (c *FrameCache) Clear() {
	c.mu.Lock()
	c.frames = make(map[string]canny.Image)
	c.mu.Unlock()
}

// Evict removes a specific frame from the cache by its path.
// If the path is not in the cache, this method does nothing.
func (c *FrameCache) Evict(path string) {
	c.mu.Lock()
	delete(c.frames, path)
	c.mu.Unlock()
}

// Len returns the number of cached frames.
func (c *FrameCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.frames)
}

// LoadGray decodes an image file into an 8-bit grayscale raster.
func LoadGray(path string) (canny.Image, error) {
	img, err := Open(path)
	if err != nil {
		return canny.Image{}, err
	}
	return ToGray(img), nil
}

// Open decodes an image file after checking the size its header declares,
// so a corrupt or hostile header fails before any raster is allocated.
func Open(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load image: %w", err)
	}
	cfg, _, err := image.DecodeConfig(f)
	f.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to load image %s: %w", path, err)
	}
	if err := checkPixels(cfg.Width, cfg.Height); err != nil {
		return nil, fmt.Errorf("failed to load image %s: %w", path, err)
	}

	img, err := imgio.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load image: %w", err)
	}
	return img, nil
}

// checkPixels rejects sizes that are empty or larger than
// canny.DefaultMaxPixels. The division keeps huge headers from overflowing.
func checkPixels(cols, rows int) error {
	if cols <= 0 || rows <= 0 {
		return fmt.Errorf("bad image size %dx%d", cols, rows)
	}
	if cols > canny.DefaultMaxPixels/rows {
		return fmt.Errorf("%w: %dx%d exceeds the %d pixel limit", canny.ErrAllocationFailure, cols, rows, canny.DefaultMaxPixels)
	}
	return nil
}

// DimensionsResult contains the width and height of an image.
type DimensionsResult struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`
}

// GetDimensions returns the dimensions of an image file. The frame is loaded
// into the cache if not already present.
func GetDimensions(cache *FrameCache, path string) (*DimensionsResult, error) {
	f, err := cache.Load(path)
	if err != nil {
		return nil, err
	}
	return &DimensionsResult{
		Width:  f.Cols,
		Height: f.Rows,
	}, nil
}
