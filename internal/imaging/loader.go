package imaging

import (
	"fmt"
	"image"
	_ "image/gif" // Register GIF format decoder
	"path/filepath"
	"sync"

	"github.com/anthonynsimon/bild/imgio"

	"github.com/ironsheep/chart-digitizer-mcp/internal/diagram"
)

// ImageCache keeps decoded diagram images in memory so that OCR, overlay
// rendering and dimension lookups on the same file decode it only once.
//
// Entries are keyed by absolute path, so "./a.png" and "/work/a.png" share
// one entry. Cached images stay in memory until Evict or Clear.
//
// ImageCache is safe for concurrent use by multiple goroutines.
type ImageCache struct {
	mu     sync.RWMutex
	images map[string]image.Image
}

// NewImageCache creates an empty image cache.
func NewImageCache() *ImageCache {
	return &ImageCache{
		images: make(map[string]image.Image),
	}
}

// Load retrieves an image from the cache or reads it from disk if not cached.
//
// Parameters:
//   - path: Absolute or relative file path to the image. Supported formats are
//     PNG, JPEG, and GIF.
//
// Returns:
//   - image.Image: The decoded image. The concrete type depends on the image format
//     and color model (e.g., *image.RGBA, *image.NRGBA, *image.YCbCr).
//   - error: Non-nil if the file cannot be opened or decoded.
//
// The path is resolved to an absolute path before the lookup, so a relative and
// an absolute path to the same file share one cache entry.
//
// # Errors
//
//   - Returns error if the file does not exist or cannot be read
//   - Returns error if the file is not a valid PNG, JPEG, or GIF image
func (c *ImageCache) Load(path string) (image.Image, error) {
	key := cacheKey(path)

	c.mu.RLock()
	if img, ok := c.images[key]; ok {
		c.mu.RUnlock()
		return img, nil
	}
	c.mu.RUnlock()

	img, err := imgio.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load image %s: %w", path, err)
	}

	c.mu.Lock()
	c.images[key] = img
	c.mu.Unlock()

	return img, nil
}

// Len reports the number of cached images.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.images)
}

// Clear removes every cached image.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.images = make(map[string]image.Image)
	c.mu.Unlock()
}

// Evict removes a specific image from the cache.
//
// Parameters:
//   - path: Any path to the image; it is resolved the same way Load resolves it.
//
// If the path is not in the cache, this method does nothing.
// After eviction, the next Load() call for this path will read from disk.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.images, cacheKey(path))
	c.mu.Unlock()
}

func cacheKey(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

// DimensionsResult contains the width and height of an image.
type DimensionsResult struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// GetDimensions returns the width and height of an image.
//
// The image is loaded into the cache if not already present, so a later OCR or
// overlay call on the same file does not decode it again.
//
// Parameters:
//   - cache: The image cache to use for loading. Must not be nil.
//   - path: Path to the image file.
//
// Returns:
//   - *DimensionsResult: The image dimensions.
//   - error: Non-nil if the image cannot be loaded.
func GetDimensions(cache *ImageCache, path string) (*DimensionsResult, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	return &DimensionsResult{
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}, nil
}

// FillDimensions copies the image size into a diagram input whose width or
// height is unknown (not positive). Known values are left alone.
func FillDimensions(in *diagram.Input, img image.Image) {
	bounds := img.Bounds()
	if in.ImageWidth <= 0 {
		in.ImageWidth = bounds.Dx()
	}
	if in.ImageHeight <= 0 {
		in.ImageHeight = bounds.Dy()
	}
}
