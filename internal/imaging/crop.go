package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/chart-digitizer-mcp/internal/geometry"
)

// EncodedImage is a PNG image ready to be returned to an MCP client.
type EncodedImage struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// Encode renders img as a base64 PNG.
//
// Returns:
//   - *EncodedImage: The encoded image with its dimensions and MIME type.
//   - error: Non-nil if PNG encoding fails.
func Encode(img image.Image) (*EncodedImage, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	bounds := img.Bounds()
	return &EncodedImage{
		Width:       bounds.Dx(),
		Height:      bounds.Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}

// CropBox cuts a diagram region out of img and optionally rescales it.
//
// Parameters:
//   - img: The source image.
//   - box: The region in image pixels. Fractional edges are truncated to whole
//     pixels and the box is clipped to the image bounds.
//   - scale: Output scale factor. 1.0 (or any value <= 0) keeps the cropped size;
//     other values resize with Lanczos resampling.
//
// Returns:
//   - image.Image: The cropped (and possibly resized) image.
//   - error: Non-nil if the region is invalid.
//
// # Errors
//
//   - Returns error if x1 >= x2 or y1 >= y2
//   - Returns error if the box lies entirely outside the image
//   - Returns error if scaling would produce an image smaller than 1x1
func CropBox(img image.Image, box geometry.Box, scale float64) (image.Image, error) {
	if box.X2 <= box.X1 || box.Y2 <= box.Y1 {
		return nil, fmt.Errorf("invalid crop region: x1 must be < x2, y1 must be < y2")
	}
	rect := image.Rect(int(box.X1), int(box.Y1), int(box.X2), int(box.Y2)).Intersect(img.Bounds())
	if rect.Empty() {
		return nil, fmt.Errorf("crop region (%.0f,%.0f)-(%.0f,%.0f) outside image bounds %v",
			box.X1, box.Y1, box.X2, box.Y2, img.Bounds())
	}

	var cropped image.Image = imaging.Crop(img, rect)

	if scale != 1.0 && scale > 0 {
		newWidth := int(float64(rect.Dx()) * scale)
		newHeight := int(float64(rect.Dy()) * scale)
		if newWidth < 1 || newHeight < 1 {
			return nil, fmt.Errorf("scale %.3f leaves an empty image", scale)
		}
		cropped = imaging.Resize(cropped, newWidth, newHeight, imaging.Lanczos)
	}

	return cropped, nil
}
