package ocr

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"

	"github.com/ironsheep/chart-digitizer-mcp/internal/diagram"
	"github.com/ironsheep/chart-digitizer-mcp/internal/geometry"
	"github.com/ironsheep/chart-digitizer-mcp/internal/logger"
)

// Engine runs Tesseract over diagram images.
//
// Every call creates its own Tesseract client, so an Engine may be shared
// between goroutines.
type Engine struct {
	language string
	log      *logger.Logger
}

// NewEngine creates an engine for a Tesseract language list such as "eng"
// or "eng+deu". A nil logger discards all output.
func NewEngine(language string, log *logger.Logger) *Engine {
	if language == "" {
		language = "eng"
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Engine{language: language, log: log}
}

// RecognizeFile reads the image at path and returns its line fragments.
func (e *Engine) RecognizeFile(path string) ([]diagram.OCRFragment, error) {
	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetImage(path); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}
	return e.recognize(client)
}

// Recognize returns the line fragments of an in-memory image.
func (e *Engine) Recognize(img image.Image) ([]diagram.OCRFragment, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}
	return e.recognize(client)
}

// RecognizeRegion runs OCR on one rectangle of img. Fragment and word boxes
// are returned in the coordinates of the full image.
func (e *Engine) RecognizeRegion(img image.Image, box geometry.Box) ([]diagram.OCRFragment, error) {
	rect := image.Rect(int(box.X1), int(box.Y1), int(box.X2), int(box.Y2)).Intersect(img.Bounds())
	if rect.Empty() {
		return []diagram.OCRFragment{}, nil
	}

	fragments, err := e.Recognize(imaging.Crop(img, rect))
	if err != nil {
		return nil, err
	}

	dx, dy := float64(rect.Min.X), float64(rect.Min.Y)
	for i := range fragments {
		fragments[i].BBox = offsetBox(fragments[i].BBox, dx, dy)
		for j := range fragments[i].Words {
			fragments[i].Words[j].BBox = offsetBox(fragments[i].Words[j].BBox, dx, dy)
		}
	}
	return fragments, nil
}

func (e *Engine) recognize(client *gosseract.Client) ([]diagram.OCRFragment, error) {
	if err := client.SetLanguage(e.language); err != nil {
		return nil, fmt.Errorf("failed to set language: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return nil, fmt.Errorf("OCR failed: %w", err)
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("failed to get word boxes: %w", err)
	}

	words := make([]diagram.Word, 0, len(boxes))
	for _, b := range boxes {
		if b.Word == "" {
			continue
		}
		words = append(words, diagram.Word{
			Text: b.Word,
			BBox: &geometry.Box{
				X1: float64(b.Box.Min.X),
				Y1: float64(b.Box.Min.Y),
				X2: float64(b.Box.Max.X),
				Y2: float64(b.Box.Max.Y),
			},
			Confidence: float64(b.Confidence) / 100.0,
		})
	}

	fragments := GroupLines(text, words)
	e.log.Debugw("OCR complete", "language", e.language, "words", len(words), "lines", len(fragments))
	return fragments, nil
}

func offsetBox(b *geometry.Box, dx, dy float64) *geometry.Box {
	if b == nil {
		return nil
	}
	moved := b.Offset(dx, dy)
	return &moved
}
