// Package overlay draws the upstream detections of a diagram on top of its
// image so that region, OCR and curve-tracing results can be checked by eye.
package overlay

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/ironsheep/chart-digitizer-mcp/internal/diagram"
	"github.com/ironsheep/chart-digitizer-mcp/internal/geometry"
)

// maxTagLen caps the element name printed under an OCR box.
const maxTagLen = 10

// goldenAngle spreads consecutive series hues around the color wheel.
const goldenAngle = 137.508

var (
	plotAreaColor = color.NRGBA{0, 0, 255, 255}
	xAxisColor    = color.NRGBA{255, 0, 0, 255}
	yAxisColor    = color.NRGBA{0, 255, 0, 255}
	otherColor    = color.NRGBA{0, 255, 255, 255}
	ocrBoxColor   = color.NRGBA{180, 180, 180, 255}
	ocrTagColor   = color.NRGBA{100, 100, 100, 255}
)

// RegionColor returns the outline color used for a detection class.
func RegionColor(class diagram.Element) color.NRGBA {
	switch class {
	case diagram.ElementPlotArea:
		return plotAreaColor
	case diagram.ElementXAxis:
		return xAxisColor
	case diagram.ElementYAxis:
		return yAxisColor
	default:
		return otherColor
	}
}

// SeriesColor returns the color of the i-th traced curve. The palette is
// deterministic so repeated renders of a diagram match.
func SeriesColor(i int) color.NRGBA {
	hue := math.Mod(float64(i)*goldenAngle, 360)
	r, g, b := colorful.Hsv(hue, 0.75, 0.85).Clamped().RGB255()
	return color.NRGBA{r, g, b, 255}
}

// Render returns an annotated copy of img: label regions and legend boxes
// outlined by class, OCR fragment boxes in gray tagged with their element,
// and every polyline translated from plot-area space into image space.
func Render(img image.Image, in *diagram.Input) *image.NRGBA {
	dst := imaging.Clone(img)
	bounds := dst.Bounds()

	regions := make([]diagram.Region, 0, len(in.Labels)+len(in.LegendBoxes))
	regions = append(regions, in.Labels...)
	regions = append(regions, in.LegendBoxes...)
	for _, r := range regions {
		rect, ok := clip(r.BBox, bounds)
		if !ok {
			continue
		}
		c := RegionColor(r.Class)
		drawRect(dst, rect, c, 2)

		y := rect.Min.Y - 5
		if rect.Min.Y <= 10 {
			y = rect.Min.Y + 15
		}
		drawLabel(dst, rect.Min.X, y, string(r.Class), c)
	}

	for _, f := range in.OCRResults {
		rect, ok := clip(f.BBox, bounds)
		if !ok {
			continue
		}
		drawRect(dst, rect, ocrBoxColor, 1)

		tag := []rune(string(f.Element))
		if len(tag) > maxTagLen {
			tag = tag[:maxTagLen]
		}
		y := rect.Max.Y + 12
		if y > bounds.Max.Y-5 {
			y = rect.Min.Y - 5
		}
		drawLabel(dst, rect.Min.X, y, string(tag), ocrTagColor)
	}

	var dx, dy float64
	if plot, ok := in.Region(diagram.ElementPlotArea); ok && plot.BBox != nil {
		dx, dy = math.Trunc(plot.BBox.X1), math.Trunc(plot.BBox.Y1)
	}
	for i, line := range in.Lines {
		if len(line) < 2 {
			continue
		}
		c := SeriesColor(i)
		moved := line.Offset(dx, dy)
		for j := 1; j < len(moved); j++ {
			drawLine(dst, moved[j-1], moved[j], c, 2)
		}
	}

	return dst
}

// Save writes an overlay as PNG.
func Save(path string, img image.Image) error {
	if err := imgio.Save(path, img, imgio.PNGEncoder()); err != nil {
		return fmt.Errorf("failed to save overlay %s: %w", path, err)
	}
	return nil
}

// clip converts a box to whole pixels inside bounds. Boxes that are missing
// or collapse to nothing after clipping are rejected.
func clip(b *geometry.Box, bounds image.Rectangle) (image.Rectangle, bool) {
	if b == nil {
		return image.Rectangle{}, false
	}
	x1, y1, x2, y2 := int(b.X1), int(b.Y1), int(b.X2), int(b.Y2)
	if x2 <= x1 || y2 <= y1 {
		return image.Rectangle{}, false
	}
	rect := image.Rect(x1, y1, x2, y2).Intersect(bounds)
	return rect, !rect.Empty()
}

// drawRect outlines rect with lines of the given thickness drawn inward.
func drawRect(dst *image.NRGBA, rect image.Rectangle, c color.Color, thickness int) {
	src := image.NewUniform(c)
	for t := 0; t < thickness; t++ {
		r := rect.Inset(t)
		if r.Empty() {
			return
		}
		edges := []image.Rectangle{
			image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+1),
			image.Rect(r.Min.X, r.Max.Y-1, r.Max.X, r.Max.Y),
			image.Rect(r.Min.X, r.Min.Y, r.Min.X+1, r.Max.Y),
			image.Rect(r.Max.X-1, r.Min.Y, r.Max.X, r.Max.Y),
		}
		for _, e := range edges {
			draw.Draw(dst, e, src, image.Point{}, draw.Src)
		}
	}
}

// drawLine draws a segment with Bresenham's algorithm, stamping a square
// brush of the given width at every step. Pixels outside dst are skipped.
func drawLine(dst *image.NRGBA, a, b geometry.Point, c color.NRGBA, width int) {
	x0, y0 := int(a.X), int(a.Y)
	x1, y1 := int(b.X), int(b.Y)

	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy

	for {
		stamp(dst, x0, y0, c, width)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

func stamp(dst *image.NRGBA, x, y int, c color.NRGBA, width int) {
	for oy := 0; oy < width; oy++ {
		for ox := 0; ox < width; ox++ {
			p := image.Pt(x+ox, y+oy)
			if p.In(dst.Bounds()) {
				dst.SetNRGBA(p.X, p.Y, c)
			}
		}
	}
}

// drawLabel writes text with its baseline at (x, y).
func drawLabel(dst *image.NRGBA, x, y int, text string, c color.Color) {
	if text == "" {
		return
	}
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(text)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
