// Package axis turns axis-tagged OCR fragments into calibrated axes: it
// separates tick labels from title text, builds the ordered and deduplicated
// tick list, decomposes the title and detects linear versus log scale.
package axis

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ironsheep/chart-digitizer-mcp/internal/diagram"
	"github.com/ironsheep/chart-digitizer-mcp/internal/numparse"
)

// Options holds the tunable axis heuristics.
type Options struct {
	// LogStepTolerance is the largest stddev/|mean| ratio of successive
	// log10 tick steps still considered geometric (log scale).
	LogStepTolerance float64

	// ValueDecimals is the rounding applied to tick values for deduplication.
	ValueDecimals int

	// PixelBucket is the grid size, in pixels, tick positions are bucketed to
	// for deduplication.
	PixelBucket float64
}

// DefaultOptions returns the standard axis heuristics.
func DefaultOptions() Options {
	return Options{
		LogStepTolerance: 0.25,
		ValueDecimals:    4,
		PixelBucket:      5,
	}
}

var longAlphaRe = regexp.MustCompile(`[a-zA-Z]{4,}`)

// orientations lists the axes in build order.
var orientations = []struct {
	element     diagram.Element
	orientation diagram.Orientation
}{
	{diagram.ElementXAxis, diagram.OrientationX},
	{diagram.ElementYAxis, diagram.OrientationY},
}

// Build returns the x axis then the y axis. An axis is omitted when none of
// its fragments is a tick candidate or there is no matching detection region.
func Build(fragments []diagram.OCRFragment, regions []diagram.Region, opts Options) []diagram.Axis {
	axes := make([]diagram.Axis, 0, 2)

	for _, o := range orientations {
		region, ok := findRegion(regions, o.element)
		if !ok {
			continue
		}

		var titleParts, tickParts []diagram.OCRFragment
		for _, f := range fragments {
			if f.Element != o.element {
				continue
			}
			// Ticks need a position; title text is kept without one.
			if IsTickCandidate(f.Text) {
				if f.BBox != nil {
					tickParts = append(tickParts, f)
				}
			} else {
				titleParts = append(titleParts, f)
			}
		}
		if len(tickParts) == 0 {
			continue
		}

		axes = append(axes, buildAxis(o.orientation, region, titleParts, tickParts, opts))
	}

	return axes
}

func buildAxis(orientation diagram.Orientation, region diagram.Region, titleParts, tickParts []diagram.OCRFragment, opts Options) diagram.Axis {

	sort.SliceStable(titleParts, func(i, j int) bool {
		return leadingEdge(titleParts[i], orientation) < leadingEdge(titleParts[j], orientation)
	})

	ticks := BuildTicks(tickParts, orientation, opts)

	return diagram.Axis{
		ID:          fmt.Sprintf("%s_1", orientation),
		Orientation: orientation,
		Label:       ParseTitle(titleParts),
		Ticks:       ticks,
		Scale:       DetectScale(ticks, opts.LogStepTolerance),
		RegionBBox:  region.BBox,
	}
}

// IsTickCandidate reports whether text looks like a tick label: it parses as
// a number, or it has no run of 4+ letters and contains a digit or is short.
func IsTickCandidate(text string) bool {
	if _, ok := numparse.Parse(text); ok {
		return true
	}
	if longAlphaRe.MatchString(text) {
		return false
	}
	return strings.IndexFunc(text, unicode.IsDigit) >= 0 || utf8.RuneCountInString(text) < 6
}

// BuildTicks parses tick fragments, orders them by their center along the
// axis and drops duplicates. Two ticks whose value rounds to the same
// ValueDecimals and whose position falls in the same PixelBucket are the
// same physical tick; the first one seen is kept.
func BuildTicks(fragments []diagram.OCRFragment, orientation diagram.Orientation, opts Options) []diagram.AxisTick {
	withBox := make([]diagram.OCRFragment, 0, len(fragments))
	for _, f := range fragments {
		if f.BBox != nil {
			withBox = append(withBox, f)
		}
	}
	sort.SliceStable(withBox, func(i, j int) bool {
		return centerAlong(withBox[i], orientation) < centerAlong(withBox[j], orientation)
	})

	type dedupKey struct {
		value  float64
		bucket float64
	}
	seen := make(map[dedupKey]bool)
	scale := math.Pow10(opts.ValueDecimals)
	bucket := opts.PixelBucket
	if bucket <= 0 {
		bucket = 1
	}

	ticks := make([]diagram.AxisTick, 0, len(withBox))
	for _, f := range withBox {
		value, ok := numparse.Parse(f.Text)
		if !ok {
			continue
		}
		pos := centerAlong(f, orientation)
		key := dedupKey{
			value:  math.RoundToEven(value*scale) / scale,
			bucket: math.RoundToEven(pos / bucket),
		}
		if seen[key] {
			continue
		}
		seen[key] = true

		ticks = append(ticks, diagram.AxisTick{
			RawText:       f.Text,
			ParsedValue:   value,
			PixelPosition: int(pos),
			TextBBox:      f.BBox,
		})
	}
	return ticks
}

func findRegion(regions []diagram.Region, el diagram.Element) (diagram.Region, bool) {
	for _, r := range regions {
		if r.Class == el {
			return r, true
		}
	}
	return diagram.Region{}, false
}

// centerAlong is the fragment's center coordinate along the axis direction.
func centerAlong(f diagram.OCRFragment, o diagram.Orientation) float64 {
	c := f.BBox.Center()
	if o == diagram.OrientationX {
		return c.X
	}
	return c.Y
}

// leadingEdge is the fragment's starting coordinate along the axis direction,
// zero for a fragment without a box.
func leadingEdge(f diagram.OCRFragment, o diagram.Orientation) float64 {
	if f.BBox == nil {
		return 0
	}
	if o == diagram.OrientationX {
		return f.BBox.X1
	}
	return f.BBox.Y1
}
