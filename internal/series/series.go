// Package series matches traced polylines to the free-floating text labels
// drawn next to them inside the plot area.
package series

import (
	"fmt"
	"math"
	"sort"

	"github.com/ironsheep/chart-digitizer-mcp/internal/diagram"
	"github.com/ironsheep/chart-digitizer-mcp/internal/geometry"
)

// Options holds the association distance budget.
type Options struct {
	// DistanceRatio is the share of min(plot width, plot height) a label may
	// sit away from its curve.
	DistanceRatio float64

	// FallbackDistance is the budget in pixels when the plot box is unknown
	// or degenerate.
	FallbackDistance float64
}

// DefaultOptions returns the standard association budget.
func DefaultOptions() Options {
	return Options{
		DistanceRatio:    0.30,
		FallbackDistance: 50,
	}
}

// Result is the outcome of associating one plot area.
type Result struct {
	// Series holds labeled series first, in label reading order, followed by
	// one Unlabeled series per unclaimed non-empty polyline. DataPoints are
	// left for calibration.
	Series []diagram.DataSeries

	// Annotations holds every fragment with a box that did not become a
	// series label, in input order.
	Annotations []diagram.Annotation
}

// Threshold returns the maximum label-to-curve distance for a plot box.
func (o Options) Threshold(plot *geometry.Box) float64 {
	if plot != nil && plot.Width() > 0 && plot.Height() > 0 {
		return math.Min(plot.Width(), plot.Height()) * o.DistanceRatio
	}
	return o.FallbackDistance
}

// Associate assigns labels to polylines. Labels are taken top to bottom, then
// left to right, and each claims the nearest still-unclaimed polyline whose
// point-to-segment distance from the label center is under the threshold.
// Polylines must already be in the same coordinate space as the fragments.
func Associate(lines []diagram.Polyline, fragments []diagram.OCRFragment, plot *geometry.Box, opts Options) Result {
	threshold := opts.Threshold(plot)

	labels := make([]int, 0, len(fragments))
	for i, f := range fragments {
		if f.BBox != nil && !IsJunk(f.Text) {
			labels = append(labels, i)
		}
	}
	sort.SliceStable(labels, func(a, b int) bool {
		ba, bb := fragments[labels[a]].BBox, fragments[labels[b]].BBox
		if ba.Y1 != bb.Y1 {
			return ba.Y1 < bb.Y1
		}
		return ba.X1 < bb.X1
	})

	claimed := make([]bool, len(lines))
	usedFragment := make(map[int]bool)
	var result Result

	for _, fi := range labels {
		f := fragments[fi]
		center := f.BBox.Center()

		best, bestDist := -1, math.Inf(1)
		for li, line := range lines {
			if claimed[li] || len(line) < 2 {
				continue
			}
			d := geometry.PolylineDistance(center, line)
			if d < bestDist && d < threshold {
				best, bestDist = li, d
			}
		}
		if best < 0 {
			continue
		}

		claimed[best] = true
		usedFragment[fi] = true

		label := ParseLabel(f.Text)
		label.TextBBox = f.BBox
		result.Series = append(result.Series, diagram.DataSeries{
			ID:     seriesID(len(result.Series)),
			Label:  label,
			Pixels: lines[best],
		})
	}

	for li, line := range lines {
		if claimed[li] || len(line) == 0 {
			continue
		}
		result.Series = append(result.Series, diagram.DataSeries{
			ID:     seriesID(len(result.Series)),
			Label:  diagram.SeriesLabel{RawText: diagram.UnlabeledText},
			Pixels: line,
		})
	}

	for fi, f := range fragments {
		if f.BBox != nil && !usedFragment[fi] {
			result.Annotations = append(result.Annotations, diagram.Annotation{RawText: f.Text, TextBBox: f.BBox})
		}
	}

	return result
}

func seriesID(index int) string {
	return fmt.Sprintf("series_%d", index+1)
}
