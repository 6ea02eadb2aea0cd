// Package calibrate maps pixel coordinates to data values using an axis's
// ticks as calibration points.
package calibrate

import (
	"math"
	"sort"

	"github.com/ironsheep/chart-digitizer-mcp/internal/diagram"
)

// Value converts pixel position p into a data value on an axis with the
// given ticks and scale. Ticks need not be sorted.
//
// Inside the tick range the bracketing pair is interpolated; outside it the
// first or last pair is extrapolated. On a log scale the interpolation runs in
// log10 space when both bracketing values are positive, otherwise it falls
// back to linear for that point. It returns false when the axis has fewer
// than two ticks or the bracketing ticks share a pixel position that p is
// not exactly on.
func Value(p float64, ticks []diagram.AxisTick, scale diagram.ScaleType) (float64, bool) {
	if len(ticks) < 2 {
		return 0, false
	}
	return value(p, sortedTicks(ticks), scale)
}

// Points calibrates every point of a polyline against the x and y axes. The
// result has one entry per input point; a nil axis or one with fewer than
// two ticks yields (null, null) for every point.
func Points(line diagram.Polyline, x, y *diagram.Axis) []diagram.DataPoint {
	out := make([]diagram.DataPoint, len(line))
	if !usable(x) || !usable(y) {
		return out
	}

	xTicks, yTicks := sortedTicks(x.Ticks), sortedTicks(y.Ticks)
	for i, pt := range line {
		if v, ok := value(pt.X, xTicks, x.Scale); ok {
			out[i].X = &v
		}
		if v, ok := value(pt.Y, yTicks, y.Scale); ok {
			out[i].Y = &v
		}
	}
	return out
}

func usable(a *diagram.Axis) bool {
	return a != nil && len(a.Ticks) >= 2
}

func sortedTicks(ticks []diagram.AxisTick) []diagram.AxisTick {
	out := make([]diagram.AxisTick, len(ticks))
	copy(out, ticks)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PixelPosition < out[j].PixelPosition
	})
	return out
}

func value(p float64, ticks []diagram.AxisTick, scale diagram.ScaleType) (float64, bool) {
	t1, t2 := bracket(p, ticks)

	p1, p2 := float64(t1.PixelPosition), float64(t2.PixelPosition)
	if p1 == p2 {
		if p == p1 {
			return t1.ParsedValue, true
		}
		return 0, false
	}

	ratio := (p - p1) / (p2 - p1)
	v1, v2 := t1.ParsedValue, t2.ParsedValue
	if scale == diagram.ScaleLog && v1 > 0 && v2 > 0 {
		l1, l2 := math.Log10(v1), math.Log10(v2)
		return math.Pow(10, l1+ratio*(l2-l1)), true
	}
	return v1 + ratio*(v2-v1), true
}

// bracket returns the tick pair enclosing p, or the boundary pair used for
// extrapolation. ticks holds at least two entries sorted by position.
func bracket(p float64, ticks []diagram.AxisTick) (diagram.AxisTick, diagram.AxisTick) {
	for i := 0; i < len(ticks)-1; i++ {
		if float64(ticks[i].PixelPosition) <= p && p <= float64(ticks[i+1].PixelPosition) {
			return ticks[i], ticks[i+1]
		}
	}
	if p < float64(ticks[0].PixelPosition) {
		return ticks[0], ticks[1]
	}
	n := len(ticks)
	return ticks[n-2], ticks[n-1]
}
