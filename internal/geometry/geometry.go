// Package geometry provides the pixel-space primitives shared by the
// reconstruction stages: bounding boxes, points, point-to-segment distance,
// overlap ratios and box unions.
//
// # Coordinate System
//
// All coordinates use the standard image convention:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
//
// Coordinates are float64 because upstream detectors and OCR engines report
// sub-pixel positions.
package geometry

import (
	"encoding/json"
	"fmt"
	"math"
)

// Point represents a 2D coordinate in pixel space.
type Point struct {
	X float64
	Y float64
}

// MarshalJSON encodes the point as an [x, y] pair.
func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{p.X, p.Y})
}

// UnmarshalJSON decodes an [x, y] pair. Extra elements are ignored.
func (p *Point) UnmarshalJSON(data []byte) error {
	var xy []float64
	if err := json.Unmarshal(data, &xy); err != nil {
		return err
	}
	if len(xy) < 2 {
		return fmt.Errorf("point needs 2 coordinates, got %d", len(xy))
	}
	p.X, p.Y = xy[0], xy[1]
	return nil
}

// Box represents a rectangular bounding box in pixel coordinates.
//
// (X1, Y1) is the top-left corner, (X2, Y2) the bottom-right corner.
// On the wire a Box is a 4-element array [x1, y1, x2, y2].
type Box struct {
	X1 float64
	Y1 float64
	X2 float64
	Y2 float64
}

// MarshalJSON encodes the box as [x1, y1, x2, y2].
func (b Box) MarshalJSON() ([]byte, error) {
	return json.Marshal([4]float64{b.X1, b.Y1, b.X2, b.Y2})
}

// UnmarshalJSON decodes a [x1, y1, x2, y2] array.
func (b *Box) UnmarshalJSON(data []byte) error {
	parsed := ParseBox(data)
	if parsed == nil {
		return fmt.Errorf("box needs 4 coordinates, got %s", data)
	}
	*b = *parsed
	return nil
}

// ParseBox decodes a raw JSON bbox. Anything that is not an array of exactly
// four numbers yields nil.
func ParseBox(raw json.RawMessage) *Box {
	if len(raw) == 0 {
		return nil
	}
	var vals []float64
	if err := json.Unmarshal(raw, &vals); err != nil || len(vals) != 4 {
		return nil
	}
	return &Box{X1: vals[0], Y1: vals[1], X2: vals[2], Y2: vals[3]}
}

// Width returns X2 - X1.
func (b Box) Width() float64 { return b.X2 - b.X1 }

// Height returns Y2 - Y1.
func (b Box) Height() float64 { return b.Y2 - b.Y1 }

// Center returns the midpoint of the box.
func (b Box) Center() Point {
	return Point{X: (b.X1 + b.X2) / 2, Y: (b.Y1 + b.Y2) / 2}
}

// Contains reports whether p lies inside the box, edges included.
func (b Box) Contains(p Point) bool {
	return b.X1 <= p.X && p.X <= b.X2 && b.Y1 <= p.Y && p.Y <= b.Y2
}

// Offset returns the box translated by (dx, dy).
func (b Box) Offset(dx, dy float64) Box {
	return Box{X1: b.X1 + dx, Y1: b.Y1 + dy, X2: b.X2 + dx, Y2: b.Y2 + dy}
}

// OverlapRatio returns the fraction of inner's own area that lies inside
// outer. A degenerate inner box (zero or negative width/height) yields 0.
func OverlapRatio(inner, outer Box) float64 {
	iw, ih := inner.Width(), inner.Height()
	if iw <= 0 || ih <= 0 {
		return 0
	}

	ixmin := math.Max(inner.X1, outer.X1)
	iymin := math.Max(inner.Y1, outer.Y1)
	ixmax := math.Min(inner.X2, outer.X2)
	iymax := math.Min(inner.Y2, outer.Y2)

	interArea := math.Max(0, ixmax-ixmin) * math.Max(0, iymax-iymin)
	return interArea / (iw * ih)
}

// IsInside reports whether at least threshold of inner's area overlaps outer.
func IsInside(inner, outer Box, threshold float64) bool {
	if inner.Width() <= 0 || inner.Height() <= 0 {
		return false
	}
	return OverlapRatio(inner, outer) >= threshold
}

// Union returns the smallest box enclosing every non-nil box, or nil when
// there are none.
func Union(boxes ...*Box) *Box {
	var out *Box
	for _, b := range boxes {
		if b == nil {
			continue
		}
		if out == nil {
			u := *b
			out = &u
			continue
		}
		out.X1 = math.Min(out.X1, b.X1)
		out.Y1 = math.Min(out.Y1, b.Y1)
		out.X2 = math.Max(out.X2, b.X2)
		out.Y2 = math.Max(out.Y2, b.Y2)
	}
	return out
}

// Distance returns the Euclidean distance between two points.
func Distance(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// PointSegmentDistance returns the distance from p to the segment a-b.
// The projection parameter is clamped to [0, 1], so the result is the
// perpendicular distance when the foot falls inside the segment and the
// nearest endpoint distance otherwise.
func PointSegmentDistance(p, a, b Point) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	l2 := dx*dx + dy*dy
	if l2 == 0 {
		return Distance(p, a)
	}

	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / l2
	t = math.Max(0, math.Min(1, t))

	return Distance(p, Point{X: a.X + t*dx, Y: a.Y + t*dy})
}

// PolylineDistance returns the minimum distance from p to any segment of the
// polyline. Polylines with fewer than two points have no segments and yield
// +Inf.
func PolylineDistance(p Point, line []Point) float64 {
	best := math.Inf(1)
	for i := 0; i+1 < len(line); i++ {
		if d := PointSegmentDistance(p, line[i], line[i+1]); d < best {
			best = d
		}
	}
	return best
}
