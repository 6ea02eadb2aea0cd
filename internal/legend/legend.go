// Package legend structures the text inside legend boxes into a title and
// parameter=value items.
package legend

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/ironsheep/chart-digitizer-mcp/internal/diagram"
	"github.com/ironsheep/chart-digitizer-mcp/internal/geometry"
)

// Options holds the legend grouping heuristics.
type Options struct {
	// ContainmentRatio is the minimum share of a fragment's own area that
	// must lie inside the legend box.
	ContainmentRatio float64

	// MergeVerticalRatio bounds the vertical center offset of two merged
	// fragments, relative to the first fragment's height.
	MergeVerticalRatio float64

	// MergeMinGap and MergeMaxGap bound, exclusively, the horizontal gap in
	// pixels between two merged fragments. A negative gap is an overlap.
	MergeMinGap float64
	MergeMaxGap float64
}

// DefaultOptions returns the standard legend heuristics.
func DefaultOptions() Options {
	return Options{
		ContainmentRatio:   0.10,
		MergeVerticalRatio: 0.70,
		MergeMinGap:        -10,
		MergeMaxGap:        30,
	}
}

var (
	itemRe      = regexp.MustCompile(`^([A-Za-z0-9_]+)\s*=\s*(.*)`)
	equalsSpace = regexp.MustCompile(`\s*=\s*`)
)

// Build returns one entry per legend box that holds a title or at least one
// item. Boxes without a valid bbox are skipped.
func Build(fragments []diagram.OCRFragment, boxes []diagram.Region, opts Options) []diagram.LegendEntry {
	var candidates []diagram.OCRFragment
	for _, f := range fragments {
		if f.Element == diagram.ElementLegendBox && f.BBox != nil && strings.TrimSpace(f.Text) != "" {
			candidates = append(candidates, f)
		}
	}

	entries := make([]diagram.LegendEntry, 0, len(boxes))
	for _, box := range boxes {
		if box.BBox == nil {
			continue
		}

		var inside []diagram.OCRFragment
		for _, f := range candidates {
			if geometry.IsInside(*f.BBox, *box.BBox, opts.ContainmentRatio) {
				inside = append(inside, f)
			}
		}
		if len(inside) == 0 {
			continue
		}

		entry, ok := buildEntry(inside, box, opts)
		if !ok {
			continue
		}
		entry.ID = fmt.Sprintf("legend_%d", len(entries)+1)
		entries = append(entries, entry)
	}
	return entries
}

func buildEntry(fragments []diagram.OCRFragment, box diagram.Region, opts Options) (diagram.LegendEntry, bool) {
	sort.SliceStable(fragments, func(i, j int) bool {
		bi, bj := fragments[i].BBox, fragments[j].BBox
		if bi.Y1 != bj.Y1 {
			return bi.Y1 < bj.Y1
		}
		return bi.X1 < bj.X1
	})

	entry := diagram.LegendEntry{RegionBBox: box.BBox, Items: []diagram.LegendItem{}}

	items := fragments
	if strings.Contains(fragments[0].Text, ":") {
		entry.Title = diagram.LegendTitle{RawText: fragments[0].Text, TextBBox: fragments[0].BBox}
		items = fragments[1:]
	}

	for i := 0; i < len(items); i++ {
		parts := []string{items[i].Text}
		bboxes := []*geometry.Box{items[i].BBox}
		if i+1 < len(items) && shouldMerge(items[i], items[i+1], opts) {
			parts = append(parts, strings.TrimSpace(items[i+1].Text))
			bboxes = append(bboxes, items[i+1].BBox)
			i++
		}

		text := strings.TrimSpace(equalsSpace.ReplaceAllString(strings.Join(parts, " "), "="))
		item := ParseItem(text)
		item.TextBBox = geometry.Union(bboxes...)
		entry.Items = append(entry.Items, item)
	}

	if entry.Title.RawText == "" && len(entry.Items) == 0 {
		return entry, false
	}
	return entry, true
}

// shouldMerge reports whether b is the "= value" half of a key that OCR split
// off from a, such as a subscripted symbol followed by its value.
func shouldMerge(a, b diagram.OCRFragment, opts Options) bool {
	if len(strings.Fields(a.Text)) > 2 || strings.Contains(a.Text, "=") {
		return false
	}
	if !strings.HasPrefix(strings.TrimSpace(b.Text), "=") {
		return false
	}

	h := a.BBox.Height()
	if h <= 0 {
		return false
	}
	if math.Abs(a.BBox.Center().Y-b.BBox.Center().Y) >= h*opts.MergeVerticalRatio {
		return false
	}

	gap := b.BBox.X1 - a.BBox.X2
	return gap > opts.MergeMinGap && gap < opts.MergeMaxGap
}

// ParseItem splits "name=value" legend text. Text that does not match keeps
// a nil parameter and the whole text as the value.
func ParseItem(text string) diagram.LegendItem {
	if m := itemRe.FindStringSubmatch(text); m != nil {
		param := strings.TrimSpace(m[1])
		return diagram.LegendItem{
			RawText:         text,
			ParsedParameter: &param,
			ParsedValue:     strings.TrimSpace(m[2]),
		}
	}
	return diagram.LegendItem{RawText: text, ParsedValue: text}
}
