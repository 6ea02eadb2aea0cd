package ocr

import (
	"strings"
	"unicode/utf8"

	"github.com/ironsheep/chart-digitizer-mcp/internal/diagram"
	"github.com/ironsheep/chart-digitizer-mcp/internal/geometry"
)

// GroupLines turns the engine's full text and its ordered word boxes into
// one fragment per non-blank line. A fragment's box is the union of its
// words' boxes and its confidence is their mean. Lines left without words
// are dropped.
func GroupLines(fullText string, words []diagram.Word) []diagram.OCRFragment {
	fragments := make([]diagram.OCRFragment, 0)
	next := 0

	for _, line := range strings.Split(fullText, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		target := utf8.RuneCountInString(strings.ReplaceAll(line, " ", ""))
		var lineWords []diagram.Word
		consumed := 0
		for next < len(words) && consumed < target {
			lineWords = append(lineWords, words[next])
			consumed += utf8.RuneCountInString(words[next].Text)
			next++
		}
		if len(lineWords) == 0 {
			continue
		}

		boxes := make([]*geometry.Box, len(lineWords))
		var conf float64
		for i, w := range lineWords {
			boxes[i] = w.BBox
			conf += w.Confidence
		}

		fragments = append(fragments, diagram.OCRFragment{
			Text:       line,
			BBox:       geometry.Union(boxes...),
			Element:    diagram.ElementNone,
			Confidence: conf / float64(len(lineWords)),
			Words:      lineWords,
		})
	}

	return fragments
}

// Associate tags each fragment with the class of the first region whose box
// contains the fragment's center. The fragments are updated in place and
// returned.
func Associate(fragments []diagram.OCRFragment, regions []diagram.Region) []diagram.OCRFragment {
	for i := range fragments {
		fragments[i].Element = diagram.ElementNone
		if fragments[i].BBox == nil {
			continue
		}
		center := fragments[i].BBox.Center()
		for _, r := range regions {
			if r.BBox != nil && r.BBox.Contains(center) {
				fragments[i].Element = r.Class
				break
			}
		}
	}
	return fragments
}

// AssociateInput tags fragments against a diagram's regions, legend boxes
// first, and stores them as the diagram's OCR results.
func AssociateInput(in *diagram.Input, fragments []diagram.OCRFragment) {
	regions := make([]diagram.Region, 0, len(in.LegendBoxes)+len(in.Labels))
	regions = append(regions, in.LegendBoxes...)
	regions = append(regions, in.Labels...)
	in.OCRResults = Associate(fragments, regions)
}
