package diagram

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ironsheep/chart-digitizer-mcp/internal/geometry"
)

// Element is the structural element an OCR fragment or detection region
// belongs to.
type Element string

const (
	ElementXAxis     Element = "x_axis"
	ElementYAxis     Element = "y_axis"
	ElementLegendBox Element = "legend_box"
	ElementPlotArea  Element = "plot_area"
	ElementNone      Element = "none"
)

// Word is an OCR sub-fragment with its own box and confidence.
type Word struct {
	Text       string        `json:"text"`
	BBox       *geometry.Box `json:"bbox"`
	Confidence float64       `json:"confidence"`
}

// OCRFragment is one line of recognized text, already tagged with the
// structural element it was associated with upstream.
type OCRFragment struct {
	Text       string        `json:"text"`
	BBox       *geometry.Box `json:"bbox"`
	Element    Element       `json:"associated_element"`
	Confidence float64       `json:"conf,omitempty"`
	Words      []Word        `json:"words,omitempty"`
}

// UnmarshalJSON decodes a fragment, turning a malformed bbox into a nil BBox
// instead of an error.
func (f *OCRFragment) UnmarshalJSON(data []byte) error {
	var raw struct {
		Text       string          `json:"text"`
		BBox       json.RawMessage `json:"bbox"`
		Element    Element         `json:"associated_element"`
		Confidence float64         `json:"conf"`
		Words      []Word          `json:"words"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*f = OCRFragment{
		Text:       raw.Text,
		BBox:       geometry.ParseBox(raw.BBox),
		Element:    raw.Element,
		Confidence: raw.Confidence,
		Words:      raw.Words,
	}
	if f.Element == "" {
		f.Element = ElementNone
	}
	return nil
}

// UnmarshalJSON decodes a word, tolerating a malformed bbox.
func (w *Word) UnmarshalJSON(data []byte) error {
	var raw struct {
		Text       string          `json:"text"`
		BBox       json.RawMessage `json:"bbox"`
		Confidence float64         `json:"confidence"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*w = Word{Text: raw.Text, BBox: geometry.ParseBox(raw.BBox), Confidence: raw.Confidence}
	return nil
}

// Region is a detected structural region of the diagram.
type Region struct {
	Class Element       `json:"class"`
	BBox  *geometry.Box `json:"bbox"`
}

// UnmarshalJSON decodes a region, tolerating a malformed bbox.
func (r *Region) UnmarshalJSON(data []byte) error {
	var raw struct {
		Class Element         `json:"class"`
		BBox  json.RawMessage `json:"bbox"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = Region{Class: raw.Class, BBox: geometry.ParseBox(raw.BBox)}
	return nil
}

// Polyline is an ordered list of pixel points for one traced curve.
type Polyline []geometry.Point

// Offset returns a copy of the polyline translated by (dx, dy).
func (p Polyline) Offset(dx, dy float64) Polyline {
	out := make(Polyline, len(p))
	for i, pt := range p {
		out[i] = geometry.Point{X: pt.X + dx, Y: pt.Y + dy}
	}
	return out
}

// Input is everything the upstream stages produced for one diagram.
//
// Polylines are relative to the cropped plot-area image. OCR fragments are in
// diagram-image coordinates.
type Input struct {
	SourceName   string          `json:"pdf_name"`
	PageNumber   int             `json:"page_number"`
	DiagramIndex int             `json:"diagram_id"`
	ImageWidth   int             `json:"image_width"`
	ImageHeight  int             `json:"image_height"`
	DiagramBBox  json.RawMessage `json:"diagram_bbox,omitempty"`
	LegendBoxes  []Region        `json:"legend_boxes"`
	Labels       []Region        `json:"labels"`
	Lines        []Polyline      `json:"lines"`
	OCRResults   []OCRFragment   `json:"ocr_results"`
}

// NewInput returns an Input with the metadata defaults used when a field is
// absent from the upstream document.
func NewInput() *Input {
	return &Input{
		SourceName:   "N/A",
		PageNumber:   -1,
		DiagramIndex: -1,
		ImageWidth:   -1,
		ImageHeight:  -1,
	}
}

// DecodeInput parses a unified diagram document.
func DecodeInput(data []byte) (*Input, error) {
	in := NewInput()
	if err := json.Unmarshal(data, in); err != nil {
		return nil, fmt.Errorf("failed to decode diagram input: %w", err)
	}
	return in, nil
}

// LoadInput reads and parses a unified diagram document from disk.
func LoadInput(path string) (*Input, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read diagram input: %w", err)
	}
	return DecodeInput(data)
}

// Region returns the first label region of the given class.
func (in *Input) Region(class Element) (Region, bool) {
	for _, r := range in.Labels {
		if r.Class == class {
			return r, true
		}
	}
	return Region{}, false
}

// Fragments returns the OCR fragments tagged with the given element, in
// input order.
func (in *Input) Fragments(el Element) []OCRFragment {
	out := make([]OCRFragment, 0)
	for _, f := range in.OCRResults {
		if f.Element == el {
			out = append(out, f)
		}
	}
	return out
}
