// Package diagram defines the data exchanged with the reconstruction engine:
// the upstream input contract (detection regions, OCR fragments, polylines)
// and the calibrated DigitalDiagram it produces.
//
// Every output entity is built once per reconstruction and never shared
// between diagrams. Optional values are pointers so that an absent bbox or an
// uncalibrated coordinate serializes as null.
package diagram

import (
	"encoding/json"

	"github.com/ironsheep/chart-digitizer-mcp/internal/geometry"
)

// Orientation of an axis.
type Orientation string

const (
	OrientationX Orientation = "x"
	OrientationY Orientation = "y"
)

// ScaleType is the value-to-pixel mapping of an axis.
type ScaleType string

const (
	ScaleLinear ScaleType = "linear"
	ScaleLog    ScaleType = "log"
)

// UnlabeledText is the label given to a polyline no text was matched to.
const UnlabeledText = "Unlabeled"

// AxisTick pairs a parsed tick value with its pixel position along the axis.
type AxisTick struct {
	RawText       string        `json:"raw_text"`
	ParsedValue   float64       `json:"parsed_value"`
	PixelPosition int           `json:"pixel_position"`
	TextBBox      *geometry.Box `json:"text_bbox_px"`
}

// AxisLabel is the composite axis title and its decomposition.
type AxisLabel struct {
	RawText        string        `json:"raw_text"`
	ParsedQuantity string        `json:"parsed_quantity"`
	ParsedSymbol   string        `json:"parsed_symbol"`
	ParsedUnit     string        `json:"parsed_unit"`
	TextBBox       *geometry.Box `json:"text_bbox_px"`
}

// Axis is one calibrated chart axis.
type Axis struct {
	ID          string        `json:"axis_id"`
	Orientation Orientation   `json:"orientation"`
	Label       AxisLabel     `json:"label_text"`
	Ticks       []AxisTick    `json:"ticks"`
	Scale       ScaleType     `json:"scale_type"`
	RegionBBox  *geometry.Box `json:"region_bbox_px"`
}

// SeriesLabel is the text matched to a data series.
type SeriesLabel struct {
	RawText         string        `json:"raw_text"`
	ParsedParameter *string       `json:"parsed_parameter"`
	ParsedValue     *string       `json:"parsed_value_str"`
	TextBBox        *geometry.Box `json:"text_bbox_px"`
}

// DataPoint is a calibrated coordinate. A nil component could not be
// calibrated and serializes as null.
type DataPoint struct {
	X *float64
	Y *float64
}

// MarshalJSON encodes the point as [x, y] with nulls for missing values.
func (d DataPoint) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]*float64{d.X, d.Y})
}

// UnmarshalJSON decodes an [x, y] pair that may contain nulls.
func (d *DataPoint) UnmarshalJSON(data []byte) error {
	var xy [2]*float64
	if err := json.Unmarshal(data, &xy); err != nil {
		return err
	}
	d.X, d.Y = xy[0], xy[1]
	return nil
}

// Valid reports whether both components were calibrated.
func (d DataPoint) Valid() bool {
	return d.X != nil && d.Y != nil
}

// DataSeries is one traced curve with its label and calibrated values.
type DataSeries struct {
	ID         string      `json:"series_id"`
	Label      SeriesLabel `json:"label_text"`
	Pixels     Polyline    `json:"line_pixel_coordinates"`
	DataPoints []DataPoint `json:"calculated_data_points"`
}

// Annotation is plot-area text that did not become a series label.
type Annotation struct {
	RawText  string        `json:"raw_text"`
	TextBBox *geometry.Box `json:"text_bbox_px"`
}

// PlotArea holds the data series drawn inside the plot region.
type PlotArea struct {
	ID               string        `json:"plot_area_id"`
	RegionBBox       *geometry.Box `json:"region_bbox_px"`
	XAxisID          *string       `json:"associated_x_axis_id"`
	YAxisID          *string       `json:"associated_y_axis_id"`
	Series           []DataSeries  `json:"data_series"`
	OtherAnnotations []Annotation  `json:"other_annotations_in_plot_area"`
}

// LegendTitle is the heading line of a legend box.
type LegendTitle struct {
	RawText  string        `json:"raw_text"`
	TextBBox *geometry.Box `json:"text_bbox_px"`
}

// LegendItem is one parameter=value line of a legend box.
type LegendItem struct {
	RawText         string        `json:"raw_text"`
	ParsedParameter *string       `json:"parsed_parameter"`
	ParsedValue     string        `json:"parsed_value_string"`
	TextBBox        *geometry.Box `json:"text_bbox_px"`
}

// LegendEntry is one structured legend box.
type LegendEntry struct {
	ID         string        `json:"legend_id"`
	RegionBBox *geometry.Box `json:"region_bbox_px"`
	Title      LegendTitle   `json:"title_text"`
	Items      []LegendItem  `json:"items"`
}

// Metadata identifies the diagram the reconstruction came from.
type Metadata struct {
	SourceName   string        `json:"source_pdf_name"`
	PageNumber   int           `json:"source_page_number"`
	DiagramIndex int           `json:"diagram_id_on_page"`
	ImageWidth   int           `json:"original_image_width_px"`
	ImageHeight  int           `json:"original_image_height_px"`
	DiagramBBox  *geometry.Box `json:"detected_diagram_bbox_on_page_px"`
}

// DigitalDiagram is the calibrated, structured representation of one chart.
type DigitalDiagram struct {
	Metadata  Metadata      `json:"diagram_metadata"`
	Axes      []Axis        `json:"axes_collection"`
	PlotAreas []PlotArea    `json:"plot_areas"`
	Legends   []LegendEntry `json:"legends"`
}

// AxisByID returns the axis with the given id.
func (d *DigitalDiagram) AxisByID(id string) (*Axis, bool) {
	for i := range d.Axes {
		if d.Axes[i].ID == id {
			return &d.Axes[i], true
		}
	}
	return nil, false
}
