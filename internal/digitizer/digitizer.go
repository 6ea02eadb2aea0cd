// Package digitizer orchestrates the reconstruction of one chart: it builds
// the axes, associates and calibrates the plot-area series, structures the
// legends and assembles the DigitalDiagram.
//
// A Digitizer holds only immutable options and a logger, so one instance can
// reconstruct many diagrams concurrently.
package digitizer

import (
	"fmt"

	"github.com/ironsheep/chart-digitizer-mcp/internal/axis"
	"github.com/ironsheep/chart-digitizer-mcp/internal/calibrate"
	"github.com/ironsheep/chart-digitizer-mcp/internal/diagram"
	"github.com/ironsheep/chart-digitizer-mcp/internal/geometry"
	"github.com/ironsheep/chart-digitizer-mcp/internal/legend"
	"github.com/ironsheep/chart-digitizer-mcp/internal/logger"
	"github.com/ironsheep/chart-digitizer-mcp/internal/series"
)

// Options groups the heuristics of every reconstruction stage.
type Options struct {
	Axis   axis.Options
	Series series.Options
	Legend legend.Options
}

// DefaultOptions returns the standard heuristics for every stage.
func DefaultOptions() Options {
	return Options{
		Axis:   axis.DefaultOptions(),
		Series: series.DefaultOptions(),
		Legend: legend.DefaultOptions(),
	}
}

// Digitizer reconstructs DigitalDiagrams from upstream detection output.
type Digitizer struct {
	opts Options
	log  *logger.Logger

	// onStage is called as each stage begins.
	onStage func(Stage)
}

// New creates a Digitizer. A nil logger discards all output.
func New(opts Options, log *logger.Logger) *Digitizer {
	if log == nil {
		log = logger.Nop()
	}
	return &Digitizer{opts: opts, log: log}
}

// Reconstruct builds the digital representation of one diagram. It either
// returns a complete diagram or a nil diagram with a *ReconstructError; a
// panic in any stage is recovered and reported the same way.
func (d *Digitizer) Reconstruct(in *diagram.Input) (result *diagram.DigitalDiagram, err error) {
	if in == nil {
		return nil, &ReconstructError{Stage: StageValidate, Diagram: "<nil>", Cause: ErrInvalidInput}
	}

	name := diagramName(in)
	log := d.log.WithDiagram(in.SourceName, in.PageNumber, in.DiagramIndex)
	stage := StageValidate
	begin := func(s Stage) {
		stage = s
		if d.onStage != nil {
			d.onStage(s)
		}
	}

	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = &ReconstructError{Stage: stage, Diagram: name, Cause: fmt.Errorf("panic: %v", r)}
			log.WithError(err).Errorw("Reconstruction failed", "stage", stage)
		}
	}()

	out := &diagram.DigitalDiagram{
		Metadata: diagram.Metadata{
			SourceName:   in.SourceName,
			PageNumber:   in.PageNumber,
			DiagramIndex: in.DiagramIndex,
			ImageWidth:   in.ImageWidth,
			ImageHeight:  in.ImageHeight,
			DiagramBBox:  geometry.ParseBox(in.DiagramBBox),
		},
	}

	begin(StageAxes)
	out.Axes = axis.Build(in.OCRResults, in.Labels, d.opts.Axis)
	for _, a := range out.Axes {
		log.Debugw("Axis built", "axis", a.ID, "ticks", len(a.Ticks), "scale", a.Scale)
	}

	begin(StagePlotArea)
	out.PlotAreas = d.buildPlotAreas(in, out.Axes)

	begin(StageLegends)
	out.Legends = legend.Build(in.OCRResults, in.LegendBoxes, d.opts.Legend)

	log.Debugw("Diagram reconstructed",
		"axes", len(out.Axes),
		"plot_areas", len(out.PlotAreas),
		"legends", len(out.Legends))

	return out, nil
}

// buildPlotAreas builds the single plot area of a diagram, or none when no
// plot_area region with a valid box was detected.
func (d *Digitizer) buildPlotAreas(in *diagram.Input, axes []diagram.Axis) []diagram.PlotArea {
	region, ok := in.Region(diagram.ElementPlotArea)
	if !ok || region.BBox == nil {
		return []diagram.PlotArea{}
	}

	// Polylines are traced on the cropped plot-area image.
	lines := make([]diagram.Polyline, len(in.Lines))
	for i, l := range in.Lines {
		lines[i] = l.Offset(region.BBox.X1, region.BBox.Y1)
	}

	assoc := series.Associate(lines, in.Fragments(diagram.ElementPlotArea), region.BBox, d.opts.Series)

	xAxis := firstAxis(axes, diagram.OrientationX)
	yAxis := firstAxis(axes, diagram.OrientationY)

	plot := diagram.PlotArea{
		ID:               "plot_area_1",
		RegionBBox:       region.BBox,
		Series:           make([]diagram.DataSeries, 0, len(assoc.Series)),
		OtherAnnotations: make([]diagram.Annotation, 0, len(assoc.Annotations)),
	}
	if xAxis != nil {
		id := xAxis.ID
		plot.XAxisID = &id
	}
	if yAxis != nil {
		id := yAxis.ID
		plot.YAxisID = &id
	}

	for _, s := range assoc.Series {
		s.DataPoints = calibrate.Points(s.Pixels, xAxis, yAxis)
		plot.Series = append(plot.Series, s)
	}
	plot.OtherAnnotations = append(plot.OtherAnnotations, assoc.Annotations...)

	return []diagram.PlotArea{plot}
}

func firstAxis(axes []diagram.Axis, o diagram.Orientation) *diagram.Axis {
	for i := range axes {
		if axes[i].Orientation == o {
			return &axes[i]
		}
	}
	return nil
}

func diagramName(in *diagram.Input) string {
	return fmt.Sprintf("%s page %d diagram %d", in.SourceName, in.PageNumber, in.DiagramIndex)
}
