package ocr

import (
	"testing"

	"github.com/ironsheep/chart-digitizer-mcp/internal/diagram"
	"github.com/ironsheep/chart-digitizer-mcp/internal/geometry"
)

func word(text string, x1, y1, x2, y2, conf float64) diagram.Word {
	return diagram.Word{Text: text, BBox: &geometry.Box{X1: x1, Y1: y1, X2: x2, Y2: y2}, Confidence: conf}
}

func TestGroupLines(t *testing.T) {
	fullText := "Conditions:\n\nVGS = 15V\n  250  \n"
	words := []diagram.Word{
		word("Conditions:", 10, 10, 90, 22, 0.9),
		word("VGS", 10, 30, 40, 42, 0.8),
		word("=", 45, 30, 50, 42, 0.6),
		word("15V", 55, 30, 80, 42, 0.7),
		word("250", 5, 50, 30, 62, 0.95),
	}

	got := GroupLines(fullText, words)

	if len(got) != 3 {
		t.Fatalf("got %d lines, want 3: %+v", len(got), got)
	}

	line := got[1]
	if line.Text != "VGS = 15V" || len(line.Words) != 3 {
		t.Errorf("second line = %q with %d words", line.Text, len(line.Words))
	}
	want := geometry.Box{X1: 10, Y1: 30, X2: 80, Y2: 42}
	if line.BBox == nil || *line.BBox != want {
		t.Errorf("line box = %+v, want %+v", line.BBox, want)
	}
	if line.Confidence < 0.6999 || line.Confidence > 0.7001 {
		t.Errorf("line confidence = %v, want 0.7", line.Confidence)
	}
	if line.Element != diagram.ElementNone {
		t.Errorf("ungrouped line element = %q, want none", line.Element)
	}

	if got[2].Text != "250" || len(got[2].Words) != 1 {
		t.Errorf("third line = %+v", got[2])
	}
}

func TestGroupLines_MultibyteText(t *testing.T) {
	words := []diagram.Word{
		word("T₁", 0, 0, 10, 10, 1),
		word("=", 12, 0, 14, 10, 1),
		word("-40", 16, 0, 30, 10, 1),
		word("°C", 32, 0, 40, 10, 1),
		word("μs", 0, 20, 10, 30, 1),
	}

	got := GroupLines("T₁ = -40 °C\nμs", words)

	if len(got) != 2 || len(got[0].Words) != 4 || got[1].Text != "μs" {
		t.Errorf("lines = %+v", got)
	}
}

func TestGroupLines_RunsOutOfWords(t *testing.T) {
	got := GroupLines("first line\nsecond line", []diagram.Word{word("first", 0, 0, 10, 10, 1)})

	if len(got) != 1 || got[0].Text != "first line" {
		t.Errorf("lines = %+v", got)
	}
}

func TestAssociate(t *testing.T) {
	regions := []diagram.Region{
		{Class: diagram.ElementLegendBox, BBox: &geometry.Box{X1: 100, Y1: 0, X2: 200, Y2: 100}},
		{Class: diagram.ElementPlotArea, BBox: &geometry.Box{X1: 50, Y1: 0, X2: 500, Y2: 400}},
		{Class: diagram.ElementXAxis},
	}
	fragments := []diagram.OCRFragment{
		{Text: "legend", BBox: &geometry.Box{X1: 110, Y1: 10, X2: 150, Y2: 20}},
		{Text: "plot", BBox: &geometry.Box{X1: 300, Y1: 200, X2: 340, Y2: 210}},
		{Text: "outside", BBox: &geometry.Box{X1: 0, Y1: 450, X2: 40, Y2: 460}},
		{Text: "no box", Element: diagram.ElementPlotArea},
	}

	got := Associate(fragments, regions)

	want := []diagram.Element{diagram.ElementLegendBox, diagram.ElementPlotArea, diagram.ElementNone, diagram.ElementNone}
	for i, f := range got {
		if f.Element != want[i] {
			t.Errorf("%s: element = %q, want %q", f.Text, f.Element, want[i])
		}
	}
}

func TestAssociateInput_LegendBoxesFirst(t *testing.T) {
	in := diagram.NewInput()
	in.Labels = []diagram.Region{{Class: diagram.ElementPlotArea, BBox: &geometry.Box{X2: 500, Y2: 500}}}
	in.LegendBoxes = []diagram.Region{{Class: diagram.ElementLegendBox, BBox: &geometry.Box{X1: 10, Y1: 10, X2: 100, Y2: 100}}}

	AssociateInput(in, []diagram.OCRFragment{
		{Text: "Conditions:", BBox: &geometry.Box{X1: 20, Y1: 20, X2: 80, Y2: 30}},
		{Text: "VGS = 15V", BBox: &geometry.Box{X1: 200, Y1: 200, X2: 280, Y2: 220}},
	})

	if len(in.OCRResults) != 2 {
		t.Fatalf("got %d OCR results, want 2", len(in.OCRResults))
	}
	if in.OCRResults[0].Element != diagram.ElementLegendBox || in.OCRResults[1].Element != diagram.ElementPlotArea {
		t.Errorf("elements = %q, %q", in.OCRResults[0].Element, in.OCRResults[1].Element)
	}
}
