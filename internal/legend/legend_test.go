package legend

import (
	"testing"

	"github.com/ironsheep/chart-digitizer-mcp/internal/diagram"
	"github.com/ironsheep/chart-digitizer-mcp/internal/geometry"
)

func legendFrag(text string, x1, y1, x2, y2 float64) diagram.OCRFragment {
	return diagram.OCRFragment{
		Text:    text,
		BBox:    &geometry.Box{X1: x1, Y1: y1, X2: x2, Y2: y2},
		Element: diagram.ElementLegendBox,
	}
}

func legendBox(x1, y1, x2, y2 float64) diagram.Region {
	return diagram.Region{Class: diagram.ElementLegendBox, BBox: &geometry.Box{X1: x1, Y1: y1, X2: x2, Y2: y2}}
}

func TestBuild_MergesSplitKeyValue(t *testing.T) {
	fragments := []diagram.OCRFragment{
		legendFrag("Conditions:", 10, 10, 90, 22),
		legendFrag("T_j", 10, 30, 30, 42),
		legendFrag("= -40 °C", 37, 30, 90, 42),
		legendFrag("tp = <200 μs", 10, 50, 100, 62),
	}

	entries := Build(fragments, []diagram.Region{legendBox(0, 0, 120, 80)}, DefaultOptions())

	if len(entries) != 1 {
		t.Fatalf("got %d legends, want 1", len(entries))
	}
	e := entries[0]
	if e.ID != "legend_1" || e.Title.RawText != "Conditions:" {
		t.Errorf("legend = %s, title %q", e.ID, e.Title.RawText)
	}
	if len(e.Items) != 2 {
		t.Fatalf("got %d items, want 2: %+v", len(e.Items), e.Items)
	}

	merged := e.Items[0]
	if merged.RawText != "T_j=-40 °C" {
		t.Errorf("merged raw text = %q", merged.RawText)
	}
	if merged.ParsedParameter == nil || *merged.ParsedParameter != "T_j" || merged.ParsedValue != "-40 °C" {
		t.Errorf("merged item = %+v", merged)
	}
	if merged.TextBBox == nil || merged.TextBBox.X1 != 10 || merged.TextBBox.X2 != 90 {
		t.Errorf("merged bbox = %+v", merged.TextBBox)
	}

	if e.Items[1].RawText != "tp=<200 μs" || e.Items[1].ParsedValue != "<200 μs" {
		t.Errorf("second item = %+v", e.Items[1])
	}
}

func TestShouldMerge(t *testing.T) {
	key := legendFrag("T_j", 10, 30, 30, 42)

	tests := []struct {
		name string
		a, b diagram.OCRFragment
		want bool
	}{
		{"aligned", key, legendFrag("= 25", 37, 30, 60, 42), true},
		{"small overlap", key, legendFrag("=25", 25, 31, 60, 43), true},
		{"gap too wide", key, legendFrag("= 25", 60, 30, 90, 42), false},
		{"overlap too large", key, legendFrag("= 25", 15, 30, 60, 42), false},
		{"different line", key, legendFrag("= 25", 37, 40, 60, 52), false},
		{"no equals", key, legendFrag("25", 37, 30, 60, 42), false},
		{"key already has value", legendFrag("T=1", 10, 30, 30, 42), legendFrag("= 25", 37, 30, 60, 42), false},
		{"key too long", legendFrag("gate source voltage", 10, 30, 30, 42), legendFrag("= 25", 37, 30, 60, 42), false},
		{"flat key", legendFrag("T_j", 10, 30, 30, 30), legendFrag("= 25", 37, 30, 60, 42), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := shouldMerge(tt.a, tt.b, DefaultOptions()); got != tt.want {
				t.Errorf("shouldMerge = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBuild_Containment(t *testing.T) {
	fragments := []diagram.OCRFragment{
		legendFrag("straddles = edge", 90, 10, 130, 20),
		legendFrag("outside = far", 200, 10, 260, 20),
		{Text: "no = box", Element: diagram.ElementLegendBox},
		{Text: "plot = text", BBox: &geometry.Box{X1: 10, Y1: 40, X2: 50, Y2: 50}, Element: diagram.ElementPlotArea},
		legendFrag("   ", 10, 60, 50, 70),
	}
	boxes := []diagram.Region{
		legendBox(0, 0, 100, 100),
		{Class: diagram.ElementLegendBox},
		legendBox(500, 500, 600, 600),
	}

	entries := Build(fragments, boxes, DefaultOptions())

	if len(entries) != 1 {
		t.Fatalf("got %d legends, want 1", len(entries))
	}
	if len(entries[0].Items) != 1 || entries[0].Items[0].RawText != "straddles=edge" {
		t.Errorf("items = %+v", entries[0].Items)
	}
	if entries[0].Title.RawText != "" || entries[0].Title.TextBBox != nil {
		t.Errorf("unexpected title %+v", entries[0].Title)
	}
}

func TestBuild_IDsSkipEmptyBoxes(t *testing.T) {
	fragments := []diagram.OCRFragment{
		legendFrag("a = 1", 510, 510, 540, 520),
	}
	boxes := []diagram.Region{legendBox(0, 0, 100, 100), legendBox(500, 500, 600, 600)}

	entries := Build(fragments, boxes, DefaultOptions())
	if len(entries) != 1 || entries[0].ID != "legend_1" {
		t.Errorf("entries = %+v", entries)
	}
}

func TestParseItem(t *testing.T) {
	tests := []struct {
		text      string
		parameter string
		value     string
	}{
		{"VGS=15V", "VGS", "15V"},
		{"T_j=-40 °C", "T_j", "-40 °C"},
		{"tp=", "tp", ""},
		{"Typical", "", "Typical"},
		{"Rg (ext)=2.5Ω", "", "Rg (ext)=2.5Ω"},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got := ParseItem(tt.text)
			param := ""
			if got.ParsedParameter != nil {
				param = *got.ParsedParameter
			}
			if param != tt.parameter || got.ParsedValue != tt.value {
				t.Errorf("ParseItem(%q) = (%q, %q), want (%q, %q)", tt.text, param, got.ParsedValue, tt.parameter, tt.value)
			}
		})
	}
}
