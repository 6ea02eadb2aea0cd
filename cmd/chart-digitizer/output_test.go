package main

import (
	"strings"
	"testing"

	"github.com/spf13/pflag"

	"github.com/ironsheep/chart-digitizer-mcp/internal/diagram"
	"github.com/ironsheep/chart-digitizer-mcp/internal/geometry"
)

func sampleAxis() diagram.Axis {
	return diagram.Axis{
		ID:          "x_1",
		Orientation: diagram.OrientationX,
		Ticks: []diagram.AxisTick{
			{RawText: "250", ParsedValue: 250, PixelPosition: 162, TextBBox: &geometry.Box{X1: 150, Y1: 680, X2: 175, Y2: 695}},
		},
		Scale: diagram.ScaleLinear,
	}
}

func TestEncode_JSON(t *testing.T) {
	data, err := encode(sampleAxis(), "json")
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	got := string(data)
	if !strings.HasPrefix(got, "{\n  \"axis_id\": \"x_1\"") || !strings.HasSuffix(got, "}\n") {
		t.Errorf("unexpected JSON:\n%s", got)
	}
}

func TestEncode_YAML(t *testing.T) {
	data, err := encode(sampleAxis(), "yaml")
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	got := string(data)

	// Field order follows the JSON document.
	id := strings.Index(got, "axis_id: x_1")
	ticks := strings.Index(got, "ticks:")
	scale := strings.Index(got, "scale_type: linear")
	if id < 0 || ticks < 0 || scale < 0 || !(id < ticks && ticks < scale) {
		t.Errorf("fields missing or out of order:\n%s", got)
	}

	// Numeric-looking text stays a string, numbers stay numbers.
	if !strings.Contains(got, `raw_text: "250"`) {
		t.Errorf("tick text not quoted:\n%s", got)
	}
	if !strings.Contains(got, "parsed_value: 250\n") {
		t.Errorf("tick value not a plain number:\n%s", got)
	}
	if strings.Contains(got, "{") || strings.Contains(got, "[") {
		t.Errorf("flow style left in output:\n%s", got)
	}
	// A nil region box is kept as null.
	if !strings.Contains(got, "region_bbox_px: null") {
		t.Errorf("null box missing:\n%s", got)
	}
}

func TestEncode_UnsupportedFormat(t *testing.T) {
	if _, err := encode(sampleAxis(), "xml"); err == nil {
		t.Error("encode should reject unknown formats")
	}
}

func TestExtension(t *testing.T) {
	for format, want := range map[string]string{"json": ".json", "yaml": ".yaml", "": ".json"} {
		if got := extension(format); got != want {
			t.Errorf("extension(%q) = %q, want %q", format, got, want)
		}
	}
}

func TestHeuristicFlagUsage(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	addHeuristicFlags(fs)

	tests := []struct {
		flag string
		want string
	}{
		{"distance-ratio", "shorter plot side"},
		{"merge-vertical-ratio", "vertical center offset"},
	}

	for _, tt := range tests {
		t.Run(tt.flag, func(t *testing.T) {
			f := fs.Lookup(tt.flag)
			if f == nil {
				t.Fatalf("flag %s not registered", tt.flag)
			}
			if !strings.Contains(f.Usage, tt.want) {
				t.Errorf("usage = %q, want it to mention %q", f.Usage, tt.want)
			}
		})
	}
}
