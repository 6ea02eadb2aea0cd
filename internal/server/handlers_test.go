package server

import (
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ironsheep/chart-digitizer-mcp/internal/diagram"
	"github.com/ironsheep/chart-digitizer-mcp/internal/imaging"
)

// testDiagram is a minimal detection document: a 400x400 plot area with
// three ticks per axis and one straight polyline across it.
const testDiagram = `{
  "pdf_name": "unit",
  "page_number": 1,
  "diagram_id": 2,
  "image_width": 520,
  "image_height": 460,
  "legend_boxes": [],
  "labels": [
    {"class": "plot_area", "bbox": [100, 0, 500, 400]},
    {"class": "x_axis", "bbox": [90, 405, 510, 450]},
    {"class": "y_axis", "bbox": [0, -10, 95, 410]}
  ],
  "lines": [[[0, 400], [200, 200], [400, 0]]],
  "ocr_results": [
    {"text": "0", "bbox": [95, 410, 105, 420], "associated_element": "x_axis"},
    {"text": "10", "bbox": [290, 410, 310, 420], "associated_element": "x_axis"},
    {"text": "20", "bbox": [490, 410, 510, 420], "associated_element": "x_axis"},
    {"text": "0", "bbox": [40, 395, 60, 405], "associated_element": "y_axis"},
    {"text": "50", "bbox": [40, 195, 60, 205], "associated_element": "y_axis"},
    {"text": "100", "bbox": [40, -5, 60, 5], "associated_element": "y_axis"}
  ]
}`

// writeTestFiles writes the test diagram and a matching white image.
func writeTestFiles(t *testing.T) (imgPath, diagramPath string) {
	t.Helper()
	dir := t.TempDir()

	diagramPath = filepath.Join(dir, "diagram_2.json")
	if err := os.WriteFile(diagramPath, []byte(testDiagram), 0o644); err != nil {
		t.Fatalf("failed to write diagram: %v", err)
	}

	img := image.NewRGBA(image.Rect(0, 0, 520, 460))
	for y := 0; y < 460; y++ {
		for x := 0; x < 520; x++ {
			img.Set(x, y, color.White)
		}
	}
	imgPath = filepath.Join(dir, "diagram_2.png")
	f, err := os.Create(imgPath)
	if err != nil {
		t.Fatalf("failed to create image: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}

	return imgPath, diagramPath
}

// callTool sends a tools/call request through handleRequest.
func callTool(t *testing.T, s *Server, name string, args interface{}) *MCPResponse {
	t.Helper()
	params, err := json.Marshal(map[string]interface{}{"name": name, "arguments": args})
	if err != nil {
		t.Fatalf("failed to marshal params: %v", err)
	}
	resp := s.handleRequest(&MCPRequest{JSONRPC: "2.0", ID: 1, Method: "tools/call", Params: params})
	if resp == nil {
		t.Fatal("handleRequest returned nil")
	}
	return resp
}

// contentText extracts the JSON text of a successful tool response.
func contentText(t *testing.T, resp *MCPResponse) string {
	t.Helper()
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %+v", resp.Error)
	}
	result := resp.Result.(map[string]interface{})
	content := result["content"].([]map[string]interface{})
	if len(content) != 1 || content[0]["type"] != "text" {
		t.Fatalf("unexpected content: %v", content)
	}
	return content[0]["text"].(string)
}

func near(a *float64, want float64) bool {
	return a != nil && math.Abs(*a-want) < 1e-6
}

func checkReconstruction(t *testing.T, out *diagram.DigitalDiagram) {
	t.Helper()
	if len(out.Axes) != 2 || len(out.PlotAreas) != 1 {
		t.Fatalf("got %d axes and %d plot areas", len(out.Axes), len(out.PlotAreas))
	}
	if out.Metadata.SourceName != "unit" || out.Metadata.DiagramIndex != 2 {
		t.Errorf("metadata = %+v", out.Metadata)
	}

	series := out.PlotAreas[0].Series
	if len(series) != 1 || len(series[0].DataPoints) != 3 {
		t.Fatalf("series = %+v", series)
	}
	first, last := series[0].DataPoints[0], series[0].DataPoints[2]
	if !near(first.X, 0) || !near(first.Y, 0) {
		t.Errorf("first point = (%v, %v), want (0, 0)", first.X, first.Y)
	}
	if !near(last.X, 20) || !near(last.Y, 100) {
		t.Errorf("last point = (%v, %v), want (20, 100)", last.X, last.Y)
	}
}

func TestHandleToolsCall_ReconstructInline(t *testing.T) {
	s := newTestServer()

	text := contentText(t, callTool(t, s, "diagram_reconstruct", map[string]interface{}{
		"diagram": json.RawMessage(testDiagram),
	}))

	var out diagram.DigitalDiagram
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		t.Fatalf("result is not a digital diagram: %v", err)
	}
	checkReconstruction(t, &out)
}

func TestExecuteTool_ReconstructPath(t *testing.T) {
	s := newTestServer()
	_, diagramPath := writeTestFiles(t)

	result, err := s.executeTool("diagram_reconstruct", json.RawMessage(`{"path":"`+diagramPath+`"}`))
	if err != nil {
		t.Fatalf("executeTool failed: %v", err)
	}
	checkReconstruction(t, result.(*diagram.DigitalDiagram))
}

func TestExecuteTool_ReconstructErrors(t *testing.T) {
	s := newTestServer()

	tests := []struct {
		name string
		args string
	}{
		{"no source", `{}`},
		{"missing file", `{"path":"/nonexistent/diagram_1.json"}`},
		{"malformed inline", `{"diagram":{"labels":"oops"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.executeTool("diagram_reconstruct", json.RawMessage(tt.args)); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestExecuteTool_ParseNumber(t *testing.T) {
	s := newTestServer()

	tests := []struct {
		text  string
		valid bool
		value float64
	}{
		{"2.5k", true, 2500},
		{"−40", true, -40},
		{"10⁻³", true, 0.001},
		{"VGS", false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			args, _ := json.Marshal(map[string]string{"text": tt.text})
			result, err := s.executeTool("diagram_parse_number", args)
			if err != nil {
				t.Fatalf("executeTool failed: %v", err)
			}
			got := result.(*ParseNumberResult)
			if got.Valid != tt.valid {
				t.Fatalf("valid = %v, want %v", got.Valid, tt.valid)
			}
			if tt.valid && !near(got.Value, tt.value) {
				t.Errorf("value = %v, want %v", *got.Value, tt.value)
			}
			if !tt.valid && got.Value != nil {
				t.Errorf("invalid text has value %v", *got.Value)
			}
		})
	}
}

func TestExecuteTool_DetectScale(t *testing.T) {
	s := newTestServer()

	tests := []struct {
		name string
		args string
		want diagram.ScaleType
	}{
		{"decades", `{"values":[1,10,100,1000]}`, diagram.ScaleLog},
		{"evenly spaced", `{"values":[0,10,20,30,40]}`, diagram.ScaleLinear},
		{"too few", `{"values":[1,10]}`, diagram.ScaleLinear},
		{"strict tolerance", `{"values":[1,10,100,2000],"tolerance":0.01}`, diagram.ScaleLinear},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := s.executeTool("diagram_detect_scale", json.RawMessage(tt.args))
			if err != nil {
				t.Fatalf("executeTool failed: %v", err)
			}
			if got := result.(*DetectScaleResult).Scale; got != tt.want {
				t.Errorf("scale = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestExecuteTool_AnnotateToFile(t *testing.T) {
	s := newTestServer()
	imgPath, diagramPath := writeTestFiles(t)
	outPath := filepath.Join(t.TempDir(), "overlay.png")

	args, _ := json.Marshal(map[string]interface{}{
		"image_path":   imgPath,
		"diagram_path": diagramPath,
		"output_path":  outPath,
	})
	result, err := s.executeTool("diagram_annotate", args)
	if err != nil {
		t.Fatalf("executeTool failed: %v", err)
	}

	got := result.(*AnnotateResult)
	if got.Width != 520 || got.Height != 460 {
		t.Errorf("overlay size = %dx%d, want 520x460", got.Width, got.Height)
	}
	if _, err := os.Stat(outPath); err != nil {
		t.Errorf("overlay not written: %v", err)
	}
}

func TestExecuteTool_AnnotateCroppedToPlotArea(t *testing.T) {
	s := newTestServer()
	imgPath, diagramPath := writeTestFiles(t)

	args, _ := json.Marshal(map[string]interface{}{
		"image_path":   imgPath,
		"diagram_path": diagramPath,
		"element":      "plot_area",
		"scale":        0.5,
	})
	result, err := s.executeTool("diagram_annotate", args)
	if err != nil {
		t.Fatalf("executeTool failed: %v", err)
	}

	got := result.(*imaging.EncodedImage)
	if got.Width != 200 || got.Height != 200 || got.ImageBase64 == "" {
		t.Errorf("encoded overlay = %dx%d (%d bytes)", got.Width, got.Height, len(got.ImageBase64))
	}
}

func TestExecuteTool_AnnotateErrors(t *testing.T) {
	s := newTestServer()
	imgPath, diagramPath := writeTestFiles(t)

	tests := []struct {
		name string
		args map[string]interface{}
	}{
		{"missing diagram", map[string]interface{}{"image_path": imgPath}},
		{"unknown region", map[string]interface{}{"image_path": imgPath, "diagram_path": diagramPath, "element": "legend_box"}},
		{"missing image", map[string]interface{}{"image_path": "/nonexistent.png", "diagram_path": diagramPath}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args, _ := json.Marshal(tt.args)
			if _, err := s.executeTool("diagram_annotate", args); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestExecuteTool_Crop(t *testing.T) {
	s := newTestServer()
	imgPath, _ := writeTestFiles(t)

	args, _ := json.Marshal(map[string]interface{}{
		"image_path": imgPath,
		"box":        []float64{100, 400, 300, 460},
		"scale":      2.0,
	})
	result, err := s.executeTool("diagram_crop", args)
	if err != nil {
		t.Fatalf("executeTool failed: %v", err)
	}

	got := result.(*imaging.EncodedImage)
	if got.Width != 400 || got.Height != 120 {
		t.Errorf("crop size = %dx%d, want 400x120", got.Width, got.Height)
	}
}

func TestExecuteTool_CropInvalidBox(t *testing.T) {
	s := newTestServer()
	imgPath, _ := writeTestFiles(t)

	for _, box := range []string{`[1,2,3]`, `"0,0,10,10"`} {
		args := json.RawMessage(`{"image_path":"` + imgPath + `","box":` + box + `}`)
		if _, err := s.executeTool("diagram_crop", args); err == nil || !strings.Contains(err.Error(), "four numbers") {
			t.Errorf("box %s: err = %v", box, err)
		}
	}

	if _, err := s.executeTool("diagram_crop", json.RawMessage(`{"image_path":"`+imgPath+`"}`)); err == nil {
		t.Error("crop without box should fail")
	}
}

func TestExecuteTool_OCRRequiresImage(t *testing.T) {
	s := newTestServer()

	if _, err := s.executeTool("diagram_ocr", json.RawMessage(`{}`)); err == nil {
		t.Error("diagram_ocr without image_path should fail")
	}
	if _, err := s.executeTool("diagram_ocr", json.RawMessage(`{"image_path":"/x.png","region":[1]}`)); err == nil {
		t.Error("diagram_ocr with a malformed region should fail")
	}
}

func TestHandleToolsCall_Errors(t *testing.T) {
	s := newTestServer()

	tests := []struct {
		name     string
		params   string
		wantCode int
	}{
		{"invalid params", `{invalid`, -32602},
		{"unknown tool", `{"name":"unknown_tool","arguments":{}}`, -32000},
		{"invalid arguments", `{"name":"diagram_parse_number","arguments":{"text":42}}`, -32000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := s.handleRequest(&MCPRequest{JSONRPC: "2.0", ID: 7, Method: "tools/call", Params: json.RawMessage(tt.params)})
			if resp == nil || resp.Error == nil {
				t.Fatalf("expected an error response, got %+v", resp)
			}
			if resp.Error.Code != tt.wantCode {
				t.Errorf("Error code: got %d, want %d", resp.Error.Code, tt.wantCode)
			}
		})
	}
}

func TestExecuteTool_MissingArguments(t *testing.T) {
	s := newTestServer()

	result, err := s.executeTool("diagram_parse_number", nil)
	if err != nil {
		t.Fatalf("executeTool failed: %v", err)
	}
	if result.(*ParseNumberResult).Valid {
		t.Error("empty text should not parse")
	}
}
