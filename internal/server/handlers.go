package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"

	"github.com/google/uuid"

	"github.com/ironsheep/chart-digitizer-mcp/internal/axis"
	"github.com/ironsheep/chart-digitizer-mcp/internal/diagram"
	"github.com/ironsheep/chart-digitizer-mcp/internal/geometry"
	"github.com/ironsheep/chart-digitizer-mcp/internal/imaging"
	"github.com/ironsheep/chart-digitizer-mcp/internal/numparse"
	"github.com/ironsheep/chart-digitizer-mcp/internal/ocr"
	"github.com/ironsheep/chart-digitizer-mcp/internal/overlay"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "diagram_reconstruct").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	log := s.log.WithFields("request_id", uuid.NewString(), "tool", params.Name)
	log.Debug("Tool call")

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		log.WithError(err).Warn("Tool execution failed")
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Applies default values for optional parameters
//  3. Loads images and detection documents as needed
//  4. Calls the digitizer, ocr, overlay or imaging function
//  5. Returns the result or error
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}

	switch name {
	case "diagram_reconstruct":
		return s.handleReconstruct(args)
	case "diagram_parse_number":
		return s.handleParseNumber(args)
	case "diagram_detect_scale":
		return s.handleDetectScale(args)
	case "diagram_ocr":
		return s.handleOCR(args)
	case "diagram_annotate":
		return s.handleAnnotate(args)
	case "diagram_crop":
		return s.handleCrop(args)
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	e := &MCPError{
		Code:    code,
		Message: message,
	}
	if data != "" {
		e.Data = data
	}
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error:   e,
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// parseBoxArg decodes an optional [x1, y1, x2, y2] argument.
func parseBoxArg(name string, raw json.RawMessage) (*geometry.Box, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	b := geometry.ParseBox(raw)
	if b == nil {
		return nil, fmt.Errorf("%s must be an array of four numbers", name)
	}
	return b, nil
}

// === Reconstruction Handlers ===

type reconstructArgs struct {
	Path    string          `json:"path"`
	Diagram json.RawMessage `json:"diagram"`
}

func (s *Server) handleReconstruct(args json.RawMessage) (interface{}, error) {
	var a reconstructArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	var (
		in  *diagram.Input
		err error
	)
	switch {
	case len(a.Diagram) > 0 && string(a.Diagram) != "null":
		in, err = diagram.DecodeInput(a.Diagram)
	case a.Path != "":
		in, err = diagram.LoadInput(a.Path)
	default:
		return nil, errors.New("either path or diagram is required")
	}
	if err != nil {
		return nil, err
	}

	return s.digitizer.Reconstruct(in)
}

// === Primitive Handlers ===

type parseNumberArgs struct {
	Text string `json:"text"`
}

// ParseNumberResult is the outcome of diagram_parse_number.
type ParseNumberResult struct {
	Text  string   `json:"text"`
	Valid bool     `json:"valid"`
	Value *float64 `json:"value"`
}

func (s *Server) handleParseNumber(args json.RawMessage) (interface{}, error) {
	var a parseNumberArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	result := &ParseNumberResult{Text: a.Text}
	if v, ok := numparse.Parse(a.Text); ok {
		result.Valid = true
		result.Value = &v
	}
	return result, nil
}

type detectScaleArgs struct {
	Values    []float64 `json:"values"`
	Tolerance float64   `json:"tolerance"`
}

// DetectScaleResult is the outcome of diagram_detect_scale.
type DetectScaleResult struct {
	Scale diagram.ScaleType `json:"scale_type"`
	Ticks int               `json:"ticks"`
}

func (s *Server) handleDetectScale(args json.RawMessage) (interface{}, error) {
	var a detectScaleArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Tolerance <= 0 {
		a.Tolerance = axis.DefaultOptions().LogStepTolerance
	}

	ticks := make([]diagram.AxisTick, len(a.Values))
	for i, v := range a.Values {
		ticks[i] = diagram.AxisTick{ParsedValue: v, PixelPosition: i}
	}
	return &DetectScaleResult{Scale: axis.DetectScale(ticks, a.Tolerance), Ticks: len(ticks)}, nil
}

// === Upstream Helper Handlers ===

type ocrArgs struct {
	ImagePath   string          `json:"image_path"`
	DiagramPath string          `json:"diagram_path"`
	Region      json.RawMessage `json:"region"`
	Language    string          `json:"language"`
}

// OCRResult lists the fragments read from an image.
type OCRResult struct {
	Fragments []diagram.OCRFragment `json:"ocr_results"`
}

func (s *Server) handleOCR(args json.RawMessage) (interface{}, error) {
	var a ocrArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.ImagePath == "" {
		return nil, errors.New("image_path is required")
	}
	region, err := parseBoxArg("region", a.Region)
	if err != nil {
		return nil, err
	}

	img, err := s.cache.Load(a.ImagePath)
	if err != nil {
		return nil, err
	}

	engine := s.ocr
	if a.Language != "" {
		engine = ocr.NewEngine(a.Language, s.log)
	}

	var fragments []diagram.OCRFragment
	if region != nil {
		fragments, err = engine.RecognizeRegion(img, *region)
	} else {
		fragments, err = engine.Recognize(img)
	}
	if err != nil {
		return nil, err
	}

	if a.DiagramPath == "" {
		return &OCRResult{Fragments: fragments}, nil
	}

	in, err := diagram.LoadInput(a.DiagramPath)
	if err != nil {
		return nil, err
	}
	imaging.FillDimensions(in, img)
	ocr.AssociateInput(in, fragments)
	return in, nil
}

type annotateArgs struct {
	ImagePath   string  `json:"image_path"`
	DiagramPath string  `json:"diagram_path"`
	OutputPath  string  `json:"output_path"`
	Element     string  `json:"element"`
	Scale       float64 `json:"scale"`
}

// AnnotateResult describes an overlay written to disk.
type AnnotateResult struct {
	Path   string `json:"path"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

func (s *Server) handleAnnotate(args json.RawMessage) (interface{}, error) {
	var a annotateArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.ImagePath == "" || a.DiagramPath == "" {
		return nil, errors.New("image_path and diagram_path are required")
	}
	if a.Scale == 0 {
		a.Scale = 1.0
	}

	img, err := s.cache.Load(a.ImagePath)
	if err != nil {
		return nil, err
	}
	in, err := diagram.LoadInput(a.DiagramPath)
	if err != nil {
		return nil, err
	}

	var out image.Image = overlay.Render(img, in)
	if a.Element != "" || a.Scale != 1.0 {
		box := geometry.Box{X2: float64(out.Bounds().Dx()), Y2: float64(out.Bounds().Dy())}
		if a.Element != "" {
			r, ok := in.Region(diagram.Element(a.Element))
			if !ok || r.BBox == nil {
				return nil, fmt.Errorf("diagram has no %s region", a.Element)
			}
			box = *r.BBox
		}
		if out, err = imaging.CropBox(out, box, a.Scale); err != nil {
			return nil, err
		}
	}

	if a.OutputPath == "" {
		return imaging.Encode(out)
	}
	if err := overlay.Save(a.OutputPath, out); err != nil {
		return nil, err
	}
	return &AnnotateResult{Path: a.OutputPath, Width: out.Bounds().Dx(), Height: out.Bounds().Dy()}, nil
}

type cropArgs struct {
	ImagePath string          `json:"image_path"`
	Box       json.RawMessage `json:"box"`
	Scale     float64         `json:"scale"`
}

func (s *Server) handleCrop(args json.RawMessage) (interface{}, error) {
	var a cropArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	box, err := parseBoxArg("box", a.Box)
	if err != nil {
		return nil, err
	}
	if box == nil {
		return nil, errors.New("box is required")
	}
	if a.Scale == 0 {
		a.Scale = 1.0
	}

	img, err := s.cache.Load(a.ImagePath)
	if err != nil {
		return nil, err
	}
	cropped, err := imaging.CropBox(img, *box, a.Scale)
	if err != nil {
		return nil, err
	}
	return imaging.Encode(cropped)
}
