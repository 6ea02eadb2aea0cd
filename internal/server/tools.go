package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// boxSchema describes a pixel box given as [x1, y1, x2, y2].
func boxSchema(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "array",
		"items":       map[string]interface{}{"type": "number"},
		"minItems":    4,
		"maxItems":    4,
		"description": description,
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Reconstruction
		{
			Name:        "diagram_reconstruct",
			Description: "Reconstruct a calibrated digital diagram (axes, data series in data coordinates, legends) from a unified detection document. Pass either the document path or the document itself.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to a diagram_*.json detection document",
					},
					"diagram": map[string]interface{}{
						"type":        "object",
						"description": "Inline detection document with labels, legend_boxes, lines and ocr_results",
					},
				},
			},
		},

		// Primitives
		{
			Name:        "diagram_parse_number",
			Description: "Parse OCR text into a number. Handles unicode minus signs, thousands separators, scientific and superscript notation and metric suffixes (k, M, m, u, n, ...).",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"text": map[string]interface{}{
						"type":        "string",
						"description": "Raw tick or label text, e.g. \"10⁻³\" or \"2.5k\"",
					},
				},
				"required": []string{"text"},
			},
		},
		{
			Name:        "diagram_detect_scale",
			Description: "Classify a sequence of tick values as a linear or logarithmic axis.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"values": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "number"},
						"description": "Tick values in axis order",
					},
					"tolerance": map[string]interface{}{
						"type":        "number",
						"description": "Maximum spread of log10 steps for a logarithmic axis. Default 0.25",
						"default":     0.25,
					},
				},
				"required": []string{"values"},
			},
		},

		// Upstream helpers
		{
			Name:        "diagram_ocr",
			Description: "Run Tesseract OCR on a diagram image and return line fragments. With a detection document, fragments are tagged with the region containing them and returned as ocr_results ready for diagram_reconstruct.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"image_path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the diagram image",
					},
					"diagram_path": map[string]interface{}{
						"type":        "string",
						"description": "Optional detection document whose regions are used to tag fragments",
					},
					"region": boxSchema("Optional [x1, y1, x2, y2] pixel box to read instead of the whole image"),
					"language": map[string]interface{}{
						"type":        "string",
						"description": "Tesseract language list. Default is the server setting",
					},
				},
				"required": []string{"image_path"},
			},
		},
		{
			Name:        "diagram_annotate",
			Description: "Draw the detection regions, OCR boxes and traced curves of a diagram onto its image. Returns a base64 PNG, or writes it to output_path.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"image_path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the diagram image",
					},
					"diagram_path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the detection document",
					},
					"output_path": map[string]interface{}{
						"type":        "string",
						"description": "Optional PNG path. When set, the overlay is saved instead of returned",
					},
					"element": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"plot_area", "x_axis", "y_axis"},
						"description": "Optional region to crop the overlay to",
					},
					"scale": map[string]interface{}{
						"type":        "number",
						"description": "Optional scale factor. Default 1.0",
						"default":     1.0,
					},
				},
				"required": []string{"image_path", "diagram_path"},
			},
		},
		{
			Name:        "diagram_crop",
			Description: "Crop a pixel box from a diagram image and return it as base64-encoded PNG. Use this to zoom into ticks, labels or legend boxes.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"image_path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the diagram image",
					},
					"box": boxSchema("[x1, y1, x2, y2] pixel box; x2 and y2 are exclusive"),
					"scale": map[string]interface{}{
						"type":        "number",
						"description": "Optional scale factor (e.g., 2.0 to double size). Default 1.0",
						"default":     1.0,
					},
				},
				"required": []string{"image_path", "box"},
			},
		},
	}
}
