// Package server implements the MCP (Model Context Protocol) server for chart
// digitization.
//
// The server speaks JSON-RPC 2.0 over stdio and exposes the reconstruction
// engine and its helpers as tools, so that an MCP client can turn detection
// output into calibrated data series.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Reconstruction:
//   - diagram_reconstruct: Detection document to DigitalDiagram
//
// Primitives:
//   - diagram_parse_number: Numeric text parsing
//   - diagram_detect_scale: Linear or logarithmic classification
//
// Upstream helpers:
//   - diagram_ocr: Tesseract line fragments, optionally tagged by region
//   - diagram_annotate: Detection overlay as PNG
//   - diagram_crop: Zoom into a pixel box
//
// # Image Caching
//
// Diagram images are decoded once and kept for the lifetime of the server
// process, so OCR, overlay and crop calls on the same file share one decode.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string
//
// A diagram that fails to reconstruct is reported as a tool error; partial
// diagrams are never returned.
package server
