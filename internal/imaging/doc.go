// Package imaging loads diagram images and prepares them for MCP clients.
//
// Images are decoded once through ImageCache and shared between the OCR
// engine, the overlay renderer and dimension lookups. Pixel coordinates are
// 0-based with (0,0) at the top-left corner, matching the coordinate space of
// detection regions and OCR boxes.
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. Decoded images are treated as
// read-only; functions that draw on an image work on a copy.
package imaging
