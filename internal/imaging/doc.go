// Package imaging provides the image side of the clustering tools: loading and
// caching page images, preparing them for OCR, and rendering clustered glyphs.
//
// All coordinates use the standard image convention: (0,0) is the top-left
// corner, X increases rightward and Y increases downward. Glyph rectangles from
// package cluster share this convention, so OCR output can be drawn back onto the
// page it came from without conversion.
//
// # Rendering
//
// Draw outlines each glyph box in the color of its word group and writes the glyph
// value centered inside it in gray. Colors come from GroupColor, a fixed palette:
// the same group id always maps to the same color and unlabeled glyphs are gray.
// RenderClusters returns the drawing as base64 PNG for transport over MCP.
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. The remaining functions are stateless
// and never modify their input images.
package imaging
