// Package server implements the MCP (Model Context Protocol) server for the
// character clustering tools.
//
// # Protocol
//
// The server communicates using JSON-RPC 2.0, one message per line:
//   - Input: requests on stdin (or any reader passed to Serve)
//   - Output: responses on stdout (or any writer passed to Serve)
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Clustering:
//   - glyph_cluster: Group glyph boxes into words
//   - glyph_distance: Distance between two glyph groups
//   - glyph_sample: Synthetic glyph rows and the demo page
//
// Basic Image Information:
//   - image_load: Load image and get metadata
//   - image_dimensions: Get width and height
//
// OCR and Rendering:
//   - image_ocr_glyphs: Character boxes from Tesseract
//   - image_ocr_words: Tesseract's own word boxes, for comparison
//   - image_cluster_words: OCR followed by clustering
//   - image_render_clusters: Colored word boxes as PNG
//
// # Tuning
//
// The server is created with a config.Config. Every clustering tool accepts
// optional overrides (threshold, vertical_scale, max_iterations, metric, top_edge)
// that apply to that call only. Each clustering run starts from unlabeled
// glyphs and gets its own run_id, which is also attached to its log lines.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string
//
// # Usage
//
//	srv := server.New(cfg, logger)
//	if err := srv.Run(); err != nil {
//	    logger.Fatal().Err(err).Msg("server failed")
//	}
package server
