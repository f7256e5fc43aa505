// Package server implements the MCP (Model Context Protocol) server for the
// stroke extraction tools.
//
// The server speaks JSON-RPC 2.0 and exposes the drawing-surface pipeline
// (marker localization, rectification, line extraction, stroke tracing and
// millimeter mapping) both as a whole and stage by stage, so a client can
// inspect every intermediate result.
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
// Raw photo:
//   - image_load: Load image and get metadata
//   - image_dimensions: Get width and height
//   - image_crop: Extract rectangular region
//   - image_edge_detect: Blur and Canny edge map
//
// Workspace pipeline:
//   - workspace_config: Active workspace, tuning and detector status
//   - workspace_detect_markers: Decoded markers and their corner roles
//   - workspace_rectify: Top-down frame, optionally with a millimeter grid
//   - workspace_crop_corner: Corner of the rectified frame
//   - workspace_line_mask: Skeletonized line mask
//   - workspace_extract_strokes: Strokes in millimeters
//   - workspace_render_strokes: Strokes painted over the rectified frame
//   - workspace_preview: Strokes plotted on millimeter axes
//   - workspace_check_labels: OCR check of the captions under the markers
//
// # Marker Dictionary
//
// Marker tools need a dictionary file (STROKE_MCP_DICTIONARY or
// detector.dictionary_path in the config file). Without one the server still
// starts; the raw photo tools work and the marker tools fail with an error
// naming the missing setting.
//
// # Image Caching
//
// Photos are cached by path and reused across tool calls for the lifetime of
// the server process.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string
//
// A frame without strokes is not an error; workspace_extract_strokes reports
// it in its warning field.
//
// # Usage
//
//	cfg, err := workspace.FromEnv()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := server.New(cfg).Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
