// Package server implements the MCP (Model Context Protocol) server that
// drives the capture-and-clip engine.
//
// This package provides a JSON-RPC 2.0 server that lets an MCP client freeze
// a camera frame, trace a polygon over it with pointer events, and read back
// the clipped region as PNG, OCR text, or a vision model transcription.
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
// Capture:
//   - snap_freeze_frame: Freeze a frame from an image file, or inline base64, standing in for the camera
//   - snap_set_display: Set the on-screen box used to map pointer coordinates
//
// Gesture:
//   - snap_pointer: mousedown/mousemove/mouseup or touchstart/touchmove/touchend
//   - snap_points: Vertices of the polygon in progress
//
// Lifecycle:
//   - snap_reset: Discard the clip and restore the frozen frame
//   - snap_reinitialize: Drop the snapshot and return to idle
//   - snap_state: Engine state, surface size, and display box
//
// Output:
//   - snap_export: Surface as base64 PNG, optionally cropped, scaled, and saved
//   - snap_ocr: Tesseract text and word boxes, optionally annotated
//   - snap_detect_text_regions: Tesseract block boxes
//   - snap_vision: Transcription from an OpenAI-compatible vision model
//
// # Surface
//
// The engine draws onto an in-memory canvas.RasterContext sized to the
// frozen frame. A frame of a different size mounts a new surface. Unless the
// client sets a display box, the frame is assumed to be shown at its own size
// at the origin, so client coordinates equal pixel coordinates.
//
// Every engine call is made under a mutex so the HTTP side door can read the
// surface between tool calls.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string
//
// Camera failures carry the same user-facing messages a browser capture page
// would show (see camera.Describe).
//
// # Usage
//
//	cfg, err := config.Load(nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	srv := server.New(cfg)
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
