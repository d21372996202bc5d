package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func prop(typ, description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        typ,
		"description": description,
	}
}

func propDefault(typ, description string, def interface{}) map[string]interface{} {
	p := prop(typ, description)
	p["default"] = def
	return p
}

func noArgs() map[string]interface{} {
	return map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{},
	}
}

func displayBoxSchema(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"description": description,
		"properties": map[string]interface{}{
			"left":   prop("number", "Left edge in client coordinates"),
			"top":    prop("number", "Top edge in client coordinates"),
			"width":  prop("number", "Displayed width"),
			"height": prop("number", "Displayed height"),
		},
		"required": []string{"width", "height"},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Capture
		{
			Name:        "snap_freeze_frame",
			Description: "Freeze the current camera frame onto the surface and keep it as the snapshot. The frame is read from an image file standing in for the camera, or passed inline as base64. Any polygon or clip in progress is discarded.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":         prop("string", "Absolute path to the frame image"),
					"image_base64": prop("string", "Frame image as base64 or a data: URL. Use instead of path"),
					"facing": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"environment", "user"},
						"description": "Camera to use. Defaults to the configured facing (environment)",
					},
					"display": displayBoxSchema("Where the surface is shown on screen. Defaults to the frame size at the origin"),
					"refresh": propDefault("boolean", "Re-read the file even if this path was frozen before", false),
				},
			},
		},
		{
			Name:        "snap_set_display",
			Description: "Set the on-screen box of the surface. Pointer coordinates are mapped from this box into frame pixels.",
			InputSchema: displayBoxSchema("Display box in client coordinates"),
		},

		// Gesture
		{
			Name:        "snap_pointer",
			Description: "Feed a mouse or touch event in client coordinates. Down starts a polygon, move extends it with a live preview, up closes it and clips the surface.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"type": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"mousedown", "mousemove", "mouseup", "touchstart", "touchmove", "touchend"},
						"description": "DOM event name",
					},
					"client_x": prop("number", "Mouse X in client coordinates"),
					"client_y": prop("number", "Mouse Y in client coordinates"),
					"touches": map[string]interface{}{
						"type":        "array",
						"description": "Active touch contacts; only the first is used",
						"items": map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"client_x": map[string]interface{}{"type": "number"},
								"client_y": map[string]interface{}{"type": "number"},
							},
						},
					},
				},
				"required": []string{"type"},
			},
		},
		{
			Name:        "snap_points",
			Description: "List the polygon vertices accumulated by the gesture in progress, in frame pixels.",
			InputSchema: noArgs(),
		},

		// Lifecycle
		{
			Name:        "snap_reset",
			Description: "Discard the polygon and clip and restore the frozen frame.",
			InputSchema: noArgs(),
		},
		{
			Name:        "snap_reinitialize",
			Description: "Drop the snapshot and clear the surface, returning to idle.",
			InputSchema: noArgs(),
		},
		{
			Name:        "snap_state",
			Description: "Report the engine state (idle, armed, drawing, clipped), surface size, and display box.",
			InputSchema: noArgs(),
		},

		// Output
		{
			Name:        "snap_export",
			Description: "Export the surface as base64-encoded PNG, optionally cropped to the clipped region and scaled. Pass path to also save the file.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"crop_to_content": propDefault("boolean", "Crop to the clip polygon's bounding box, or to visible pixels when unclipped. Default false", false),
					"scale":           propDefault("number", "Optional scale factor. Default 1.0", 1.0),
					"path":            prop("string", "File or directory to save to. A directory receives snapclip.png"),
				},
			},
		},
		{
			Name:        "snap_ocr",
			Description: "Run Tesseract OCR over the surface and return the text with word bounding boxes.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"language":        propDefault("string", "Tesseract language code. Defaults to the configured language", "eng"),
					"crop_to_content": prop("boolean", "Recognise only the clipped region. Default false"),
					"grayscale":       prop("boolean", "Convert to grayscale before recognition"),
					"contrast":        prop("number", "Contrast change from -1 to 1"),
					"threshold":       prop("integer", "Binarise at this luminance (1-255)"),
					"annotate":        prop("boolean", "Also return the image with word boxes drawn"),
					"box_color":       prop("string", "Annotation color, CSS keyword or #hex. Default red"),
				},
			},
		},
		{
			Name:        "snap_detect_text_regions",
			Description: "Find text blocks on the surface without recognising them.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"language":       prop("string", "Tesseract language code"),
					"min_confidence": propDefault("number", "Minimum confidence 0-1. Default 0.5", 0.5),
					"method": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"tesseract", "edges"},
						"description": "tesseract uses the OCR engine; edges uses edge density and needs no OCR engine",
						"default":     "tesseract",
					},
				},
			},
		},
		{
			Name:        "snap_vision",
			Description: "Send the clipped region to a vision language model and return its transcription.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"prompt":          prop("string", "Instruction for the model. Defaults to a word-for-word transcription request"),
					"crop_to_content": propDefault("boolean", "Send only the clipped region. Default true", true),
				},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
