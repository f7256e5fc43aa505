package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// pathProperty is the photo argument shared by every tool.
var pathProperty = map[string]interface{}{
	"type":        "string",
	"description": "Absolute path to the photo of the drawing surface",
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Basic Image Information
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions and format. The file is always re-read from disk and the decoded frame is cached for subsequent operations.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_dimensions",
			Description: "Get the width and height of an image file.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_crop",
			Description: "Crop a rectangular region from the raw photo and return it as base64-encoded PNG. Use this to zoom into a marker or a faint line.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
					"x1": map[string]interface{}{
						"type":        "integer",
						"description": "Left edge X coordinate (0-based)",
					},
					"y1": map[string]interface{}{
						"type":        "integer",
						"description": "Top edge Y coordinate (0-based)",
					},
					"x2": map[string]interface{}{
						"type":        "integer",
						"description": "Right edge X coordinate (exclusive)",
					},
					"y2": map[string]interface{}{
						"type":        "integer",
						"description": "Bottom edge Y coordinate (exclusive)",
					},
					"scale": map[string]interface{}{
						"type":        "number",
						"description": "Optional scale factor (e.g., 2.0 to double size). Default 1.0",
						"default":     1.0,
					},
				},
				"required": []string{"path", "x1", "y1", "x2", "y2"},
			},
		},
		{
			Name:        "image_edge_detect",
			Description: "Run the blur and Canny stages of the line extractor on the raw photo and return the edge map as PNG. Thresholds default to the configured tuning.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
					"threshold_low": map[string]interface{}{
						"type":        "number",
						"description": "Hysteresis low threshold",
					},
					"threshold_high": map[string]interface{}{
						"type":        "number",
						"description": "Hysteresis high threshold",
					},
				},
				"required": []string{"path"},
			},
		},

		// Workspace
		{
			Name:        "workspace_config",
			Description: "Return the active workspace (rectified size, marker ids per corner, physical size in mm), the extraction tuning and the marker detector status.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
		{
			Name:        "workspace_detect_markers",
			Description: "Detect fiducial markers in the photo and assign them to corners by id. Reports every decoded marker and any corner whose marker is missing.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "workspace_rectify",
			Description: "Warp the photo to a top-down view of the drawing surface using the four corner markers. Returns the homography and the rectified frame as PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
					"grid_spacing_mm": map[string]interface{}{
						"type":        "number",
						"description": "Optional millimeter grid drawn over the rectified frame. 0 disables it",
					},
					"grid_color": map[string]interface{}{
						"type":        "string",
						"description": "Grid color as hex (#RRGGBB or #RRGGBBAA). Default #FF000080",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "workspace_crop_corner",
			Description: "Crop a corner of the rectified frame, where marker remnants end up. Useful for choosing the corner mask size.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
					"corner": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"top-left", "top-right", "bottom-left", "bottom-right"},
						"description": "Corner to extract",
					},
					"size": map[string]interface{}{
						"type":        "integer",
						"description": "Side of the square in rectified pixels. Default 200",
					},
					"scale": map[string]interface{}{
						"type":        "number",
						"description": "Optional scale factor. Default 1.0",
						"default":     1.0,
					},
				},
				"required": []string{"path", "corner"},
			},
		},
		{
			Name:        "workspace_line_mask",
			Description: "Extract the one pixel wide skeleton of the drawn lines from the rectified frame and return it as PNG (white = line).",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "workspace_extract_strokes",
			Description: "Run the full pipeline and return the traced strokes in millimeters. An empty page is reported as a warning, not an error.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
					"path_order": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"traversal", "walk"},
						"description": "Pixel order within a stroke. Defaults to the configured tuning",
					},
					"include_pixels": map[string]interface{}{
						"type":        "boolean",
						"description": "Also return strokes in rectified pixel coordinates. Default false",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "workspace_render_strokes",
			Description: "Paint each traced stroke over the rectified frame in its own color and return the PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
					"labels": map[string]interface{}{
						"type":        "boolean",
						"description": "Write the stroke index next to each stroke. Default true",
						"default":     true,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "workspace_preview",
			Description: "Plot the extracted strokes on millimeter axes, as a plotter would draw them.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
					"format": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"svg", "png", "pdf"},
						"description": "Output format. Default svg",
					},
					"connect": map[string]interface{}{
						"type":        "boolean",
						"description": "Draw strokes as polylines. Strokes are walk-ordered first. Default false",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "workspace_check_labels",
			Description: "OCR the caption printed under each marker (\"ID 0 (top_left)\") and compare it, and the marker's position in the photo, with the configured corner.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
				},
				"required": []string{"path"},
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
