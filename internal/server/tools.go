package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name:        "canny_detect_edges",
			Description: "Run Canny edge detection on an image file. Returns the binary edge map as base64 PNG (white = edge), the derived hysteresis thresholds and pipeline statistics.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file (PNG, JPEG, GIF or binary PGM)",
					},
					"sigma": map[string]interface{}{
						"type":             "number",
						"description":      "Standard deviation of the Gaussian blur. Default 1.0",
						"default":          DefaultSigma,
						"exclusiveMinimum": 0,
					},
					"tlow": map[string]interface{}{
						"type":        "number",
						"description": "Low threshold as a fraction of the high threshold (0-1). Default 0.3",
						"default":     DefaultTLow,
						"minimum":     0,
						"maximum":     1,
					},
					"thigh": map[string]interface{}{
						"type":        "number",
						"description": "Fraction of the strongest suppressed gradients (0-1) at or above the high threshold. Default 0.7",
						"default":     DefaultTHigh,
						"minimum":     0,
						"maximum":     1,
					},
					"workers": map[string]interface{}{
						"type":        "integer",
						"description": "Parallel workers per stage. Default: server setting",
					},
					"include_direction": map[string]interface{}{
						"type":        "boolean",
						"description": "Also return a color-wheel rendering of the gradient direction on edge pixels. Default false",
						"default":     false,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "canny_kernel",
			Description: "Return the normalized Gaussian blur kernel used for a given sigma.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"sigma": map[string]interface{}{
						"type":        "number",
						"description": "Standard deviation of the Gaussian",
					},
				},
				"required": []string{"sigma"},
			},
		},
		{
			Name:        "image_dimensions",
			Description: "Get the width and height of an image file.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
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
