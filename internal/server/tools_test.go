package server

import (
	"testing"
)

func toolsByName() map[string]Tool {
	toolMap := make(map[string]Tool)
	for _, tool := range GetToolDefinitions() {
		toolMap[tool.Name] = tool
	}
	return toolMap
}

func TestGetToolDefinitions(t *testing.T) {
	tools := GetToolDefinitions()

	expectedTools := []string{
		"canny_detect_edges",
		"canny_kernel",
		"image_dimensions",
	}
	if len(tools) != len(expectedTools) {
		t.Errorf("got %d tools, want %d", len(tools), len(expectedTools))
	}

	toolMap := toolsByName()
	for _, name := range expectedTools {
		if _, ok := toolMap[name]; !ok {
			t.Errorf("Expected tool %s not found", name)
		}
	}
}

func TestToolDefinitions_Structure(t *testing.T) {
	for _, tool := range GetToolDefinitions() {
		t.Run(tool.Name, func(t *testing.T) {
			if tool.Description == "" {
				t.Error("Tool description is empty")
			}
			if tool.InputSchema["type"] != "object" {
				t.Errorf("InputSchema type: got %v, want 'object'", tool.InputSchema["type"])
			}
			props, ok := tool.InputSchema["properties"].(map[string]interface{})
			if !ok || len(props) == 0 {
				t.Fatal("InputSchema has no properties")
			}

			// Every required parameter must be declared.
			required, _ := tool.InputSchema["required"].([]string)
			for _, name := range required {
				if _, ok := props[name]; !ok {
					t.Errorf("required parameter %s is not declared", name)
				}
			}
		})
	}
}

func TestToolDefinitions_Required(t *testing.T) {
	tests := []struct {
		tool     string
		required []string
	}{
		{"canny_detect_edges", []string{"path"}},
		{"canny_kernel", []string{"sigma"}},
		{"image_dimensions", []string{"path"}},
	}

	toolMap := toolsByName()
	for _, tt := range tests {
		t.Run(tt.tool, func(t *testing.T) {
			got, _ := toolMap[tt.tool].InputSchema["required"].([]string)
			if len(got) != len(tt.required) {
				t.Fatalf("required: got %v, want %v", got, tt.required)
			}
			for i := range got {
				if got[i] != tt.required[i] {
					t.Errorf("required[%d]: got %s, want %s", i, got[i], tt.required[i])
				}
			}
		})
	}
}

func TestToolDefinitions_DetectDefaults(t *testing.T) {
	props := toolsByName()["canny_detect_edges"].InputSchema["properties"].(map[string]interface{})

	defaults := map[string]interface{}{
		"sigma":             DefaultSigma,
		"tlow":              DefaultTLow,
		"thigh":             DefaultTHigh,
		"include_direction": false,
	}
	for name, want := range defaults {
		param, ok := props[name].(map[string]interface{})
		if !ok {
			t.Errorf("%s: parameter not found", name)
			continue
		}
		if param["default"] != want {
			t.Errorf("%s: default got %v, want %v", name, param["default"], want)
		}
	}
}

func TestHandleToolsList(t *testing.T) {
	s := New()
	resp := s.handleToolsList(&MCPRequest{JSONRPC: "2.0", ID: 1})

	if resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}
	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatal("Result should be a map")
	}
	toolsList, ok := result["tools"].([]Tool)
	if !ok {
		t.Fatal("tools should be a slice of Tool")
	}
	if len(toolsList) != len(GetToolDefinitions()) {
		t.Errorf("Tool count: got %d, want %d", len(toolsList), len(GetToolDefinitions()))
	}
}
