package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ironsheep/canny-pipeline/internal/canny"
	"github.com/ironsheep/canny-pipeline/internal/imaging"
)

// Defaults applied when a canny_detect_edges call omits a parameter.
const (
	DefaultSigma = 1.0
	DefaultTLow  = 0.3
	DefaultTHigh = 0.7
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "canny_detect_edges").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Invalid tool arguments return -32602; other tool failures return -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		s.log.Warn().Err(err).Str("tool", params.Name).Msg("tool failed")
		if errors.Is(err, canny.ErrInvalidParameter) {
			return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
		}
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "canny_detect_edges":
		return s.handleDetectEdges(ctx, args)
	case "canny_kernel":
		return s.handleKernel(args)
	case "image_dimensions":
		return s.handleImageDimensions(args)
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

type pathArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.GetDimensions(s.cache, a.Path)
}

// Pointers tell an omitted threshold apart from an explicit zero.
type detectEdgesArgs struct {
	Path             string   `json:"path"`
	Sigma            *float64 `json:"sigma"`
	TLow             *float64 `json:"tlow"`
	THigh            *float64 `json:"thigh"`
	Workers          int      `json:"workers"`
	IncludeDirection bool     `json:"include_direction"`
}

func (a detectEdgesArgs) params() canny.Params {
	p := canny.Params{
		Sigma:         DefaultSigma,
		TLow:          DefaultTLow,
		THigh:         DefaultTHigh,
		WantDirection: a.IncludeDirection,
	}
	if a.Sigma != nil {
		p.Sigma = *a.Sigma
	}
	if a.TLow != nil {
		p.TLow = *a.TLow
	}
	if a.THigh != nil {
		p.THigh = *a.THigh
	}
	return p
}

func (s *Server) handleDetectEdges(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a detectEdgesArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	params := a.params()
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if a.Workers < 0 {
		return nil, fmt.Errorf("%w: workers must not be negative, got %d", canny.ErrInvalidParameter, a.Workers)
	}

	frame, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	det := s.detector
	if a.Workers > 0 && a.Workers != det.Workers() {
		det = canny.New(canny.WithWorkers(a.Workers), canny.WithLogger(s.log))
	}
	return imaging.EdgeDetect(ctx, det, frame, params)
}

type kernelArgs struct {
	Sigma float64 `json:"sigma"`
}

// KernelResult describes the Gaussian kernel for one sigma.
type KernelResult struct {
	Sigma   float64   `json:"sigma"`
	Radius  int       `json:"radius"`
	Length  int       `json:"length"`
	Weights []float64 `json:"weights"`
	Sum     float64   `json:"sum"`
}

func (s *Server) handleKernel(args json.RawMessage) (interface{}, error) {
	var a kernelArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	k, err := canny.NewKernel(a.Sigma)
	if err != nil {
		return nil, err
	}
	return &KernelResult{
		Sigma:   a.Sigma,
		Radius:  k.Radius(),
		Length:  k.Len(),
		Weights: k.Weights(),
		Sum:     k.Sum(),
	}, nil
}
