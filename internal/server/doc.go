// Package server implements an MCP (Model Context Protocol) server that
// exposes the Canny edge detector to MCP clients.
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
//   - canny_detect_edges: Edge map, thresholds and statistics for an image file
//   - canny_kernel: The Gaussian kernel used for a given sigma
//   - image_dimensions: Width and height of an image file
//
// # Frame Caching
//
// Decoded grayscale frames are cached by path and reused across tool calls,
// so repeated detections on one file with different parameters decode it
// once. The cache persists for the lifetime of the server process.
//
// # Error Handling
//
// Tool errors are returned as JSON-RPC error responses:
//   - code: -32602 for invalid arguments (including out-of-range detection
//     parameters), -32000 for other tool failures
//   - message: Human-readable error description
//   - data: The Go error string
//
// # Usage
//
//	srv := server.New(server.WithLogger(logger))
//	if err := srv.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package server
