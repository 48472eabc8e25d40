// Package server implements the MCP (Model Context Protocol) server that lets
// an assistant plan, preview, generate and audit visual search stimuli.
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
// Planning:
//   - stims_plan: Placement plan and uniqueness feasibility for a grid geometry
//
// Rendering:
//   - stims_preview: Render one display and return it as base64 PNG with its
//     metadata, optionally with the placement grid drawn over it
//   - stims_make: Generate a whole dataset from a YAML config
//
// Inspection:
//   - stims_audit: Check a generated dataset against its metadata
//   - stims_inspect: Dimensions, items, dominant colors and pixel samples of an image
//   - stims_crop: Extract a rectangular region, optionally enlarged
//
// # Image Caching
//
// Inspection tools share an in-memory cache of decoded images keyed by path.
// The cache persists for the lifetime of the server process; stims_make
// clears it and stims_preview evicts the file it saves.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string
//
// An infeasible uniqueness request is not an error for stims_plan: the
// result reports it with "feasible": false.
//
// # Usage
//
//	srv := server.New(logger, version)
//	if err := srv.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// Logs go to the zap logger, never to stdout.
package server
