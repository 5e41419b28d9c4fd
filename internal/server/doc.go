// Package server implements the MCP (Model Context Protocol) server for page
// layout analysis.
//
// The server exposes one layout session (see package facade) through a
// JSON-RPC 2.0 protocol, so that Claude and other MCP clients can open a
// book, segment its pages into typed regions, correct the result and
// exchange PAGE XML and settings documents.
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
// Books and Session:
//   - layout_list_books: Books below the resource path
//   - layout_init: Open a book
//   - layout_clear: Close the book and drop all session state
//   - layout_status: Session state and last parameters
//   - layout_default_settings: Default settings for a book
//
// Segmentation:
//   - layout_segment_page: Segment a page (or load its cached result)
//   - layout_merge: Merge regions along the page ink
//   - layout_render_preview: Draw regions over the page image
//
// Export and Import:
//   - layout_prepare_export, layout_page_xml, layout_save_page_xml
//   - layout_prepare_settings, layout_settings_xml
//   - layout_read_settings, layout_read_page_xml
//
// XML documents travel base64-encoded in the xml_base64 field.
//
// # Session
//
// Requests are handled one at a time in arrival order, which makes the
// server the single owner of its session. Configuration reloads
// (SetConfig) may arrive from another goroutine and only affect later
// requests.
//
// # Error Handling
//
// Arguments are validated against the tool's input schema before the tool
// runs. Failures are returned as JSON-RPC error responses with:
//   - code: -32602 (arguments rejected), -32000 (tool execution failure)
//     or other standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string
//
// # Usage
//
//	srv, err := server.New(cfg, logger)
//	if err != nil {
//	    return err
//	}
//	return srv.Run(ctx)
package server
