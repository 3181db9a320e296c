// Package mcp provides an MCP (Model Context Protocol) server adapter.
// It lets AI assistants list environments, classify order text and query
// enriched orders.
package mcp

import "errors"

// Errors returned when required ports are missing.
var (
	ErrMissingRegistry   = errors.New("mcp: environment registry is required")
	ErrMissingClassifier = errors.New("mcp: classifier is required")
	ErrMissingOrderQuery = errors.New("mcp: order query is required")
)
