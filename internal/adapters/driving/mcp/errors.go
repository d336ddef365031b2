// Package mcp provides an MCP (Model Context Protocol) server adapter for the ledger.
// It lets pipeline agents register documents, track runs and query the ledger.
package mcp

import "errors"

// ErrMissingDocumentRegistry is returned when the document registry is not provided.
var ErrMissingDocumentRegistry = errors.New("mcp: document registry is required")

// ErrMissingRunTracker is returned when the run tracker is not provided.
var ErrMissingRunTracker = errors.New("mcp: run tracker is required")
