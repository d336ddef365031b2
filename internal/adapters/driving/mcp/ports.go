package mcp

import (
	"github.com/custodia-labs/ragledger/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Documents manages the document registry.
	Documents driving.DocumentRegistry

	// Runs tracks processing runs.
	Runs driving.RunTracker

	// Errors appends processing errors.
	Errors driving.ErrorLedger

	// Artifacts stores versioned chunks and extractions.
	Artifacts driving.ArtifactService

	// Reviews is the human review queue.
	Reviews driving.ReviewQueue

	// Search queries the search projection.
	Search driving.SearchProjection
}

// Validate ensures all required ports are set.
// Tools backed by an optional port are only registered when it is set.
func (p *Ports) Validate() error {
	if p.Documents == nil {
		return ErrMissingDocumentRegistry
	}
	if p.Runs == nil {
		return ErrMissingRunTracker
	}
	return nil
}
