// Package tui provides an interactive terminal user interface for the ledger.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/ragledger/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Reviews is the human review queue.
	Reviews driving.ReviewQueue

	// Documents provides document lookups for the details view.
	Documents driving.DocumentRegistry

	// Runs provides the run history shown in the details view.
	Runs driving.RunTracker

	// Search queries the search projection.
	Search driving.SearchProjection
}

// NewPorts creates a new Ports aggregate with the given services.
func NewPorts(
	reviews driving.ReviewQueue,
	documents driving.DocumentRegistry,
	runs driving.RunTracker,
	search driving.SearchProjection,
) *Ports {
	return &Ports{
		Reviews:   reviews,
		Documents: documents,
		Runs:      runs,
		Search:    search,
	}
}

// Validate ensures all required ports are set.
// Search is optional; the menu hides it when nil.
func (p *Ports) Validate() error {
	if p.Reviews == nil {
		return ErrMissingReviewQueue
	}
	if p.Documents == nil {
		return ErrMissingDocumentRegistry
	}
	return nil
}
