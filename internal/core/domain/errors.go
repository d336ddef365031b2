package domain

import "errors"

// Domain errors represent ledger contract violations.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a referenced entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotImplemented indicates functionality is not available in this build.
	ErrNotImplemented = errors.New("not implemented")

	// ErrConflict indicates an identity or uniqueness violation, for example
	// re-registering a document under a different source URI.
	ErrConflict = errors.New("conflict")

	// Write-once and state machine errors.

	// ErrInvalidTransition indicates a document status change not permitted
	// by the lifecycle state machine.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrAlreadyTerminal indicates a run has already reached a terminal status.
	ErrAlreadyTerminal = errors.New("run already terminal")

	// ErrAlreadyResolved indicates a review entry has already been resolved.
	ErrAlreadyResolved = errors.New("review already resolved")

	// Artifact errors.

	// ErrInvalidChunkSequence indicates chunk indexes are not a dense,
	// zero-based sequence for a document and pipeline version.
	ErrInvalidChunkSequence = errors.New("invalid chunk sequence")

	// Enrichment errors.

	// ErrStaleEnrichment indicates the chunk content changed since the
	// enrichment was computed.
	ErrStaleEnrichment = errors.New("stale enrichment")

	// ErrEnrichmentRejected indicates the enrichment version was rejected.
	// Rejection is permanent for that version.
	ErrEnrichmentRejected = errors.New("enrichment rejected")
)
