// Package domain defines the core ledger entities for ragledger.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: canonical identity and lifecycle status of an ingested document
//   - Extraction, Chunk, Provenance: artifacts versioned by pipeline version
//   - ProcessingRun, ProcessingError: execution attempts and their failures
//   - OcrRun, OcrPage: OCR attempts and per-page consensus results
//   - ChunkEnrichment: model-proposed chunk metadata with acceptance gating
//   - ReviewEntry: human escalation records
//   - SearchProjection: the derived searchable view of a document
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
