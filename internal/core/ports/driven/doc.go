// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - DocumentStore: Document identity, status, files and links
//   - ArtifactStore: Extractions, chunks and provenance per pipeline version
//   - RunStore: Processing runs and their idempotency dedupe
//   - ErrorStore: Append-only processing errors
//   - OcrStore: OCR runs and per-page consensus results
//   - EnrichmentStore: Chunk enrichment proposals and their gating
//   - ReviewStore: Review queue entries
//   - ProjectionStore: Derived document search projection
//   - ConfigStore: Application configuration
//
// # Atomicity
//
// Workers coordinate only through these stores. Every conditional write
// described on an interface must be atomic in the implementation: a single
// conditional statement or transaction, never a check followed by a write.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
