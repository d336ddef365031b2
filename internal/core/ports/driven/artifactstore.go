package driven

import (
	"context"

	"github.com/custodia-labs/ragledger/internal/core/domain"
)

// ArtifactStore persists the versioned artifacts derived from a document.
type ArtifactStore interface {
	// PutExtraction upserts an extraction keyed by
	// (document, pipeline version, extractor).
	PutExtraction(ctx context.Context, extraction domain.Extraction) error

	// GetExtraction retrieves one extraction.
	GetExtraction(ctx context.Context, documentID, pipelineVersion, extractor string) (*domain.Extraction, error)

	// ListExtractions returns every extraction of a document.
	ListExtractions(ctx context.Context, documentID string) ([]domain.Extraction, error)

	// ReplaceChunks atomically replaces the whole chunk set of a document
	// version. Readers observe either the old set or the new one.
	// Chunks whose ID survives the replacement keep their enrichments.
	ReplaceChunks(ctx context.Context, documentID, pipelineVersion string, chunks []domain.Chunk) error

	// ListChunks returns the chunks of a document version ordered by index.
	ListChunks(ctx context.Context, documentID, pipelineVersion string) ([]domain.Chunk, error)

	// GetChunk retrieves a chunk by ID.
	GetChunk(ctx context.Context, chunkID string) (*domain.Chunk, error)

	// PutProvenance upserts a provenance record keyed by
	// (document, pipeline version, source URI).
	PutProvenance(ctx context.Context, provenance domain.Provenance) error

	// ListProvenance returns the provenance records of a document version.
	ListProvenance(ctx context.Context, documentID, pipelineVersion string) ([]domain.Provenance, error)
}
