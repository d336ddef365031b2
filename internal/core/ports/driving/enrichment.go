package driving

import (
	"context"

	"github.com/custodia-labs/ragledger/internal/core/domain"
)

// EnrichmentLedger gates model-proposed chunk metadata.
type EnrichmentLedger interface {
	// Propose records an unaccepted enrichment for a chunk version.
	Propose(ctx context.Context, req ProposeEnrichmentRequest) (*domain.ChunkEnrichment, error)

	// Accept accepts and applies an enrichment. Fails with
	// ErrStaleEnrichment when the chunk changed since it was computed.
	Accept(ctx context.Context, chunkID, enrichmentVersion string) (*domain.ChunkEnrichment, error)

	// Reject permanently rejects an enrichment version.
	Reject(ctx context.Context, chunkID, enrichmentVersion, reason string) (*domain.ChunkEnrichment, error)

	// Get retrieves one enrichment.
	Get(ctx context.Context, chunkID, enrichmentVersion string) (*domain.ChunkEnrichment, error)

	// ListForChunk returns every enrichment of a chunk.
	ListForChunk(ctx context.Context, chunkID string) ([]domain.ChunkEnrichment, error)

	// Candidates returns chunks that need enrichment for a version.
	Candidates(ctx context.Context, filter domain.CandidateFilter) ([]domain.EnrichmentCandidate, error)
}

// ProposeEnrichmentRequest proposes an enrichment.
type ProposeEnrichmentRequest struct {
	ChunkID           string                  `json:"chunk_id" validate:"required"`
	EnrichmentVersion string                  `json:"enrichment_version" validate:"required"`
	Model             string                  `json:"model" validate:"required"`
	ChunkSHA256       string                  `json:"chunk_sha256" validate:"required"`
	InputSHA256       string                  `json:"input_sha256" validate:"required"`
	Confidence        *float64                `json:"confidence,omitempty" validate:"omitempty,gte=0,lte=1"`
	Output            domain.EnrichmentOutput `json:"output"`
}
