package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/ragledger/internal/core/domain"
)

// EnrichmentStore persists chunk enrichments.
type EnrichmentStore interface {
	// Propose upserts an unaccepted enrichment. Returns ErrEnrichmentRejected
	// when the version was rejected and ErrNotFound when the chunk is gone.
	Propose(ctx context.Context, enrichment *domain.ChunkEnrichment) error

	// Get retrieves one enrichment.
	Get(ctx context.Context, chunkID, enrichmentVersion string) (*domain.ChunkEnrichment, error)

	// ListForChunk returns every enrichment version of a chunk.
	ListForChunk(ctx context.Context, chunkID string) ([]domain.ChunkEnrichment, error)

	// Accept gates an enrichment in and stamps it applied, only while the
	// chunk hash still equals the hash the enrichment was computed against.
	// Returns ErrStaleEnrichment or ErrEnrichmentRejected otherwise.
	Accept(ctx context.Context, chunkID, enrichmentVersion string, at time.Time) (*domain.ChunkEnrichment, error)

	// Reject permanently rejects an unaccepted enrichment.
	// Returns ErrConflict when it was already accepted.
	Reject(ctx context.Context, chunkID, enrichmentVersion, reason string, at time.Time) (*domain.ChunkEnrichment, error)

	// Candidates returns chunks of indexed documents that need enrichment.
	Candidates(ctx context.Context, filter domain.CandidateFilter) ([]domain.EnrichmentCandidate, error)
}
