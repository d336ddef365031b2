package services

import (
	"context"
	"time"

	"github.com/custodia-labs/ragledger/internal/core/domain"
	"github.com/custodia-labs/ragledger/internal/core/ports/driven"
	"github.com/custodia-labs/ragledger/internal/core/ports/driving"
	"github.com/custodia-labs/ragledger/internal/logger"
)

// Ensure EnrichmentLedger implements the interface.
var _ driving.EnrichmentLedger = (*EnrichmentLedger)(nil)

// defaultCandidateLimit caps candidate listings when no limit is given.
const defaultCandidateLimit = 100

// EnrichmentLedger gates model-proposed chunk metadata.
type EnrichmentLedger struct {
	enrichments driven.EnrichmentStore
	now         func() time.Time
}

// NewEnrichmentLedger creates a new enrichment ledger.
func NewEnrichmentLedger(enrichments driven.EnrichmentStore) *EnrichmentLedger {
	return &EnrichmentLedger{enrichments: enrichments, now: utcNow}
}

// Propose records an unaccepted enrichment. Re-proposing a version resets
// its acceptance; a rejected version stays rejected.
func (s *EnrichmentLedger) Propose(
	ctx context.Context,
	req driving.ProposeEnrichmentRequest,
) (*domain.ChunkEnrichment, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	now := s.now()
	err := s.enrichments.Propose(ctx, &domain.ChunkEnrichment{
		ChunkID:           req.ChunkID,
		EnrichmentVersion: req.EnrichmentVersion,
		Model:             req.Model,
		ChunkSHA256:       req.ChunkSHA256,
		InputSHA256:       req.InputSHA256,
		Confidence:        req.Confidence,
		Output:            req.Output,
		CreatedAt:         now,
		UpdatedAt:         now,
	})
	if err != nil {
		return nil, err
	}

	logger.Debug("enrichment proposed", "chunk_id", req.ChunkID, "enrichment_version", req.EnrichmentVersion,
		"model", req.Model)
	return s.enrichments.Get(ctx, req.ChunkID, req.EnrichmentVersion)
}

// Accept accepts and applies an enrichment computed against the current
// chunk content.
func (s *EnrichmentLedger) Accept(
	ctx context.Context,
	chunkID, enrichmentVersion string,
) (*domain.ChunkEnrichment, error) {
	if err := requireArgs("chunk_id", chunkID, "enrichment_version", enrichmentVersion); err != nil {
		return nil, err
	}

	e, err := s.enrichments.Accept(ctx, chunkID, enrichmentVersion, s.now())
	if err != nil {
		return nil, err
	}

	logger.Debug("enrichment accepted", "chunk_id", chunkID, "enrichment_version", enrichmentVersion)
	return e, nil
}

// Reject permanently rejects an enrichment version.
func (s *EnrichmentLedger) Reject(
	ctx context.Context,
	chunkID, enrichmentVersion, reason string,
) (*domain.ChunkEnrichment, error) {
	if err := requireArgs("chunk_id", chunkID, "enrichment_version", enrichmentVersion,
		"reason", reason); err != nil {
		return nil, err
	}

	e, err := s.enrichments.Reject(ctx, chunkID, enrichmentVersion, reason, s.now())
	if err != nil {
		return nil, err
	}

	logger.Debug("enrichment rejected", "chunk_id", chunkID, "enrichment_version", enrichmentVersion,
		"reason", reason)
	return e, nil
}

// Get retrieves one enrichment.
func (s *EnrichmentLedger) Get(
	ctx context.Context,
	chunkID, enrichmentVersion string,
) (*domain.ChunkEnrichment, error) {
	if err := requireArgs("chunk_id", chunkID, "enrichment_version", enrichmentVersion); err != nil {
		return nil, err
	}
	return s.enrichments.Get(ctx, chunkID, enrichmentVersion)
}

// ListForChunk returns every enrichment of a chunk.
func (s *EnrichmentLedger) ListForChunk(ctx context.Context, chunkID string) ([]domain.ChunkEnrichment, error) {
	if err := requireArgs("chunk_id", chunkID); err != nil {
		return nil, err
	}
	return s.enrichments.ListForChunk(ctx, chunkID)
}

// Candidates returns chunks of indexed documents that need enrichment.
func (s *EnrichmentLedger) Candidates(
	ctx context.Context,
	filter domain.CandidateFilter,
) ([]domain.EnrichmentCandidate, error) {
	if err := requireArgs("pipeline_version", filter.PipelineVersion,
		"enrichment_version", filter.EnrichmentVersion); err != nil {
		return nil, err
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultCandidateLimit
	}
	return s.enrichments.Candidates(ctx, filter)
}
