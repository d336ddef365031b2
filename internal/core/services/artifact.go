package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/custodia-labs/ragledger/internal/core/domain"
	"github.com/custodia-labs/ragledger/internal/core/ports/driven"
	"github.com/custodia-labs/ragledger/internal/core/ports/driving"
	"github.com/custodia-labs/ragledger/internal/logger"
)

// Ensure ArtifactService implements the interface.
var _ driving.ArtifactService = (*ArtifactService)(nil)

// ArtifactService stores the versioned artifacts of documents.
type ArtifactService struct {
	artifacts driven.ArtifactStore
	runs      driven.RunStore
	reviews   driving.ReviewQueue
	gate      domain.ExtractionGate
	now       func() time.Time
}

// NewArtifactService creates a new artifact service. Extraction issues
// found by ValidateExtraction are escalated to reviews.
func NewArtifactService(
	artifacts driven.ArtifactStore,
	runs driven.RunStore,
	reviews driving.ReviewQueue,
	gate domain.ExtractionGate,
) *ArtifactService {
	return &ArtifactService{
		artifacts: artifacts,
		runs:      runs,
		reviews:   reviews,
		gate:      gate,
		now:       utcNow,
	}
}

// PutExtraction upserts an extraction result.
func (s *ArtifactService) PutExtraction(
	ctx context.Context,
	req driving.PutExtractionRequest,
) (*domain.Extraction, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	now := s.now()
	err := s.artifacts.PutExtraction(ctx, domain.Extraction{
		DocumentID:      req.DocumentID,
		PipelineVersion: req.PipelineVersion,
		Extractor:       req.Extractor,
		ExtractedURI:    req.ExtractedURI,
		Metrics:         req.Metrics,
		CreatedAt:       now,
		UpdatedAt:       now,
	})
	if err != nil {
		return nil, err
	}

	logger.Debug("extraction stored",
		"document_id", req.DocumentID, "pipeline_version", req.PipelineVersion, "extractor", req.Extractor)
	return s.artifacts.GetExtraction(ctx, req.DocumentID, req.PipelineVersion, req.Extractor)
}

// GetExtraction retrieves one extraction.
func (s *ArtifactService) GetExtraction(
	ctx context.Context,
	documentID, pipelineVersion, extractor string,
) (*domain.Extraction, error) {
	if err := requireArgs("document_id", documentID, "pipeline_version", pipelineVersion,
		"extractor", extractor); err != nil {
		return nil, err
	}
	return s.artifacts.GetExtraction(ctx, documentID, pipelineVersion, extractor)
}

// ListExtractions returns every extraction of a document.
func (s *ArtifactService) ListExtractions(ctx context.Context, documentID string) ([]domain.Extraction, error) {
	if err := requireArgs("document_id", documentID); err != nil {
		return nil, err
	}
	return s.artifacts.ListExtractions(ctx, documentID)
}

// PutChunks atomically replaces the chunk set of a document version.
// Chunks may omit DocumentID and PipelineVersion; missing IDs are derived
// from the chunk position.
func (s *ArtifactService) PutChunks(
	ctx context.Context,
	documentID, pipelineVersion string,
	chunks []domain.Chunk,
) ([]domain.Chunk, error) {
	if err := requireArgs("document_id", documentID, "pipeline_version", pipelineVersion); err != nil {
		return nil, err
	}

	now := s.now()
	prepared := make([]domain.Chunk, len(chunks))
	for i, c := range chunks {
		if c.DocumentID == "" {
			c.DocumentID = documentID
		}
		if c.PipelineVersion == "" {
			c.PipelineVersion = pipelineVersion
		}
		if c.ID == "" {
			c.ID = ChunkID(documentID, pipelineVersion, c.Index)
		}
		c.CreatedAt = now
		c.UpdatedAt = now
		prepared[i] = c
	}

	if err := domain.ValidateChunkSequence(documentID, pipelineVersion, prepared); err != nil {
		return nil, err
	}

	sort.Slice(prepared, func(i, j int) bool {
		return prepared[i].Index < prepared[j].Index
	})

	if err := s.artifacts.ReplaceChunks(ctx, documentID, pipelineVersion, prepared); err != nil {
		return nil, err
	}

	logger.Debug("chunks replaced",
		"document_id", documentID, "pipeline_version", pipelineVersion, "count", len(prepared))
	return prepared, nil
}

// ListChunks returns the chunks of a document version ordered by index.
func (s *ArtifactService) ListChunks(ctx context.Context, documentID, pipelineVersion string) ([]domain.Chunk, error) {
	if err := requireArgs("document_id", documentID, "pipeline_version", pipelineVersion); err != nil {
		return nil, err
	}
	return s.artifacts.ListChunks(ctx, documentID, pipelineVersion)
}

// GetChunk retrieves a chunk by ID.
func (s *ArtifactService) GetChunk(ctx context.Context, chunkID string) (*domain.Chunk, error) {
	if err := requireArgs("chunk_id", chunkID); err != nil {
		return nil, err
	}
	return s.artifacts.GetChunk(ctx, chunkID)
}

// PutProvenance upserts a citation record.
func (s *ArtifactService) PutProvenance(
	ctx context.Context,
	req driving.PutProvenanceRequest,
) (*domain.Provenance, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	now := s.now()
	retrievedAt := req.RetrievedAt
	if retrievedAt.IsZero() {
		retrievedAt = now
	}

	p := domain.Provenance{
		DocumentID:      req.DocumentID,
		PipelineVersion: req.PipelineVersion,
		SourceURI:       req.SourceURI,
		Label:           req.Label,
		License:         req.License,
		RetrievedAt:     retrievedAt.UTC(),
		Attributes:      req.Attributes,
		UpdatedAt:       now,
	}
	if err := s.artifacts.PutProvenance(ctx, p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListProvenance returns the citation records of a document version.
func (s *ArtifactService) ListProvenance(
	ctx context.Context,
	documentID, pipelineVersion string,
) ([]domain.Provenance, error) {
	if err := requireArgs("document_id", documentID, "pipeline_version", pipelineVersion); err != nil {
		return nil, err
	}
	return s.artifacts.ListProvenance(ctx, documentID, pipelineVersion)
}

// GetLatestVersion returns the pipeline version of the most recently
// committed successful run for a document. Version strings are opaque and
// never compared.
func (s *ArtifactService) GetLatestVersion(ctx context.Context, documentID string) (string, error) {
	if err := requireArgs("document_id", documentID); err != nil {
		return "", err
	}
	return s.runs.LatestSucceededVersion(ctx, documentID)
}

// ValidateExtraction checks extracted text against the extraction gate and
// enqueues one review entry per issue, using the issue code as reason.
func (s *ArtifactService) ValidateExtraction(
	ctx context.Context,
	req driving.ValidateExtractionRequest,
) ([]domain.ValidationIssue, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	issues := s.gate.Validate(req.Text, req.ContentType)
	for _, issue := range issues {
		_, err := s.reviews.Enqueue(ctx, driving.EnqueueReviewRequest{
			DocumentID:      req.DocumentID,
			PipelineVersion: req.PipelineVersion,
			Reason:          issue.Code,
		})
		if err != nil {
			return nil, fmt.Errorf("enqueueing review for %s: %w", issue.Code, err)
		}
	}

	if len(issues) > 0 {
		logger.Warn("extraction failed validation",
			"document_id", req.DocumentID, "pipeline_version", req.PipelineVersion, "issues", len(issues))
	}
	return issues, nil
}
