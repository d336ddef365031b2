package driving

import (
	"context"
	"time"

	"github.com/custodia-labs/ragledger/internal/core/domain"
)

// ArtifactService stores versioned extractions, chunks and provenance.
type ArtifactService interface {
	// PutExtraction upserts an extraction result.
	PutExtraction(ctx context.Context, req PutExtractionRequest) (*domain.Extraction, error)

	// GetExtraction retrieves one extraction.
	GetExtraction(ctx context.Context, documentID, pipelineVersion, extractor string) (*domain.Extraction, error)

	// ListExtractions returns every extraction of a document.
	ListExtractions(ctx context.Context, documentID string) ([]domain.Extraction, error)

	// PutChunks atomically replaces the chunk set of a document version.
	// Fails with ErrInvalidChunkSequence unless indexes are dense and
	// zero-based. Chunks without an ID get a deterministic one.
	PutChunks(ctx context.Context, documentID, pipelineVersion string, chunks []domain.Chunk) ([]domain.Chunk, error)

	// ListChunks returns the chunks of a document version ordered by index.
	ListChunks(ctx context.Context, documentID, pipelineVersion string) ([]domain.Chunk, error)

	// GetChunk retrieves a chunk by ID.
	GetChunk(ctx context.Context, chunkID string) (*domain.Chunk, error)

	// PutProvenance upserts a citation record.
	PutProvenance(ctx context.Context, req PutProvenanceRequest) (*domain.Provenance, error)

	// ListProvenance returns the citation records of a document version.
	ListProvenance(ctx context.Context, documentID, pipelineVersion string) ([]domain.Provenance, error)

	// GetLatestVersion returns the pipeline version of the most recently
	// committed successful run for a document.
	GetLatestVersion(ctx context.Context, documentID string) (string, error)

	// ValidateExtraction checks extracted text quality and enqueues one
	// review entry per issue found.
	ValidateExtraction(ctx context.Context, req ValidateExtractionRequest) ([]domain.ValidationIssue, error)
}

// PutExtractionRequest records an extraction.
type PutExtractionRequest struct {
	DocumentID      string                   `json:"document_id" validate:"required"`
	PipelineVersion string                   `json:"pipeline_version" validate:"required"`
	Extractor       string                   `json:"extractor" validate:"required"`
	ExtractedURI    string                   `json:"extracted_uri"`
	Metrics         domain.ExtractionMetrics `json:"metrics"`
}

// PutProvenanceRequest records a citation.
type PutProvenanceRequest struct {
	DocumentID      string            `json:"document_id" validate:"required"`
	PipelineVersion string            `json:"pipeline_version" validate:"required"`
	SourceURI       string            `json:"source_uri" validate:"required"`
	Label           string            `json:"label"`
	License         string            `json:"license"`
	Attributes      map[string]string `json:"attributes"`

	// RetrievedAt defaults to the time of the call.
	RetrievedAt time.Time `json:"retrieved_at"`
}

// ValidateExtractionRequest checks extracted text.
type ValidateExtractionRequest struct {
	DocumentID      string `json:"document_id" validate:"required"`
	PipelineVersion string `json:"pipeline_version" validate:"required"`
	Text            string `json:"text"`
	ContentType     string `json:"content_type"`
}
