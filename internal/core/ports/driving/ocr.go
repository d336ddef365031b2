package driving

import (
	"context"

	"github.com/custodia-labs/ragledger/internal/core/domain"
)

// OcrTracker records OCR attempts and their per-page consensus. It never
// selects an authoritative run; callers decide from the page quality.
type OcrTracker interface {
	// RecordOcrRun creates a running OCR run.
	RecordOcrRun(ctx context.Context, req RecordOcrRunRequest) (*domain.OcrRun, error)

	// RecordPageConsensus upserts the consensus result for a page.
	RecordPageConsensus(ctx context.Context, req PageConsensusRequest) (*domain.OcrPage, error)

	// FinishOcrRun moves an OCR run to a terminal status exactly once.
	FinishOcrRun(ctx context.Context, req FinishOcrRunRequest) (*domain.OcrRun, error)

	// GetOcrRun retrieves an OCR run by ID.
	GetOcrRun(ctx context.Context, runID string) (*domain.OcrRun, error)

	// ListOcrRuns returns the candidate OCR runs of a document version.
	ListOcrRuns(ctx context.Context, documentID, pipelineVersion string) ([]domain.OcrRun, error)

	// ListPages returns the pages of an OCR run.
	ListPages(ctx context.Context, runID string) ([]domain.OcrPage, error)

	// FailingPages returns the pages of an OCR run below the quality gate.
	FailingPages(ctx context.Context, runID string) ([]domain.OcrPage, error)
}

// RecordOcrRunRequest starts an OCR run.
type RecordOcrRunRequest struct {
	DocumentID      string `json:"document_id" validate:"required"`
	PipelineVersion string `json:"pipeline_version" validate:"required"`
	Engine          string `json:"engine" validate:"required"`
}

// PageConsensusRequest records a page result.
type PageConsensusRequest struct {
	RunID        string `json:"ocr_run_id" validate:"required"`
	PageNumber   int    `json:"page_number" validate:"gte=1"`
	ConsensusURI string `json:"consensus_uri" validate:"required"`

	// Quality is measured from Text when nil.
	Quality *domain.PageQuality `json:"quality,omitempty"`
	Text    string              `json:"text,omitempty"`
}

// FinishOcrRunRequest finishes an OCR run.
type FinishOcrRunRequest struct {
	RunID   string            `json:"ocr_run_id" validate:"required"`
	Status  domain.RunStatus  `json:"status" validate:"required,oneof=succeeded failed cancelled"`
	Metrics domain.OcrMetrics `json:"metrics"`
}
