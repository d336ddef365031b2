package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/ragledger/internal/core/domain"
)

// OcrStore persists OCR runs and page consensus results.
type OcrStore interface {
	// CreateRun inserts a new OCR run.
	CreateRun(ctx context.Context, run *domain.OcrRun) error

	// GetRun retrieves an OCR run by ID.
	GetRun(ctx context.Context, id string) (*domain.OcrRun, error)

	// ListRuns returns the OCR runs of a document version, oldest first.
	// An empty pipeline version matches every version.
	ListRuns(ctx context.Context, documentID, pipelineVersion string) ([]domain.OcrRun, error)

	// UpsertPage records the consensus result for a page of a running OCR run.
	// Returns ErrAlreadyTerminal once the run has finished.
	UpsertPage(ctx context.Context, page domain.OcrPage) error

	// ListPages returns the pages of an OCR run ordered by page number.
	ListPages(ctx context.Context, runID string) ([]domain.OcrPage, error)

	// FinishRun moves a running OCR run to a terminal status exactly once,
	// merging metrics into the stored ones.
	FinishRun(ctx context.Context, id string, status domain.RunStatus, metrics domain.OcrMetrics, at time.Time) (*domain.OcrRun, error)
}
