package services

import (
	"context"
	"time"

	"github.com/custodia-labs/ragledger/internal/core/domain"
	"github.com/custodia-labs/ragledger/internal/core/ports/driven"
	"github.com/custodia-labs/ragledger/internal/core/ports/driving"
	"github.com/custodia-labs/ragledger/internal/logger"
)

// Ensure OcrTracker implements the interface.
var _ driving.OcrTracker = (*OcrTracker)(nil)

// OcrTracker records OCR attempts. Choosing the authoritative run among
// several attempts is left to callers.
type OcrTracker struct {
	ocr  driven.OcrStore
	gate domain.QualityGate
	now  func() time.Time
}

// NewOcrTracker creates a new OCR tracker. gate only classifies pages; it
// never rejects a write.
func NewOcrTracker(ocr driven.OcrStore, gate domain.QualityGate) *OcrTracker {
	return &OcrTracker{ocr: ocr, gate: gate, now: utcNow}
}

// RecordOcrRun creates a running OCR run.
func (s *OcrTracker) RecordOcrRun(ctx context.Context, req driving.RecordOcrRunRequest) (*domain.OcrRun, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	run := &domain.OcrRun{
		ID:              newID(),
		DocumentID:      req.DocumentID,
		PipelineVersion: req.PipelineVersion,
		Engine:          req.Engine,
		Status:          domain.RunRunning,
		CreatedAt:       s.now(),
	}
	if err := s.ocr.CreateRun(ctx, run); err != nil {
		return nil, err
	}

	logger.Debug("ocr run started", "ocr_run_id", run.ID, "document_id", run.DocumentID, "engine", run.Engine)
	return run, nil
}

// RecordPageConsensus upserts the consensus result for a page. Quality is
// measured from the page text when the caller does not supply it.
func (s *OcrTracker) RecordPageConsensus(
	ctx context.Context,
	req driving.PageConsensusRequest,
) (*domain.OcrPage, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	var quality domain.PageQuality
	if req.Quality != nil {
		quality = *req.Quality
	} else {
		quality = domain.AssessOCRText(req.Text)
	}

	page := domain.OcrPage{
		RunID:        req.RunID,
		PageNumber:   req.PageNumber,
		ConsensusURI: req.ConsensusURI,
		Quality:      quality,
		UpdatedAt:    s.now(),
	}
	if err := s.ocr.UpsertPage(ctx, page); err != nil {
		return nil, err
	}

	if !s.gate.Passes(quality) {
		logger.Debug("ocr page below quality gate", "ocr_run_id", req.RunID, "page", req.PageNumber,
			"chars", quality.Chars, "alpha_ratio", quality.AlphaRatio)
	}
	return &page, nil
}

// FinishOcrRun moves an OCR run to a terminal status exactly once.
func (s *OcrTracker) FinishOcrRun(ctx context.Context, req driving.FinishOcrRunRequest) (*domain.OcrRun, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	run, err := s.ocr.FinishRun(ctx, req.RunID, req.Status, req.Metrics, s.now())
	if err != nil {
		return nil, err
	}

	logger.Debug("ocr run finished", "ocr_run_id", run.ID, "status", run.Status)
	return run, nil
}

// GetOcrRun retrieves an OCR run by ID.
func (s *OcrTracker) GetOcrRun(ctx context.Context, runID string) (*domain.OcrRun, error) {
	if err := requireArgs("ocr_run_id", runID); err != nil {
		return nil, err
	}
	return s.ocr.GetRun(ctx, runID)
}

// ListOcrRuns returns the candidate OCR runs of a document version.
func (s *OcrTracker) ListOcrRuns(ctx context.Context, documentID, pipelineVersion string) ([]domain.OcrRun, error) {
	if err := requireArgs("document_id", documentID); err != nil {
		return nil, err
	}
	return s.ocr.ListRuns(ctx, documentID, pipelineVersion)
}

// ListPages returns the pages of an OCR run.
func (s *OcrTracker) ListPages(ctx context.Context, runID string) ([]domain.OcrPage, error) {
	if err := requireArgs("ocr_run_id", runID); err != nil {
		return nil, err
	}
	if _, err := s.ocr.GetRun(ctx, runID); err != nil {
		return nil, err
	}
	return s.ocr.ListPages(ctx, runID)
}

// FailingPages returns the pages of an OCR run below the quality gate.
func (s *OcrTracker) FailingPages(ctx context.Context, runID string) ([]domain.OcrPage, error) {
	pages, err := s.ListPages(ctx, runID)
	if err != nil {
		return nil, err
	}

	var failing []domain.OcrPage
	for _, p := range pages {
		if !s.gate.Passes(p.Quality) {
			failing = append(failing, p)
		}
	}
	return failing, nil
}
