package memory

import (
	"context"
	"sort"
	"time"

	"github.com/custodia-labs/ragledger/internal/core/domain"
	"github.com/custodia-labs/ragledger/internal/core/ports/driven"
)

// ocrStore implements driven.OcrStore.
type ocrStore struct {
	store *Store
}

var _ driven.OcrStore = (*ocrStore)(nil)

// CreateRun inserts a new OCR run.
func (s *ocrStore) CreateRun(_ context.Context, run *domain.OcrRun) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	if !s.store.hasDocument(run.DocumentID) {
		return domain.ErrNotFound
	}
	if _, ok := s.store.ocrRuns[run.ID]; ok {
		return domain.ErrConflict
	}
	s.store.ocrRuns[run.ID] = &ocrRunRow{run: *run, seq: s.store.nextSeq()}
	return nil
}

// GetRun retrieves an OCR run by ID.
func (s *ocrStore) GetRun(_ context.Context, id string) (*domain.OcrRun, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	row, ok := s.store.ocrRuns[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	run := row.run
	return &run, nil
}

// ListRuns returns the OCR runs of a document version, oldest first.
func (s *ocrStore) ListRuns(_ context.Context, documentID, pipelineVersion string) ([]domain.OcrRun, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	var rows []*ocrRunRow
	for _, row := range s.store.ocrRuns {
		if row.run.DocumentID != documentID {
			continue
		}
		if pipelineVersion != "" && row.run.PipelineVersion != pipelineVersion {
			continue
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].seq < rows[j].seq })

	runs := make([]domain.OcrRun, 0, len(rows))
	for _, row := range rows {
		runs = append(runs, row.run)
	}
	return runs, nil
}

// UpsertPage records a page result while the run is still running.
func (s *ocrStore) UpsertPage(_ context.Context, page domain.OcrPage) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	row, ok := s.store.ocrRuns[page.RunID]
	if !ok {
		return domain.ErrNotFound
	}
	if row.run.Status.IsTerminal() {
		return domain.ErrAlreadyTerminal
	}
	s.store.ocrPages[pageKey{page.RunID, page.PageNumber}] = page
	return nil
}

// ListPages returns the pages of an OCR run ordered by page number.
func (s *ocrStore) ListPages(_ context.Context, runID string) ([]domain.OcrPage, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	var pages []domain.OcrPage
	for k, p := range s.store.ocrPages {
		if k.runID == runID {
			pages = append(pages, p)
		}
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].PageNumber < pages[j].PageNumber })
	return pages, nil
}

// FinishRun moves a running OCR run to a terminal status exactly once.
func (s *ocrStore) FinishRun(
	_ context.Context,
	id string,
	status domain.RunStatus,
	metrics domain.OcrMetrics,
	at time.Time,
) (*domain.OcrRun, error) {
	if !status.IsTerminal() {
		return nil, domain.ErrInvalidInput
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	row, ok := s.store.ocrRuns[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if row.run.Status.IsTerminal() {
		return nil, domain.ErrAlreadyTerminal
	}

	row.run.Status = status
	row.run.Metrics = row.run.Metrics.Merge(metrics)
	row.run.FinishedAt = at
	run := row.run
	return &run, nil
}
