package memory

import (
	"context"
	"sort"
	"time"

	"github.com/custodia-labs/ragledger/internal/core/domain"
	"github.com/custodia-labs/ragledger/internal/core/ports/driven"
)

// runStore implements driven.RunStore.
type runStore struct {
	store *Store
}

var _ driven.RunStore = (*runStore)(nil)

// Start inserts run unless its idempotency key is taken.
func (s *runStore) Start(_ context.Context, run *domain.ProcessingRun) (*domain.ProcessingRun, bool, error) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	if id, ok := s.store.runKeys[run.IdempotencyKey]; ok {
		existing := s.store.runs[id].run
		return &existing, false, nil
	}
	if _, ok := s.store.runs[run.ID]; ok {
		return nil, false, domain.ErrConflict
	}
	if run.DocumentID != "" && !s.store.hasDocument(run.DocumentID) {
		return nil, false, domain.ErrNotFound
	}

	s.store.runs[run.ID] = &runRow{run: *run, startSeq: s.store.nextSeq()}
	s.store.runKeys[run.IdempotencyKey] = run.ID
	created := *run
	return &created, true, nil
}

// Get retrieves a run by ID.
func (s *runStore) Get(_ context.Context, id string) (*domain.ProcessingRun, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	row, ok := s.store.runs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	run := row.run
	return &run, nil
}

// MarkRunning moves a pending run to running.
func (s *runStore) MarkRunning(_ context.Context, id string) (*domain.ProcessingRun, error) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	row, ok := s.store.runs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if row.run.Status.IsTerminal() {
		return nil, domain.ErrAlreadyTerminal
	}
	row.run.Status = domain.RunRunning
	run := row.run
	return &run, nil
}

// Finish moves a non-terminal run to a terminal status exactly once.
func (s *runStore) Finish(
	_ context.Context,
	id string,
	status domain.RunStatus,
	metrics domain.RunMetrics,
	at time.Time,
) (*domain.ProcessingRun, error) {
	if !status.IsTerminal() {
		return nil, domain.ErrInvalidInput
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	row, ok := s.store.runs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if row.run.Status.IsTerminal() {
		return nil, domain.ErrAlreadyTerminal
	}

	row.run.Status = status
	row.run.Metrics = metrics
	row.run.FinishedAt = at
	row.finishSeq = s.store.nextSeq()
	run := row.run
	return &run, nil
}

// LatestFor returns the most recently started run of a document version.
func (s *runStore) LatestFor(_ context.Context, documentID, pipelineVersion string) (*domain.ProcessingRun, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	var latest *runRow
	for _, row := range s.store.runs {
		if row.run.DocumentID != documentID || row.run.PipelineVersion != pipelineVersion {
			continue
		}
		if latest == nil || row.startSeq > latest.startSeq {
			latest = row
		}
	}
	if latest == nil {
		return nil, domain.ErrNotFound
	}
	run := latest.run
	return &run, nil
}

// LatestSucceededVersion returns the version of the last committed success.
func (s *runStore) LatestSucceededVersion(_ context.Context, documentID string) (string, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	var latest *runRow
	for _, row := range s.store.runs {
		if row.run.DocumentID != documentID || row.run.Status != domain.RunSucceeded {
			continue
		}
		if latest == nil || row.finishSeq > latest.finishSeq {
			latest = row
		}
	}
	if latest == nil {
		return "", domain.ErrNotFound
	}
	return latest.run.PipelineVersion, nil
}

// List returns runs matching filter, most recently started first.
func (s *runStore) List(_ context.Context, filter domain.RunFilter) ([]domain.ProcessingRun, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	var rows []*runRow
	for _, row := range s.store.runs {
		r := row.run
		if filter.CorrelationID != "" && r.CorrelationID != filter.CorrelationID {
			continue
		}
		if filter.PipelineVersion != "" && r.PipelineVersion != filter.PipelineVersion {
			continue
		}
		if filter.DocumentID != "" && r.DocumentID != filter.DocumentID {
			continue
		}
		if filter.Status != "" && r.Status != filter.Status {
			continue
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].startSeq > rows[j].startSeq })

	runs := make([]domain.ProcessingRun, 0, len(rows))
	for _, row := range limitOf(rows, filter.Limit) {
		runs = append(runs, row.run)
	}
	return runs, nil
}

// Delete removes a run and its errors.
func (s *runStore) Delete(_ context.Context, id string) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	row, ok := s.store.runs[id]
	if !ok {
		return domain.ErrNotFound
	}
	delete(s.store.runs, id)
	delete(s.store.runKeys, row.run.IdempotencyKey)

	kept := s.store.errors[:0]
	for _, e := range s.store.errors {
		if e.RunID != id {
			kept = append(kept, e)
		}
	}
	s.store.errors = kept
	return nil
}

// errorStore implements driven.ErrorStore.
type errorStore struct {
	store *Store
}

var _ driven.ErrorStore = (*errorStore)(nil)

// Append records an error against an existing run.
func (s *errorStore) Append(_ context.Context, procErr *domain.ProcessingError) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	if _, ok := s.store.runs[procErr.RunID]; !ok {
		return domain.ErrNotFound
	}
	s.store.errors = append(s.store.errors, *procErr)
	return nil
}

// ListByRun returns the errors of a run, oldest first.
func (s *errorStore) ListByRun(_ context.Context, runID string) ([]domain.ProcessingError, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	var out []domain.ProcessingError
	for _, e := range s.store.errors {
		if e.RunID == runID {
			out = append(out, e)
		}
	}
	return out, nil
}

// ListByCorrelation returns errors sharing a correlation ID, oldest first.
func (s *errorStore) ListByCorrelation(
	_ context.Context,
	correlationID string,
	limit int,
) ([]domain.ProcessingError, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	var out []domain.ProcessingError
	for _, e := range s.store.errors {
		if e.CorrelationID == correlationID {
			out = append(out, e)
		}
	}
	return limitOf(out, limit), nil
}
