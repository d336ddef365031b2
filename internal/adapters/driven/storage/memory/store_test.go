package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragledger/internal/core/domain"
)

var testTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func seedDocument(t *testing.T, s *Store, id string) {
	t.Helper()
	_, created, err := s.DocumentStore().Register(context.Background(), &domain.Document{
		ID:        id,
		Source:    "arxiv",
		SourceURI: "https://example.org/" + id,
		Status:    domain.StatusDiscovered,
		CreatedAt: testTime,
		UpdatedAt: testTime,
	})
	require.NoError(t, err)
	require.True(t, created)
}

func seedChunks(t *testing.T, s *Store, docID, version string, hashes ...string) []domain.Chunk {
	t.Helper()
	chunks := make([]domain.Chunk, len(hashes))
	for i, h := range hashes {
		chunks[i] = domain.Chunk{
			ID:              fmt.Sprintf("%s-%s-%d", docID, version, i),
			DocumentID:      docID,
			PipelineVersion: version,
			Index:           i,
			SHA256:          h,
			CreatedAt:       testTime,
		}
	}
	require.NoError(t, s.ArtifactStore().ReplaceChunks(context.Background(), docID, version, chunks))
	return chunks
}

// TestDocumentStore_RegisterIsIdempotent tests that re-registering returns the stored row
func TestDocumentStore_RegisterIsIdempotent(t *testing.T) {
	s := NewStore()
	seedDocument(t, s, "doc-1")

	doc, created, err := s.DocumentStore().Register(context.Background(), &domain.Document{
		ID: "doc-1", Source: "other", SourceURI: "https://elsewhere",
	})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "arxiv", doc.Source)
}

// TestDocumentStore_CompareAndSetStatus tests optimistic status updates
func TestDocumentStore_CompareAndSetStatus(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seedDocument(t, s, "doc-1")
	docs := s.DocumentStore()

	require.NoError(t, docs.CompareAndSetStatus(ctx, "doc-1",
		domain.StatusDiscovered, domain.StatusFetched, "", testTime))

	err := docs.CompareAndSetStatus(ctx, "doc-1", domain.StatusDiscovered, domain.StatusExtracted, "", testTime)
	assert.ErrorIs(t, err, domain.ErrConflict)

	err = docs.CompareAndSetStatus(ctx, "missing", domain.StatusDiscovered, domain.StatusFetched, "", testTime)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	doc, err := docs.Get(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFetched, doc.Status)
}

// TestDocumentStore_ReturnsCopies tests that callers cannot mutate stored state
func TestDocumentStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seedDocument(t, s, "doc-1")
	require.NoError(t, s.DocumentStore().UpdateMetadata(ctx, "doc-1",
		domain.DocumentMetadata{Categories: []string{"cs.CL"}}, testTime))

	doc, err := s.DocumentStore().Get(ctx, "doc-1")
	require.NoError(t, err)
	doc.Categories[0] = "mutated"

	again, err := s.DocumentStore().Get(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"cs.CL"}, again.Categories)
}

// TestStore_DeleteDocumentCascades tests that owned records are removed and runs survive
func TestStore_DeleteDocumentCascades(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seedDocument(t, s, "doc-1")
	seedDocument(t, s, "doc-2")

	require.NoError(t, s.DocumentStore().PutFile(ctx, domain.DocumentFile{DocumentID: "doc-1", Variant: "raw"}))
	require.NoError(t, s.DocumentStore().PutLink(ctx, domain.DocumentLink{DocumentID: "doc-1", LinkType: "pdf", URL: "https://x"}))
	require.NoError(t, s.ArtifactStore().PutExtraction(ctx, domain.Extraction{DocumentID: "doc-1", PipelineVersion: "v1", Extractor: "pdf"}))
	chunks := seedChunks(t, s, "doc-1", "v1", "h0")
	seedChunks(t, s, "doc-2", "v1", "h0")
	require.NoError(t, s.EnrichmentStore().Propose(ctx, &domain.ChunkEnrichment{
		ChunkID: chunks[0].ID, EnrichmentVersion: "e1", ChunkSHA256: "h0",
	}))
	require.NoError(t, s.OcrStore().CreateRun(ctx, &domain.OcrRun{ID: "ocr-1", DocumentID: "doc-1", Status: domain.RunRunning}))
	require.NoError(t, s.OcrStore().UpsertPage(ctx, domain.OcrPage{RunID: "ocr-1", PageNumber: 1}))
	require.NoError(t, s.ReviewStore().Enqueue(ctx, &domain.ReviewEntry{ID: "rev-1", DocumentID: "doc-1", Status: domain.ReviewOpen}))
	require.NoError(t, s.ProjectionStore().Refresh(ctx, domain.SearchProjection{DocumentID: "doc-1", SearchText: "x"}))
	_, _, err := s.RunStore().Start(ctx, &domain.ProcessingRun{ID: "run-1", DocumentID: "doc-1", IdempotencyKey: "k1"})
	require.NoError(t, err)

	require.NoError(t, s.DocumentStore().Delete(ctx, "doc-1"))

	_, err = s.DocumentStore().Get(ctx, "doc-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	files, _ := s.DocumentStore().ListFiles(ctx, "doc-1")
	assert.Empty(t, files)
	links, _ := s.DocumentStore().ListLinks(ctx, "doc-1")
	assert.Empty(t, links)
	extractions, _ := s.ArtifactStore().ListExtractions(ctx, "doc-1")
	assert.Empty(t, extractions)
	remaining, _ := s.ArtifactStore().ListChunks(ctx, "doc-1", "v1")
	assert.Empty(t, remaining)
	_, err = s.EnrichmentStore().Get(ctx, chunks[0].ID, "e1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = s.OcrStore().GetRun(ctx, "ocr-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	pages, _ := s.OcrStore().ListPages(ctx, "ocr-1")
	assert.Empty(t, pages)
	_, err = s.ReviewStore().Get(ctx, "rev-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = s.ProjectionStore().Get(ctx, "doc-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	run, err := s.RunStore().Get(ctx, "run-1")
	require.NoError(t, err)
	assert.False(t, run.HasDocument())

	other, _ := s.ArtifactStore().ListChunks(ctx, "doc-2", "v1")
	assert.Len(t, other, 1)
}

// TestArtifactStore_ReplaceChunks tests full replacement semantics
func TestArtifactStore_ReplaceChunks(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seedDocument(t, s, "doc-1")
	seedChunks(t, s, "doc-1", "v1", "a", "b", "c")

	later := testTime.Add(time.Hour)
	replacement := []domain.Chunk{
		{ID: "doc-1-v1-0", DocumentID: "doc-1", PipelineVersion: "v1", Index: 0, SHA256: "a2", CreatedAt: later},
	}
	require.NoError(t, s.ArtifactStore().ReplaceChunks(ctx, "doc-1", "v1", replacement))

	chunks, err := s.ArtifactStore().ListChunks(ctx, "doc-1", "v1")
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "a2", chunks[0].SHA256)
	assert.Equal(t, testTime, chunks[0].CreatedAt)

	_, err = s.ArtifactStore().GetChunk(ctx, "doc-1-v1-2")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	t.Run("foreign chunk id conflicts", func(t *testing.T) {
		seedDocument(t, s, "doc-2")
		err := s.ArtifactStore().ReplaceChunks(ctx, "doc-2", "v1", []domain.Chunk{
			{ID: "doc-1-v1-0", DocumentID: "doc-2", PipelineVersion: "v1", Index: 0},
		})
		assert.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("missing document", func(t *testing.T) {
		err := s.ArtifactStore().ReplaceChunks(ctx, "nope", "v1", nil)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

// TestRunStore_StartIsIdempotent tests concurrent starts with one key create one run
func TestRunStore_StartIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seedDocument(t, s, "doc-1")
	runs := s.RunStore()

	const workers = 16
	var wg sync.WaitGroup
	ids := make([]string, workers)
	createdCount := make([]bool, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			run, created, err := runs.Start(ctx, &domain.ProcessingRun{
				ID:             fmt.Sprintf("run-%d", i),
				DocumentID:     "doc-1",
				IdempotencyKey: "v1:doc-1:fp",
				Status:         domain.RunPending,
			})
			if !assert.NoError(t, err) {
				return
			}
			ids[i] = run.ID
			createdCount[i] = created
		}(i)
	}
	wg.Wait()

	created := 0
	for i := range ids {
		assert.Equal(t, ids[0], ids[i])
		if createdCount[i] {
			created++
		}
	}
	assert.Equal(t, 1, created)

	all, err := runs.List(ctx, domain.RunFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

// TestRunStore_FinishOnce tests terminal statuses are write-once
func TestRunStore_StartAfterDocumentDeleted(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seedDocument(t, s, "doc-1")
	runs := s.RunStore()

	first, created, err := runs.Start(ctx, &domain.ProcessingRun{
		ID: "run-1", DocumentID: "doc-1", IdempotencyKey: "k1", Status: domain.RunPending,
	})
	require.NoError(t, err)
	require.True(t, created)

	require.NoError(t, s.DocumentStore().Delete(ctx, "doc-1"))

	again, created, err := runs.Start(ctx, &domain.ProcessingRun{
		ID: "run-2", DocumentID: "doc-1", IdempotencyKey: "k1", Status: domain.RunPending,
	})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, again.ID)
	assert.Empty(t, again.DocumentID)

	_, _, err = runs.Start(ctx, &domain.ProcessingRun{
		ID: "run-3", DocumentID: "doc-1", IdempotencyKey: "k2", Status: domain.RunPending,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRunStore_FinishOnce(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	runs := s.RunStore()
	_, _, err := runs.Start(ctx, &domain.ProcessingRun{ID: "run-1", IdempotencyKey: "k", Status: domain.RunPending})
	require.NoError(t, err)

	_, err = runs.Finish(ctx, "run-1", domain.RunRunning, domain.RunMetrics{}, testTime)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	run, err := runs.Finish(ctx, "run-1", domain.RunSucceeded, domain.RunMetrics{ChunksWritten: 3}, testTime)
	require.NoError(t, err)
	assert.Equal(t, domain.RunSucceeded, run.Status)

	_, err = runs.Finish(ctx, "run-1", domain.RunFailed, domain.RunMetrics{}, testTime)
	assert.ErrorIs(t, err, domain.ErrAlreadyTerminal)
	_, err = runs.MarkRunning(ctx, "run-1")
	assert.ErrorIs(t, err, domain.ErrAlreadyTerminal)

	stored, err := runs.Get(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, domain.RunSucceeded, stored.Status)
	assert.Equal(t, 3, stored.Metrics.ChunksWritten)
}

// TestRunStore_LatestSucceededVersion tests commit order decides the latest version
func TestRunStore_LatestSucceededVersion(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seedDocument(t, s, "doc-1")
	runs := s.RunStore()

	_, err := runs.LatestSucceededVersion(ctx, "doc-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	for _, v := range []string{"v1", "v2", "v3"} {
		_, _, err := runs.Start(ctx, &domain.ProcessingRun{
			ID: "run-" + v, DocumentID: "doc-1", PipelineVersion: v, IdempotencyKey: v, Status: domain.RunPending,
		})
		require.NoError(t, err)
	}
	// v2 started after v1 but commits first.
	_, err = runs.Finish(ctx, "run-v2", domain.RunSucceeded, domain.RunMetrics{}, testTime)
	require.NoError(t, err)
	_, err = runs.Finish(ctx, "run-v1", domain.RunSucceeded, domain.RunMetrics{}, testTime)
	require.NoError(t, err)
	_, err = runs.Finish(ctx, "run-v3", domain.RunFailed, domain.RunMetrics{}, testTime)
	require.NoError(t, err)

	version, err := runs.LatestSucceededVersion(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "v1", version)
}

// TestRunStore_DeleteCascadesErrors tests that errors go with their run
func TestRunStore_DeleteCascadesErrors(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	_, _, err := s.RunStore().Start(ctx, &domain.ProcessingRun{ID: "run-1", CorrelationID: "c1", IdempotencyKey: "k"})
	require.NoError(t, err)

	require.NoError(t, s.ErrorStore().Append(ctx, &domain.ProcessingError{ID: "e1", RunID: "run-1", CorrelationID: "c1"}))
	assert.ErrorIs(t, s.ErrorStore().Append(ctx, &domain.ProcessingError{ID: "e2", RunID: "nope"}), domain.ErrNotFound)

	require.NoError(t, s.RunStore().Delete(ctx, "run-1"))

	errs, err := s.ErrorStore().ListByCorrelation(ctx, "c1", 0)
	require.NoError(t, err)
	assert.Empty(t, errs)
}

// TestOcrStore_PagesAfterFinish tests that a finished run is frozen
func TestOcrStore_PagesAfterFinish(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seedDocument(t, s, "doc-1")
	ocr := s.OcrStore()

	require.NoError(t, ocr.CreateRun(ctx, &domain.OcrRun{
		ID: "ocr-1", DocumentID: "doc-1", Status: domain.RunRunning,
		Metrics: domain.OcrMetrics{Pages: 4},
	}))
	require.NoError(t, ocr.UpsertPage(ctx, domain.OcrPage{RunID: "ocr-1", PageNumber: 2}))
	require.NoError(t, ocr.UpsertPage(ctx, domain.OcrPage{RunID: "ocr-1", PageNumber: 1, ConsensusURI: "s3://a"}))
	require.NoError(t, ocr.UpsertPage(ctx, domain.OcrPage{RunID: "ocr-1", PageNumber: 1, ConsensusURI: "s3://b"}))

	run, err := ocr.FinishRun(ctx, "ocr-1", domain.RunSucceeded, domain.OcrMetrics{PagesFailed: 1}, testTime)
	require.NoError(t, err)
	assert.Equal(t, 4, run.Metrics.Pages)
	assert.Equal(t, 1, run.Metrics.PagesFailed)

	err = ocr.UpsertPage(ctx, domain.OcrPage{RunID: "ocr-1", PageNumber: 3})
	assert.ErrorIs(t, err, domain.ErrAlreadyTerminal)
	_, err = ocr.FinishRun(ctx, "ocr-1", domain.RunFailed, domain.OcrMetrics{}, testTime)
	assert.ErrorIs(t, err, domain.ErrAlreadyTerminal)

	pages, err := ocr.ListPages(ctx, "ocr-1")
	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Equal(t, 1, pages[0].PageNumber)
	assert.Equal(t, "s3://b", pages[0].ConsensusURI)
}

// TestEnrichmentStore_Lifecycle tests propose, accept, reject and staleness
func TestEnrichmentStore_Lifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seedDocument(t, s, "doc-1")
	chunks := seedChunks(t, s, "doc-1", "v1", "h0", "h1")
	enrich := s.EnrichmentStore()

	err := enrich.Propose(ctx, &domain.ChunkEnrichment{ChunkID: "missing", EnrichmentVersion: "e1"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, enrich.Propose(ctx, &domain.ChunkEnrichment{
		ChunkID: chunks[0].ID, EnrichmentVersion: "e1", ChunkSHA256: "h0", CreatedAt: testTime,
	}))
	accepted, err := enrich.Accept(ctx, chunks[0].ID, "e1", testTime)
	require.NoError(t, err)
	assert.True(t, accepted.Accepted)

	again, err := enrich.Accept(ctx, chunks[0].ID, "e1", testTime.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, testTime, again.AppliedAt)

	_, err = enrich.Reject(ctx, chunks[0].ID, "e1", "bad", testTime)
	assert.ErrorIs(t, err, domain.ErrConflict)

	t.Run("stale", func(t *testing.T) {
		require.NoError(t, enrich.Propose(ctx, &domain.ChunkEnrichment{
			ChunkID: chunks[1].ID, EnrichmentVersion: "e1", ChunkSHA256: "old",
		}))
		_, err := enrich.Accept(ctx, chunks[1].ID, "e1", testTime)
		assert.ErrorIs(t, err, domain.ErrStaleEnrichment)

		e, err := enrich.Get(ctx, chunks[1].ID, "e1")
		require.NoError(t, err)
		assert.False(t, e.Accepted)
	})

	t.Run("rejected stays rejected", func(t *testing.T) {
		rejected, err := enrich.Reject(ctx, chunks[1].ID, "e1", "hallucinated", testTime)
		require.NoError(t, err)
		assert.Equal(t, "hallucinated", rejected.Error)

		second, err := enrich.Reject(ctx, chunks[1].ID, "e1", "other", testTime)
		require.NoError(t, err)
		assert.Equal(t, "hallucinated", second.Error)

		_, err = enrich.Accept(ctx, chunks[1].ID, "e1", testTime)
		assert.ErrorIs(t, err, domain.ErrEnrichmentRejected)

		err = enrich.Propose(ctx, &domain.ChunkEnrichment{ChunkID: chunks[1].ID, EnrichmentVersion: "e1", ChunkSHA256: "h1"})
		assert.ErrorIs(t, err, domain.ErrEnrichmentRejected)
	})

	t.Run("re-chunk drops enrichments of removed chunks", func(t *testing.T) {
		seedChunks(t, s, "doc-1", "v1", "h0")
		list, err := enrich.ListForChunk(ctx, chunks[1].ID)
		require.NoError(t, err)
		assert.Empty(t, list)

		kept, err := enrich.Get(ctx, chunks[0].ID, "e1")
		require.NoError(t, err)
		assert.True(t, kept.Accepted)
	})
}

// TestEnrichmentStore_Candidates tests candidate selection over indexed documents
func TestEnrichmentStore_Candidates(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seedDocument(t, s, "doc-b")
	seedDocument(t, s, "doc-a")
	seedDocument(t, s, "doc-c")
	for _, id := range []string{"doc-a", "doc-b"} {
		require.NoError(t, s.DocumentStore().CompareAndSetStatus(ctx, id,
			domain.StatusDiscovered, domain.StatusIndexed, "", testTime))
	}
	a := seedChunks(t, s, "doc-a", "v1", "a0", "a1")
	seedChunks(t, s, "doc-b", "v1", "b0")
	seedChunks(t, s, "doc-c", "v1", "c0")

	enrich := s.EnrichmentStore()
	require.NoError(t, enrich.Propose(ctx, &domain.ChunkEnrichment{ChunkID: a[0].ID, EnrichmentVersion: "e1", ChunkSHA256: "a0"}))
	_, err := enrich.Accept(ctx, a[0].ID, "e1", testTime)
	require.NoError(t, err)
	require.NoError(t, enrich.Propose(ctx, &domain.ChunkEnrichment{ChunkID: a[1].ID, EnrichmentVersion: "e1", ChunkSHA256: "a1"}))

	candidates, err := enrich.Candidates(ctx, domain.CandidateFilter{PipelineVersion: "v1", EnrichmentVersion: "e1"})
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "doc-b", candidates[0].DocumentID)
	assert.Nil(t, candidates[0].Existing)

	withPending, err := enrich.Candidates(ctx, domain.CandidateFilter{
		PipelineVersion: "v1", EnrichmentVersion: "e1", IncludeRejected: true,
	})
	require.NoError(t, err)
	require.Len(t, withPending, 2)
	assert.Equal(t, a[1].ID, withPending[0].ChunkID)
	assert.NotNil(t, withPending[0].Existing)

	limited, err := enrich.Candidates(ctx, domain.CandidateFilter{
		PipelineVersion: "v1", EnrichmentVersion: "e1", IncludeRejected: true, Limit: 1,
	})
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	none, err := enrich.Candidates(ctx, domain.CandidateFilter{
		PipelineVersion: "v1", EnrichmentVersion: "e1", Source: "pubmed",
	})
	require.NoError(t, err)
	assert.Empty(t, none)
}

// TestReviewStore_Resolve tests review entries close exactly once
func TestReviewStore_Resolve(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seedDocument(t, s, "doc-1")
	reviews := s.ReviewStore()

	for i := 0; i < 3; i++ {
		require.NoError(t, reviews.Enqueue(ctx, &domain.ReviewEntry{
			ID: fmt.Sprintf("rev-%d", i), DocumentID: "doc-1", Reason: "ocr_low_quality", Status: domain.ReviewOpen,
		}))
	}
	assert.ErrorIs(t, reviews.Enqueue(ctx, &domain.ReviewEntry{ID: "x", DocumentID: "nope"}), domain.ErrNotFound)

	resolved, err := reviews.Resolve(ctx, "rev-1", testTime)
	require.NoError(t, err)
	assert.Equal(t, domain.ReviewResolved, resolved.Status)
	assert.Equal(t, testTime, resolved.ResolvedAt)

	_, err = reviews.Resolve(ctx, "rev-1", testTime)
	assert.ErrorIs(t, err, domain.ErrAlreadyResolved)
	_, err = reviews.Resolve(ctx, "missing", testTime)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	open, err := reviews.List(ctx, domain.ReviewFilter{Status: domain.ReviewOpen})
	require.NoError(t, err)
	require.Len(t, open, 2)
	assert.Equal(t, "rev-0", open[0].ID)
	assert.Equal(t, "rev-2", open[1].ID)
}

// TestProjectionStore_Search tests term matching and refresh ordering
func TestProjectionStore_Search(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seedDocument(t, s, "doc-1")
	seedDocument(t, s, "doc-2")
	require.NoError(t, s.DocumentStore().UpdateMetadata(ctx, "doc-1", domain.DocumentMetadata{Title: "Attention"}, testTime))

	proj := s.ProjectionStore()
	require.NoError(t, proj.Refresh(ctx, domain.SearchProjection{DocumentID: "doc-1", SearchText: "attention is all you need"}))
	require.NoError(t, proj.Refresh(ctx, domain.SearchProjection{DocumentID: "doc-2", SearchText: "you only look once"}))

	hits, err := proj.Search(ctx, []string{"you"}, 10)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "doc-2", hits[0].DocumentID)

	hits, err = proj.Search(ctx, []string{"attention", "need"}, 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "Attention", hits[0].Title)

	require.NoError(t, proj.Refresh(ctx, domain.SearchProjection{DocumentID: "doc-1", SearchText: "replaced text"}))
	hits, err = proj.Search(ctx, []string{"attention"}, 10)
	require.NoError(t, err)
	assert.Empty(t, hits)

	assert.ErrorIs(t, proj.Refresh(ctx, domain.SearchProjection{DocumentID: "nope"}), domain.ErrNotFound)
}
