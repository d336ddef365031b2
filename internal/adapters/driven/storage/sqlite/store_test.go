package sqlite

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragledger/internal/core/domain"
)

var testTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// setupTestStore creates a SQLite store in a temporary directory.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, store.Close())
	})
	return store
}

// createTestDocument registers a document to satisfy foreign key constraints.
func createTestDocument(t *testing.T, store *Store, id string) {
	t.Helper()
	_, created, err := store.DocumentStore().Register(context.Background(), &domain.Document{
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

// createTestChunks replaces the chunk set of a document version with one
// chunk per hash.
func createTestChunks(t *testing.T, store *Store, docID, version string, hashes ...string) []domain.Chunk {
	t.Helper()
	chunks := make([]domain.Chunk, len(hashes))
	for i, h := range hashes {
		chunks[i] = domain.Chunk{
			ID:              fmt.Sprintf("%s-%s-%d", docID, version, i),
			DocumentID:      docID,
			PipelineVersion: version,
			Index:           i,
			SHA256:          h,
			TokenCount:      100 + i,
			CreatedAt:       testTime,
			UpdatedAt:       testTime,
		}
	}
	require.NoError(t, store.ArtifactStore().ReplaceChunks(context.Background(), docID, version, chunks))
	return chunks
}

// TestNewStore_AppliesMigrations tests schema versioning and reopening
func TestNewStore_AppliesMigrations(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store, err := NewStore(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "ledger.db"), store.Path())

	version, err := store.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, version)

	createTestDocument(t, store, "doc-1")
	require.NoError(t, store.Close())

	reopened, err := NewStore(dir)
	require.NoError(t, err)
	defer reopened.Close()

	version, err = reopened.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, version)

	doc, err := reopened.DocumentStore().Get(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "arxiv", doc.Source)
}

// TestDocumentStore_RoundTrip tests metadata, files and links persistence
func TestDocumentStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	createTestDocument(t, store, "doc-1")
	docs := store.DocumentStore()

	scanned := true
	meta := domain.DocumentMetadata{
		Title:         "Attention Is All You Need",
		Author:        "Vaswani",
		PublishedYear: 2017,
		IsScanned:     &scanned,
		Categories:    []string{"cs.CL", "cs.LG"},
	}
	require.NoError(t, docs.UpdateMetadata(ctx, "doc-1", meta, testTime.Add(time.Minute)))
	assert.ErrorIs(t, docs.UpdateMetadata(ctx, "missing", meta, testTime), domain.ErrNotFound)

	doc, err := docs.Get(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "Attention Is All You Need", doc.Title)
	assert.Equal(t, 2017, doc.PublishedYear)
	require.NotNil(t, doc.IsScanned)
	assert.True(t, *doc.IsScanned)
	assert.Equal(t, []string{"cs.CL", "cs.LG"}, doc.Categories)
	assert.Equal(t, testTime, doc.CreatedAt)
	assert.Equal(t, testTime.Add(time.Minute), doc.UpdatedAt)

	require.NoError(t, docs.PutFile(ctx, domain.DocumentFile{
		DocumentID: "doc-1", Variant: "raw", StorageURI: "s3://raw/1", Bytes: 10, UpdatedAt: testTime,
	}))
	require.NoError(t, docs.PutFile(ctx, domain.DocumentFile{
		DocumentID: "doc-1", Variant: "raw", StorageURI: "s3://raw/2", Bytes: 20, UpdatedAt: testTime,
	}))
	assert.ErrorIs(t, docs.PutFile(ctx, domain.DocumentFile{DocumentID: "nope", Variant: "raw"}), domain.ErrNotFound)

	file, err := docs.GetFile(ctx, "doc-1", "raw")
	require.NoError(t, err)
	assert.Equal(t, "s3://raw/2", file.StorageURI)
	assert.Equal(t, int64(20), file.Bytes)

	require.NoError(t, docs.PutLink(ctx, domain.DocumentLink{DocumentID: "doc-1", LinkType: "pdf", URL: "https://x/a.pdf"}))
	links, err := docs.ListLinks(ctx, "doc-1")
	require.NoError(t, err)
	assert.Len(t, links, 1)
}

// TestDocumentStore_CompareAndSetStatus tests optimistic status updates
func TestDocumentStore_CompareAndSetStatus(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	createTestDocument(t, store, "doc-1")
	docs := store.DocumentStore()

	require.NoError(t, docs.CompareAndSetStatus(ctx, "doc-1",
		domain.StatusDiscovered, domain.StatusNeedsReview, domain.StatusDiscovered, testTime))

	err := docs.CompareAndSetStatus(ctx, "doc-1", domain.StatusDiscovered, domain.StatusFetched, "", testTime)
	assert.ErrorIs(t, err, domain.ErrConflict)
	err = docs.CompareAndSetStatus(ctx, "missing", domain.StatusDiscovered, domain.StatusFetched, "", testTime)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	doc, err := docs.Get(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusNeedsReview, doc.Status)
	assert.Equal(t, domain.StatusDiscovered, doc.PreviousStatus)

	filtered, err := docs.List(ctx, domain.DocumentFilter{Status: domain.StatusNeedsReview})
	require.NoError(t, err)
	assert.Len(t, filtered, 1)
}

// TestStore_DeleteDocumentCascades tests foreign keys remove owned records and detach runs
func TestStore_DeleteDocumentCascades(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	createTestDocument(t, store, "doc-1")
	createTestDocument(t, store, "doc-2")

	require.NoError(t, store.DocumentStore().PutFile(ctx, domain.DocumentFile{DocumentID: "doc-1", Variant: "raw", StorageURI: "s3://x", UpdatedAt: testTime}))
	require.NoError(t, store.ArtifactStore().PutExtraction(ctx, domain.Extraction{
		DocumentID: "doc-1", PipelineVersion: "v1", Extractor: "pdf", CreatedAt: testTime, UpdatedAt: testTime,
	}))
	chunks := createTestChunks(t, store, "doc-1", "v1", "h0")
	createTestChunks(t, store, "doc-2", "v1", "h0")
	require.NoError(t, store.EnrichmentStore().Propose(ctx, &domain.ChunkEnrichment{
		ChunkID: chunks[0].ID, EnrichmentVersion: "e1", ChunkSHA256: "h0", CreatedAt: testTime, UpdatedAt: testTime,
	}))
	require.NoError(t, store.OcrStore().CreateRun(ctx, &domain.OcrRun{
		ID: "ocr-1", DocumentID: "doc-1", Status: domain.RunRunning, CreatedAt: testTime,
	}))
	require.NoError(t, store.OcrStore().UpsertPage(ctx, domain.OcrPage{RunID: "ocr-1", PageNumber: 1, UpdatedAt: testTime}))
	require.NoError(t, store.ReviewStore().Enqueue(ctx, &domain.ReviewEntry{
		ID: "rev-1", DocumentID: "doc-1", Reason: "r", Status: domain.ReviewOpen, CreatedAt: testTime,
	}))
	require.NoError(t, store.ProjectionStore().Refresh(ctx, domain.SearchProjection{DocumentID: "doc-1", SearchText: "x", UpdatedAt: testTime}))
	_, _, err := store.RunStore().Start(ctx, &domain.ProcessingRun{
		ID: "run-1", DocumentID: "doc-1", IdempotencyKey: "k1", Status: domain.RunPending, StartedAt: testTime,
	})
	require.NoError(t, err)

	require.NoError(t, store.DocumentStore().Delete(ctx, "doc-1"))
	assert.ErrorIs(t, store.DocumentStore().Delete(ctx, "doc-1"), domain.ErrNotFound)

	files, err := store.DocumentStore().ListFiles(ctx, "doc-1")
	require.NoError(t, err)
	assert.Empty(t, files)
	extractions, err := store.ArtifactStore().ListExtractions(ctx, "doc-1")
	require.NoError(t, err)
	assert.Empty(t, extractions)
	_, err = store.EnrichmentStore().Get(ctx, chunks[0].ID, "e1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	pages, err := store.OcrStore().ListPages(ctx, "ocr-1")
	require.NoError(t, err)
	assert.Empty(t, pages)
	_, err = store.ReviewStore().Get(ctx, "rev-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = store.ProjectionStore().Get(ctx, "doc-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	run, err := store.RunStore().Get(ctx, "run-1")
	require.NoError(t, err)
	assert.False(t, run.HasDocument())

	other, err := store.ArtifactStore().ListChunks(ctx, "doc-2", "v1")
	require.NoError(t, err)
	assert.Len(t, other, 1)
}

// TestArtifactStore_ReplaceChunks tests full replacement with index reuse
func TestArtifactStore_ReplaceChunks(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	createTestDocument(t, store, "doc-1")
	createTestChunks(t, store, "doc-1", "v1", "a", "b", "c")
	artifacts := store.ArtifactStore()

	later := testTime.Add(time.Hour)
	// Swap the first two chunk IDs' indexes to exercise the uniqueness constraint.
	replacement := []domain.Chunk{
		{ID: "doc-1-v1-1", DocumentID: "doc-1", PipelineVersion: "v1", Index: 0, SHA256: "b2", CreatedAt: later, UpdatedAt: later},
		{ID: "doc-1-v1-0", DocumentID: "doc-1", PipelineVersion: "v1", Index: 1, SHA256: "a2", CreatedAt: later, UpdatedAt: later},
	}
	require.NoError(t, artifacts.ReplaceChunks(ctx, "doc-1", "v1", replacement))

	chunks, err := artifacts.ListChunks(ctx, "doc-1", "v1")
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, "doc-1-v1-1", chunks[0].ID)
	assert.Equal(t, "b2", chunks[0].SHA256)
	assert.Equal(t, testTime, chunks[0].CreatedAt)
	assert.Equal(t, later, chunks[0].UpdatedAt)

	_, err = artifacts.GetChunk(ctx, "doc-1-v1-2")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	t.Run("foreign chunk id conflicts and rolls back", func(t *testing.T) {
		createTestDocument(t, store, "doc-2")
		err := artifacts.ReplaceChunks(ctx, "doc-2", "v1", []domain.Chunk{
			{ID: "doc-1-v1-0", DocumentID: "doc-2", PipelineVersion: "v1", Index: 0},
		})
		assert.ErrorIs(t, err, domain.ErrConflict)

		kept, err := artifacts.ListChunks(ctx, "doc-1", "v1")
		require.NoError(t, err)
		assert.Len(t, kept, 2)
		assert.Equal(t, 0, kept[0].Index)
	})

	t.Run("missing document", func(t *testing.T) {
		err := artifacts.ReplaceChunks(ctx, "nope", "v1", nil)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("empty set clears the version", func(t *testing.T) {
		require.NoError(t, artifacts.ReplaceChunks(ctx, "doc-1", "v1", nil))
		chunks, err := artifacts.ListChunks(ctx, "doc-1", "v1")
		require.NoError(t, err)
		assert.Empty(t, chunks)
	})
}

// TestArtifactStore_ExtractionAndProvenance tests upserts keep creation time
func TestArtifactStore_ExtractionAndProvenance(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	createTestDocument(t, store, "doc-1")
	artifacts := store.ArtifactStore()

	extraction := domain.Extraction{
		DocumentID: "doc-1", PipelineVersion: "v1", Extractor: "pdf", ExtractedURI: "s3://e/1",
		Metrics:   domain.ExtractionMetrics{Chars: 1200, Extra: map[string]any{"engine": "pymupdf"}},
		CreatedAt: testTime, UpdatedAt: testTime,
	}
	require.NoError(t, artifacts.PutExtraction(ctx, extraction))

	extraction.ExtractedURI = "s3://e/2"
	extraction.CreatedAt = testTime.Add(time.Hour)
	extraction.UpdatedAt = testTime.Add(time.Hour)
	require.NoError(t, artifacts.PutExtraction(ctx, extraction))

	stored, err := artifacts.GetExtraction(ctx, "doc-1", "v1", "pdf")
	require.NoError(t, err)
	assert.Equal(t, "s3://e/2", stored.ExtractedURI)
	assert.Equal(t, testTime, stored.CreatedAt)
	assert.Equal(t, 1200, stored.Metrics.Chars)
	assert.Equal(t, "pymupdf", stored.Metrics.Extra["engine"])

	extraction.DocumentID = "nope"
	assert.ErrorIs(t, artifacts.PutExtraction(ctx, extraction), domain.ErrNotFound)

	require.NoError(t, artifacts.PutProvenance(ctx, domain.Provenance{
		DocumentID: "doc-1", PipelineVersion: "v1", SourceURI: "https://arxiv.org/abs/1",
		License: "cc-by", Attributes: map[string]string{"mirror": "eu"}, UpdatedAt: testTime,
	}))
	provenance, err := artifacts.ListProvenance(ctx, "doc-1", "v1")
	require.NoError(t, err)
	require.Len(t, provenance, 1)
	assert.Equal(t, "eu", provenance[0].Attributes["mirror"])
}

// TestRunStore_StartIsIdempotent tests concurrent starts with one key create one run
func TestRunStore_StartIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	createTestDocument(t, store, "doc-1")
	runs := store.RunStore()

	const workers = 8
	var wg sync.WaitGroup
	ids := make([]string, workers)
	createdBy := make([]bool, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			run, created, err := runs.Start(ctx, &domain.ProcessingRun{
				ID:              fmt.Sprintf("run-%d", i),
				CorrelationID:   "c1",
				PipelineVersion: "v1",
				DocumentID:      "doc-1",
				IdempotencyKey:  "v1:doc-1:fp",
				Status:          domain.RunPending,
				StartedAt:       testTime,
			})
			if !assert.NoError(t, err) {
				return
			}
			ids[i] = run.ID
			createdBy[i] = created
		}(i)
	}
	wg.Wait()

	created := 0
	for i := range ids {
		assert.Equal(t, ids[0], ids[i])
		if createdBy[i] {
			created++
		}
	}
	assert.Equal(t, 1, created)

	all, err := runs.List(ctx, domain.RunFilter{DocumentID: "doc-1"})
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, _, err = runs.Start(ctx, &domain.ProcessingRun{
		ID: "run-x", DocumentID: "missing", IdempotencyKey: "other", Status: domain.RunPending, StartedAt: testTime,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// TestRunStore_StartAfterDocumentDeleted tests a known key still resolves
// once its document is gone.
func TestRunStore_StartAfterDocumentDeleted(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	createTestDocument(t, store, "doc-1")
	runs := store.RunStore()

	first, created, err := runs.Start(ctx, &domain.ProcessingRun{
		ID: "run-1", CorrelationID: "c1", PipelineVersion: "v1", DocumentID: "doc-1",
		IdempotencyKey: "k1", Status: domain.RunPending, StartedAt: testTime,
	})
	require.NoError(t, err)
	require.True(t, created)

	require.NoError(t, store.DocumentStore().Delete(ctx, "doc-1"))

	again, created, err := runs.Start(ctx, &domain.ProcessingRun{
		ID: "run-2", CorrelationID: "c2", PipelineVersion: "v1", DocumentID: "doc-1",
		IdempotencyKey: "k1", Status: domain.RunPending, StartedAt: testTime,
	})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, again.ID)
	assert.Empty(t, again.DocumentID)
}

// TestRunStore_FinishOnce tests terminal statuses are write-once
func TestRunStore_FinishOnce(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	runs := store.RunStore()
	_, _, err := runs.Start(ctx, &domain.ProcessingRun{
		ID: "run-1", IdempotencyKey: "k", Status: domain.RunPending, StartedAt: testTime,
	})
	require.NoError(t, err)

	running, err := runs.MarkRunning(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, domain.RunRunning, running.Status)

	_, err = runs.Finish(ctx, "run-1", domain.RunRunning, domain.RunMetrics{}, testTime)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	run, err := runs.Finish(ctx, "run-1", domain.RunSucceeded, domain.RunMetrics{ChunksWritten: 3}, testTime)
	require.NoError(t, err)
	assert.Equal(t, domain.RunSucceeded, run.Status)
	assert.Equal(t, testTime, run.FinishedAt)

	_, err = runs.Finish(ctx, "run-1", domain.RunFailed, domain.RunMetrics{}, testTime)
	assert.ErrorIs(t, err, domain.ErrAlreadyTerminal)
	_, err = runs.MarkRunning(ctx, "run-1")
	assert.ErrorIs(t, err, domain.ErrAlreadyTerminal)
	_, err = runs.Finish(ctx, "missing", domain.RunFailed, domain.RunMetrics{}, testTime)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	stored, err := runs.Get(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, domain.RunSucceeded, stored.Status)
	assert.Equal(t, 3, stored.Metrics.ChunksWritten)
}

// TestRunStore_LatestSucceededVersion tests commit order decides the latest version
func TestRunStore_LatestSucceededVersion(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	createTestDocument(t, store, "doc-1")
	runs := store.RunStore()

	_, err := runs.LatestSucceededVersion(ctx, "doc-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	for _, v := range []string{"v1", "v2", "v3"} {
		_, _, err := runs.Start(ctx, &domain.ProcessingRun{
			ID: "run-" + v, DocumentID: "doc-1", PipelineVersion: v, IdempotencyKey: v,
			Status: domain.RunPending, StartedAt: testTime,
		})
		require.NoError(t, err)
	}
	_, err = runs.Finish(ctx, "run-v2", domain.RunSucceeded, domain.RunMetrics{}, testTime)
	require.NoError(t, err)
	_, err = runs.Finish(ctx, "run-v1", domain.RunSucceeded, domain.RunMetrics{}, testTime)
	require.NoError(t, err)
	_, err = runs.Finish(ctx, "run-v3", domain.RunFailed, domain.RunMetrics{}, testTime)
	require.NoError(t, err)

	version, err := runs.LatestSucceededVersion(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "v1", version)

	latest, err := runs.LatestFor(ctx, "doc-1", "v3")
	require.NoError(t, err)
	assert.Equal(t, "run-v3", latest.ID)
}

// TestErrorStore_AppendAndCascade tests error recording and run deletion
func TestErrorStore_AppendAndCascade(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	_, _, err := store.RunStore().Start(ctx, &domain.ProcessingRun{
		ID: "run-1", CorrelationID: "c1", IdempotencyKey: "k", Status: domain.RunPending, StartedAt: testTime,
	})
	require.NoError(t, err)

	errorsLedger := store.ErrorStore()
	for i, step := range []string{"fetch", "extract"} {
		require.NoError(t, errorsLedger.Append(ctx, &domain.ProcessingError{
			ID: fmt.Sprintf("e%d", i), RunID: "run-1", CorrelationID: "c1", Step: step, Code: "timeout",
			Message: "timed out", Details: domain.ErrorDetails{Attempt: i + 1}, CreatedAt: testTime,
		}))
	}
	assert.ErrorIs(t, errorsLedger.Append(ctx, &domain.ProcessingError{ID: "e9", RunID: "nope", CreatedAt: testTime}), domain.ErrNotFound)

	byRun, err := errorsLedger.ListByRun(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, byRun, 2)
	assert.Equal(t, "fetch", byRun[0].Step)
	assert.Equal(t, 2, byRun[1].Details.Attempt)

	limited, err := errorsLedger.ListByCorrelation(ctx, "c1", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	require.NoError(t, store.RunStore().Delete(ctx, "run-1"))
	assert.ErrorIs(t, store.RunStore().Delete(ctx, "run-1"), domain.ErrNotFound)

	remaining, err := errorsLedger.ListByCorrelation(ctx, "c1", 0)
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

// TestOcrStore_PagesAfterFinish tests that a finished run is frozen
func TestOcrStore_PagesAfterFinish(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	createTestDocument(t, store, "doc-1")
	ocr := store.OcrStore()

	require.NoError(t, ocr.CreateRun(ctx, &domain.OcrRun{
		ID: "ocr-1", DocumentID: "doc-1", PipelineVersion: "v1", Engine: "tesseract",
		Status: domain.RunRunning, Metrics: domain.OcrMetrics{Pages: 4}, CreatedAt: testTime,
	}))
	assert.ErrorIs(t, ocr.CreateRun(ctx, &domain.OcrRun{ID: "ocr-1", DocumentID: "doc-1", CreatedAt: testTime}), domain.ErrConflict)
	assert.ErrorIs(t, ocr.CreateRun(ctx, &domain.OcrRun{ID: "ocr-2", DocumentID: "nope", CreatedAt: testTime}), domain.ErrNotFound)

	require.NoError(t, ocr.UpsertPage(ctx, domain.OcrPage{RunID: "ocr-1", PageNumber: 2, UpdatedAt: testTime}))
	require.NoError(t, ocr.UpsertPage(ctx, domain.OcrPage{RunID: "ocr-1", PageNumber: 1, ConsensusURI: "s3://a", UpdatedAt: testTime}))
	require.NoError(t, ocr.UpsertPage(ctx, domain.OcrPage{
		RunID: "ocr-1", PageNumber: 1, ConsensusURI: "s3://b",
		Quality: domain.PageQuality{Chars: 80, LooksEmpty: false}, UpdatedAt: testTime,
	}))

	run, err := ocr.FinishRun(ctx, "ocr-1", domain.RunSucceeded, domain.OcrMetrics{PagesFailed: 1}, testTime)
	require.NoError(t, err)
	assert.Equal(t, 4, run.Metrics.Pages)
	assert.Equal(t, 1, run.Metrics.PagesFailed)

	stored, err := ocr.GetRun(ctx, "ocr-1")
	require.NoError(t, err)
	assert.Equal(t, run.Metrics.Pages, stored.Metrics.Pages)
	assert.Equal(t, domain.RunSucceeded, stored.Status)

	assert.ErrorIs(t, ocr.UpsertPage(ctx, domain.OcrPage{RunID: "ocr-1", PageNumber: 3, UpdatedAt: testTime}), domain.ErrAlreadyTerminal)
	assert.ErrorIs(t, ocr.UpsertPage(ctx, domain.OcrPage{RunID: "nope", PageNumber: 1, UpdatedAt: testTime}), domain.ErrNotFound)
	_, err = ocr.FinishRun(ctx, "ocr-1", domain.RunFailed, domain.OcrMetrics{}, testTime)
	assert.ErrorIs(t, err, domain.ErrAlreadyTerminal)

	pages, err := ocr.ListPages(ctx, "ocr-1")
	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Equal(t, 1, pages[0].PageNumber)
	assert.Equal(t, "s3://b", pages[0].ConsensusURI)
	assert.Equal(t, 80, pages[0].Quality.Chars)

	all, err := ocr.ListRuns(ctx, "doc-1", "")
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

// TestEnrichmentStore_Lifecycle tests propose, accept, reject and staleness
func TestEnrichmentStore_Lifecycle(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	createTestDocument(t, store, "doc-1")
	chunks := createTestChunks(t, store, "doc-1", "v1", "h0", "h1")
	enrich := store.EnrichmentStore()

	err := enrich.Propose(ctx, &domain.ChunkEnrichment{ChunkID: "missing", EnrichmentVersion: "e1", CreatedAt: testTime, UpdatedAt: testTime})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	confidence := 0.9
	require.NoError(t, enrich.Propose(ctx, &domain.ChunkEnrichment{
		ChunkID: chunks[0].ID, EnrichmentVersion: "e1", Model: "m", ChunkSHA256: "h0", Confidence: &confidence,
		Output:    domain.EnrichmentOutput{Title: "T", Keywords: []string{"a", "b"}},
		CreatedAt: testTime, UpdatedAt: testTime,
	}))

	proposed, err := enrich.Get(ctx, chunks[0].ID, "e1")
	require.NoError(t, err)
	require.NotNil(t, proposed.Confidence)
	assert.InDelta(t, 0.9, *proposed.Confidence, 1e-9)
	assert.Equal(t, []string{"a", "b"}, proposed.Output.Keywords)
	assert.False(t, proposed.Accepted)

	accepted, err := enrich.Accept(ctx, chunks[0].ID, "e1", testTime)
	require.NoError(t, err)
	assert.True(t, accepted.Accepted)
	assert.Equal(t, testTime, accepted.AppliedAt)

	again, err := enrich.Accept(ctx, chunks[0].ID, "e1", testTime.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, testTime, again.AppliedAt)

	_, err = enrich.Reject(ctx, chunks[0].ID, "e1", "bad", testTime)
	assert.ErrorIs(t, err, domain.ErrConflict)

	t.Run("stale", func(t *testing.T) {
		require.NoError(t, enrich.Propose(ctx, &domain.ChunkEnrichment{
			ChunkID: chunks[1].ID, EnrichmentVersion: "e1", ChunkSHA256: "old", CreatedAt: testTime, UpdatedAt: testTime,
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

		err = enrich.Propose(ctx, &domain.ChunkEnrichment{
			ChunkID: chunks[1].ID, EnrichmentVersion: "e1", ChunkSHA256: "h1", CreatedAt: testTime, UpdatedAt: testTime,
		})
		assert.ErrorIs(t, err, domain.ErrEnrichmentRejected)
	})

	t.Run("re-chunk drops enrichments of removed chunks", func(t *testing.T) {
		createTestChunks(t, store, "doc-1", "v1", "h0")
		list, err := enrich.ListForChunk(ctx, chunks[1].ID)
		require.NoError(t, err)
		assert.Empty(t, list)

		kept, err := enrich.Get(ctx, chunks[0].ID, "e1")
		require.NoError(t, err)
		assert.True(t, kept.Accepted)
	})

	t.Run("changed hash makes accepted enrichment stale", func(t *testing.T) {
		createTestChunks(t, store, "doc-1", "v1", "h0-new")
		_, err := enrich.Accept(ctx, chunks[0].ID, "e1", testTime)
		assert.ErrorIs(t, err, domain.ErrStaleEnrichment)
	})
}

// TestEnrichmentStore_Candidates tests candidate selection over indexed documents
func TestEnrichmentStore_Candidates(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	createTestDocument(t, store, "doc-b")
	createTestDocument(t, store, "doc-a")
	createTestDocument(t, store, "doc-c")
	for _, id := range []string{"doc-a", "doc-b"} {
		require.NoError(t, store.DocumentStore().CompareAndSetStatus(ctx, id,
			domain.StatusDiscovered, domain.StatusIndexed, "", testTime))
	}
	a := createTestChunks(t, store, "doc-a", "v1", "a0", "a1")
	createTestChunks(t, store, "doc-b", "v1", "b0")
	createTestChunks(t, store, "doc-c", "v1", "c0")

	enrich := store.EnrichmentStore()
	require.NoError(t, enrich.Propose(ctx, &domain.ChunkEnrichment{
		ChunkID: a[0].ID, EnrichmentVersion: "e1", ChunkSHA256: "a0", CreatedAt: testTime, UpdatedAt: testTime,
	}))
	_, err := enrich.Accept(ctx, a[0].ID, "e1", testTime)
	require.NoError(t, err)
	require.NoError(t, enrich.Propose(ctx, &domain.ChunkEnrichment{
		ChunkID: a[1].ID, EnrichmentVersion: "e1", ChunkSHA256: "a1", CreatedAt: testTime, UpdatedAt: testTime,
	}))

	candidates, err := enrich.Candidates(ctx, domain.CandidateFilter{PipelineVersion: "v1", EnrichmentVersion: "e1"})
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "doc-b", candidates[0].DocumentID)
	assert.Equal(t, "b0", candidates[0].ChunkSHA256)
	assert.Nil(t, candidates[0].Existing)

	withPending, err := enrich.Candidates(ctx, domain.CandidateFilter{
		PipelineVersion: "v1", EnrichmentVersion: "e1", IncludeRejected: true,
	})
	require.NoError(t, err)
	require.Len(t, withPending, 2)
	assert.Equal(t, a[1].ID, withPending[0].ChunkID)
	require.NotNil(t, withPending[0].Existing)
	assert.Equal(t, "a1", withPending[0].Existing.ChunkSHA256)

	limited, err := enrich.Candidates(ctx, domain.CandidateFilter{
		PipelineVersion: "v1", EnrichmentVersion: "e1", IncludeRejected: true, Limit: 1,
	})
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	otherVersion, err := enrich.Candidates(ctx, domain.CandidateFilter{PipelineVersion: "v1", EnrichmentVersion: "e2"})
	require.NoError(t, err)
	assert.Len(t, otherVersion, 3)

	none, err := enrich.Candidates(ctx, domain.CandidateFilter{
		PipelineVersion: "v1", EnrichmentVersion: "e1", Source: "pubmed",
	})
	require.NoError(t, err)
	assert.Empty(t, none)
}

// TestReviewStore_Resolve tests review entries close exactly once
func TestReviewStore_Resolve(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	createTestDocument(t, store, "doc-1")
	reviews := store.ReviewStore()

	for i := 0; i < 3; i++ {
		require.NoError(t, reviews.Enqueue(ctx, &domain.ReviewEntry{
			ID: fmt.Sprintf("rev-%d", i), DocumentID: "doc-1", PipelineVersion: "v1",
			Reason: "ocr_low_quality", Status: domain.ReviewOpen, CreatedAt: testTime,
		}))
	}
	assert.ErrorIs(t, reviews.Enqueue(ctx, &domain.ReviewEntry{ID: "x", DocumentID: "nope", CreatedAt: testTime}), domain.ErrNotFound)
	assert.ErrorIs(t, reviews.Enqueue(ctx, &domain.ReviewEntry{ID: "rev-0", DocumentID: "doc-1", CreatedAt: testTime}), domain.ErrConflict)

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
	assert.True(t, open[0].ResolvedAt.IsZero())
}

// TestProjectionStore_Search tests term matching and refresh ordering
func TestProjectionStore_Search(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	createTestDocument(t, store, "doc-1")
	createTestDocument(t, store, "doc-2")
	require.NoError(t, store.DocumentStore().UpdateMetadata(ctx, "doc-1", domain.DocumentMetadata{Title: "Attention"}, testTime))

	proj := store.ProjectionStore()
	require.NoError(t, proj.Refresh(ctx, domain.SearchProjection{
		DocumentID: "doc-1", PreviewText: "Attention...", SearchText: "attention is all you need", UpdatedAt: testTime,
	}))
	require.NoError(t, proj.Refresh(ctx, domain.SearchProjection{
		DocumentID: "doc-2", SearchText: "you only look once", UpdatedAt: testTime,
	}))

	hits, err := proj.Search(ctx, []string{"you"}, 10)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "doc-2", hits[0].DocumentID)

	hits, err = proj.Search(ctx, []string{"attention", "need"}, 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "Attention", hits[0].Title)
	assert.Equal(t, "Attention...", hits[0].PreviewText)

	hits, err = proj.Search(ctx, []string{"you"}, 1)
	require.NoError(t, err)
	assert.Len(t, hits, 1)

	hits, err = proj.Search(ctx, []string{"100%"}, 10)
	require.NoError(t, err)
	assert.Empty(t, hits)

	require.NoError(t, proj.Refresh(ctx, domain.SearchProjection{DocumentID: "doc-1", SearchText: "replaced text", UpdatedAt: testTime}))
	hits, err = proj.Search(ctx, []string{"attention"}, 10)
	require.NoError(t, err)
	assert.Empty(t, hits)

	hits, err = proj.Search(ctx, []string{"you"}, 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)

	assert.ErrorIs(t, proj.Refresh(ctx, domain.SearchProjection{DocumentID: "nope", UpdatedAt: testTime}), domain.ErrNotFound)
}
