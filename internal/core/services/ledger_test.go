package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragledger/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/ragledger/internal/core/domain"
	"github.com/custodia-labs/ragledger/internal/core/ports/driving"
)

var fixedTime = time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC)

// newTestLedger builds a ledger over a fresh in-memory store with a
// deterministic clock.
func newTestLedger(t *testing.T) *Ledger {
	t.Helper()
	store := memory.NewStore()
	ledger := NewLedger(Stores{
		Documents:   store.DocumentStore(),
		Artifacts:   store.ArtifactStore(),
		Runs:        store.RunStore(),
		Errors:      store.ErrorStore(),
		OCR:         store.OcrStore(),
		Enrichments: store.EnrichmentStore(),
		Reviews:     store.ReviewStore(),
		Projections: store.ProjectionStore(),
	}, domain.DefaultSettings())

	clock := func() time.Time { return fixedTime }
	ledger.Documents.now = clock
	ledger.Artifacts.now = clock
	ledger.Runs.now = clock
	ledger.Errors.now = clock
	ledger.OCR.now = clock
	ledger.Enrichments.now = clock
	ledger.Reviews.now = clock
	ledger.Search.now = clock
	return ledger
}

func registerDoc(t *testing.T, l *Ledger, id string) *domain.Document {
	t.Helper()
	doc, err := l.Documents.Register(context.Background(), driving.RegisterDocumentRequest{
		ID:        id,
		Source:    "arxiv",
		SourceURI: "https://arxiv.org/abs/" + id,
	})
	require.NoError(t, err)
	return doc
}

// advanceTo walks a document along the happy path up to status.
func advanceTo(t *testing.T, l *Ledger, id string, status domain.DocumentStatus) {
	t.Helper()
	_, err := l.Documents.AdvanceStatus(context.Background(), id, status)
	require.NoError(t, err)
}
