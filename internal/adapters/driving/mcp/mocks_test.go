package mcp

import (
	"context"
	"testing"

	"github.com/custodia-labs/ragledger/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/ragledger/internal/core/domain"
	"github.com/custodia-labs/ragledger/internal/core/ports/driving"
	"github.com/custodia-labs/ragledger/internal/core/services"
)

// newTestPorts wires every port to a ledger over a fresh in-memory store.
func newTestPorts(t *testing.T) *Ports {
	t.Helper()
	store := memory.NewStore()
	ledger := services.NewLedger(services.Stores{
		Documents:   store.DocumentStore(),
		Artifacts:   store.ArtifactStore(),
		Runs:        store.RunStore(),
		Errors:      store.ErrorStore(),
		OCR:         store.OcrStore(),
		Enrichments: store.EnrichmentStore(),
		Reviews:     store.ReviewStore(),
		Projections: store.ProjectionStore(),
	}, domain.DefaultSettings())

	return &Ports{
		Documents: ledger.Documents,
		Runs:      ledger.Runs,
		Errors:    ledger.Errors,
		Artifacts: ledger.Artifacts,
		Reviews:   ledger.Reviews,
		Search:    ledger.Search,
	}
}

// mockSearchProjection is a mock implementation of driving.SearchProjection.
type mockSearchProjection struct {
	hits []domain.SearchHit
	err  error
}

func (m *mockSearchProjection) Refresh(
	_ context.Context,
	_ driving.RefreshProjectionRequest,
) (*domain.SearchProjection, error) {
	return nil, m.err
}

func (m *mockSearchProjection) Get(_ context.Context, _ string) (*domain.SearchProjection, error) {
	return nil, m.err
}

func (m *mockSearchProjection) Search(_ context.Context, _ string, _ int) ([]domain.SearchHit, error) {
	return m.hits, m.err
}
