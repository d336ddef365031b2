package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragledger/internal/core/domain"
	"github.com/custodia-labs/ragledger/internal/core/ports/driving"
)

func TestSearchProjection_RefreshAndSearch(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger(t)
	registerDoc(t, l, "doc-1")
	registerDoc(t, l, "doc-2")
	_, err := l.Documents.UpdateMetadata(ctx, "doc-1", domain.DocumentMetadata{Title: "Attention Is All You Need", Author: "Vaswani"})
	require.NoError(t, err)

	p, err := l.Search.Refresh(ctx, driving.RefreshProjectionRequest{
		DocumentID: "doc-1", PreviewText: "The dominant sequence models...", SearchableText: "Transformer encoder decoder",
	})
	require.NoError(t, err)
	assert.Equal(t, "attention is all you need vaswani transformer encoder decoder", p.SearchText)

	_, err = l.Search.Refresh(ctx, driving.RefreshProjectionRequest{DocumentID: "doc-2", SearchableText: "recurrent encoder"})
	require.NoError(t, err)

	hits, err := l.Search.Search(ctx, "ENCODER", 0)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "doc-2", hits[0].DocumentID)

	hits, err = l.Search.Search(ctx, "vaswani transformer", 0)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "Attention Is All You Need", hits[0].Title)
	assert.Equal(t, "The dominant sequence models...", hits[0].PreviewText)

	hits, err = l.Search.Search(ctx, "encoder", 1)
	require.NoError(t, err)
	assert.Len(t, hits, 1)
}

func TestSearchProjection_RefreshReplaces(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger(t)
	registerDoc(t, l, "doc-1")

	_, err := l.Search.Refresh(ctx, driving.RefreshProjectionRequest{DocumentID: "doc-1", SearchableText: "alpha"})
	require.NoError(t, err)
	_, err = l.Search.Refresh(ctx, driving.RefreshProjectionRequest{DocumentID: "doc-1", SearchableText: "beta"})
	require.NoError(t, err)

	hits, err := l.Search.Search(ctx, "alpha", 0)
	require.NoError(t, err)
	assert.Empty(t, hits)

	p, err := l.Search.Get(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "beta", p.SearchText)
}

func TestSearchProjection_Errors(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger(t)

	_, err := l.Search.Search(ctx, "   ", 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = l.Search.Refresh(ctx, driving.RefreshProjectionRequest{DocumentID: "ghost"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestNewSearchProjection_DefaultLimit(t *testing.T) {
	s := NewSearchProjection(nil, nil, 0)
	assert.Equal(t, domain.DefaultSettings().Search.DefaultLimit, s.defaultLimit)
}
