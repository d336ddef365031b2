package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestChunkEnrichment_IsStale tests hash comparison against the current chunk
func TestChunkEnrichment_IsStale(t *testing.T) {
	e := &ChunkEnrichment{ChunkSHA256: "h1"}

	assert.False(t, e.IsStale("h1"))
	assert.True(t, e.IsStale("h2"))
	assert.True(t, e.IsStale(""))
}

// TestChunkEnrichment_IsRejected tests rejection marker
func TestChunkEnrichment_IsRejected(t *testing.T) {
	e := &ChunkEnrichment{}
	assert.False(t, e.IsRejected())

	e.RejectedAt = time.Now()
	assert.True(t, e.IsRejected())
}

// TestNeedsEnrichment tests candidate selection rules
func TestNeedsEnrichment(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name            string
		existing        *ChunkEnrichment
		includeRejected bool
		expected        bool
	}{
		{"no enrichment", nil, false, true},
		{"hash changed", &ChunkEnrichment{ChunkSHA256: "old", Accepted: true, AppliedAt: now}, false, true},
		{"accepted but not applied", &ChunkEnrichment{ChunkSHA256: "h", Accepted: true}, false, true},
		{"accepted and applied", &ChunkEnrichment{ChunkSHA256: "h", Accepted: true, AppliedAt: now}, false, false},
		{"pending proposal", &ChunkEnrichment{ChunkSHA256: "h"}, false, false},
		{"pending proposal included", &ChunkEnrichment{ChunkSHA256: "h"}, true, true},
		{"rejected included", &ChunkEnrichment{ChunkSHA256: "h", RejectedAt: now}, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NeedsEnrichment("h", tt.existing, tt.includeRejected))
		})
	}
}

// TestBuildSearchText tests projection text normalisation
func TestBuildSearchText(t *testing.T) {
	assert.Equal(t, "deep learning jane doe neural nets", BuildSearchText(" Deep Learning ", "Jane Doe", "Neural Nets"))
	assert.Equal(t, "body", BuildSearchText("", "  ", "Body"))
	assert.Empty(t, BuildSearchText("", "", ""))
}

// TestSearchTerms tests query tokenisation
func TestSearchTerms(t *testing.T) {
	assert.Equal(t, []string{"neural", "nets"}, SearchTerms("  Neural   NETS "))
	assert.Empty(t, SearchTerms("   "))
}

// TestExtractionGate_Validate tests extracted text quality issues
func TestExtractionGate_Validate(t *testing.T) {
	gate := DefaultExtractionGate()

	t.Run("empty", func(t *testing.T) {
		issues := gate.Validate("   ", "application/pdf")
		if assert.Len(t, issues, 1) {
			assert.Equal(t, IssueExtractionEmpty, issues[0].Code)
		}
	})

	t.Run("too short", func(t *testing.T) {
		issues := gate.Validate("hello world", "text/plain")
		if assert.Len(t, issues, 1) {
			assert.Equal(t, IssueExtractionTooShort, issues[0].Code)
			assert.Equal(t, 200, issues[0].Details["min_chars"])
		}
	})

	t.Run("low alpha", func(t *testing.T) {
		issues := gate.Validate(strings.Repeat("12345 ", 50), "application/pdf")
		if assert.Len(t, issues, 1) {
			assert.Equal(t, IssueExtractionLowAlpha, issues[0].Code)
			assert.Equal(t, "application/pdf", issues[0].Details["content_type"])
		}
	})

	t.Run("clean", func(t *testing.T) {
		assert.Empty(t, gate.Validate(strings.Repeat("words and more words ", 20), "text/plain"))
	})
}
