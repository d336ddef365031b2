package domain

import (
	"strings"
	"time"
)

// SearchProjection is the denormalised search view of a document.
// It is always derived from the document's current extraction and chunks.
type SearchProjection struct {
	DocumentID  string
	PreviewText string

	// SearchText is the lowercased searchable representation.
	SearchText string

	UpdatedAt time.Time
}

// SearchHit is one document matched by a projection search.
type SearchHit struct {
	DocumentID  string
	Title       string
	PreviewText string
	UpdatedAt   time.Time
}

// BuildSearchText combines the document title, author and the precomputed
// searchable text into the stored representation.
func BuildSearchText(title, author, searchable string) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{title, author, searchable} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.ToLower(strings.Join(parts, " "))
}

// SearchTerms splits a query into lowercased terms.
func SearchTerms(query string) []string {
	return strings.Fields(strings.ToLower(query))
}
