// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/ragledger/internal/core/domain"
)

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewMenu is the main navigation menu.
	ViewMenu ViewType = iota
	// ViewReviews is the review queue.
	ViewReviews
	// ViewSearch is the search input and results view.
	ViewSearch
	// ViewDocDetails shows a document with its runs and reviews.
	ViewDocDetails
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewMenu:
		return "menu"
	case ViewReviews:
		return "reviews"
	case ViewSearch:
		return "search"
	case ViewDocDetails:
		return "doc_details"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}

// ReviewsLoaded carries the open review entries.
type ReviewsLoaded struct {
	Entries []domain.ReviewEntry
	Err     error
}

// ReviewResolved signals a review entry was resolved.
type ReviewResolved struct {
	ReviewID string
	Err      error
}

// SearchCompleted carries search hits back to the model.
type SearchCompleted struct {
	Hits []domain.SearchHit
	Err  error
}

// DocumentSelected asks for the details of a document.
type DocumentSelected struct {
	DocumentID string
	// From is the view to return to.
	From ViewType
}

// DocumentDetails is everything the details view shows for a document.
type DocumentDetails struct {
	Document *domain.Document
	Runs     []domain.ProcessingRun
	Reviews  []domain.ReviewEntry
}

// DocumentDetailsLoaded carries the details of a document.
type DocumentDetailsLoaded struct {
	DocumentID string
	Details    *DocumentDetails
	Err        error
}
