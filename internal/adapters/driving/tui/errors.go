package tui

import "errors"

// ErrMissingReviewQueue is returned when the review queue is not provided.
var ErrMissingReviewQueue = errors.New("tui: review queue is required")

// ErrMissingDocumentRegistry is returned when the document registry is not provided.
var ErrMissingDocumentRegistry = errors.New("tui: document registry is required")
