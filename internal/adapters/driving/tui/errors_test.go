package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrors_AreDistinct(t *testing.T) {
	assert.NotEqual(t, ErrMissingReviewQueue.Error(), ErrMissingDocumentRegistry.Error())
}

func TestErrMissingReviewQueue_Message(t *testing.T) {
	assert.Contains(t, ErrMissingReviewQueue.Error(), "review queue")
}

func TestErrMissingDocumentRegistry_Message(t *testing.T) {
	assert.Contains(t, ErrMissingDocumentRegistry.Error(), "document registry")
}
