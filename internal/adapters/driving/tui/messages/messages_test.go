package messages

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestViewType_String(t *testing.T) {
	tests := []struct {
		view     ViewType
		expected string
	}{
		{ViewMenu, "menu"},
		{ViewReviews, "reviews"},
		{ViewSearch, "search"},
		{ViewDocDetails, "doc_details"},
		{ViewHelp, "help"},
		{ViewType(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.view.String())
		})
	}
}

func TestViewType_StartsAtMenu(t *testing.T) {
	var zero ViewType
	assert.Equal(t, ViewMenu, zero)
}
