package status

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/ragledger/internal/adapters/driving/tui/keymap"
)

func TestNewBar_Defaults(t *testing.T) {
	bar := NewBar(nil, nil)

	assert.Equal(t, StateReady, bar.State())
	assert.Empty(t, bar.Message())
	assert.Zero(t, bar.Count())
	assert.Contains(t, bar.View(), "Ready")
	assert.Contains(t, bar.View(), "q: quit")
}

func TestBar_Count(t *testing.T) {
	bar := NewBar(nil, keymap.DefaultKeyMap().ReviewsHelp())
	bar.SetWidth(200)
	bar.SetCount(3, "open reviews")

	view := bar.View()
	assert.Contains(t, view, "3 open reviews")
	assert.Contains(t, view, "enter/x: resolve")
}

func TestBar_ErrorState(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetState(StateError)
	bar.SetMessage("database locked")

	assert.Contains(t, bar.View(), "Error: database locked")
}

func TestBar_MessageOverridesCount(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetCount(2, "")
	bar.SetMessage("Resolved rev-1")

	assert.Contains(t, bar.View(), "Resolved rev-1")
	assert.NotContains(t, bar.View(), "2 results")
}

func TestBar_Clear(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetState(StateLoading)
	bar.SetMessage("x")
	bar.SetCount(5, "")

	bar.Clear()

	assert.Equal(t, StateReady, bar.State())
	assert.Empty(t, bar.Message())
	assert.Zero(t, bar.Count())
}
