// Package reviews provides the review queue view for the TUI.
package reviews

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/ragledger/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/ragledger/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/ragledger/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/ragledger/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/ragledger/internal/core/domain"
	"github.com/custodia-labs/ragledger/internal/core/ports/driving"
)

// ErrNoReviewQueue indicates that no review queue was provided.
var ErrNoReviewQueue = errors.New("review queue not available")

// View lists open review entries and resolves them.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	statusbar *status.Bar
	queue     driving.ReviewQueue
	ctx       context.Context

	entries      []domain.ReviewEntry
	selected     int
	scrollOffset int
	width        int
	height       int
	ready        bool
	loading      bool
	err          error
}

// NewView creates a new review queue view.
func NewView(s *styles.Styles, km *keymap.KeyMap, queue driving.ReviewQueue) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	bar := status.NewBar(s, km.ReviewsHelp())
	bar.SetCount(0, "open")

	return &View{
		styles:    s,
		keymap:    km,
		statusbar: bar,
		queue:     queue,
		ctx:       context.Background(),
		width:     80,
		height:    24,
	}
}

// WithContext sets the context used for queue calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init loads the open entries.
func (v *View) Init() tea.Cmd {
	return v.Load()
}

// Load returns a command that fetches the open entries.
func (v *View) Load() tea.Cmd {
	v.loading = true
	v.statusbar.SetState(status.StateLoading)
	ctx := v.ctx
	queue := v.queue
	return func() tea.Msg {
		if queue == nil {
			return messages.ReviewsLoaded{Err: ErrNoReviewQueue}
		}
		entries, err := queue.List(ctx, domain.ReviewFilter{Status: domain.ReviewOpen})
		return messages.ReviewsLoaded{Entries: entries, Err: err}
	}
}

func (v *View) resolve(reviewID string) tea.Cmd {
	ctx := v.ctx
	queue := v.queue
	return func() tea.Msg {
		if queue == nil {
			return messages.ReviewResolved{ReviewID: reviewID, Err: ErrNoReviewQueue}
		}
		_, err := queue.Resolve(ctx, reviewID)
		return messages.ReviewResolved{ReviewID: reviewID, Err: err}
	}
}

// Update handles messages for the review queue view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.ReviewsLoaded:
		v.loading = false
		if msg.Err != nil {
			v.setError(msg.Err)
			return v, nil
		}
		v.err = nil
		v.entries = msg.Entries
		if v.selected >= len(v.entries) {
			v.selected = max(len(v.entries)-1, 0)
		}
		v.adjustScroll()
		v.statusbar.SetState(status.StateResults)
		v.statusbar.SetCount(len(v.entries), "open")
		return v, nil

	case messages.ReviewResolved:
		if msg.Err != nil {
			v.setError(msg.Err)
			return v, nil
		}
		cmd := v.Load()
		v.statusbar.SetMessage("Resolved " + msg.ReviewID)
		return v, cmd

	case messages.ErrorOccurred:
		v.setError(msg.Err)
		return v, nil
	}

	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	keyStr := msg.String()

	switch {
	case keyStr == "esc":
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	case keymap.Matches(keyStr, v.keymap.Quit):
		return v, tea.Quit
	case keymap.Matches(keyStr, v.keymap.Up):
		if v.selected > 0 {
			v.selected--
			v.adjustScroll()
		}
	case keymap.Matches(keyStr, v.keymap.Down):
		if v.selected < len(v.entries)-1 {
			v.selected++
			v.adjustScroll()
		}
	case keymap.Matches(keyStr, v.keymap.Reload):
		v.statusbar.SetMessage("")
		return v, v.Load()
	case keymap.Matches(keyStr, v.keymap.Resolve):
		if entry := v.SelectedEntry(); entry != nil {
			return v, v.resolve(entry.ID)
		}
	case keymap.Matches(keyStr, v.keymap.Details):
		if entry := v.SelectedEntry(); entry != nil {
			docID := entry.DocumentID
			return v, func() tea.Msg {
				return messages.DocumentSelected{DocumentID: docID, From: messages.ViewReviews}
			}
		}
	}

	return v, nil
}

func (v *View) setError(err error) {
	v.err = err
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(err.Error())
}

// adjustScroll keeps the selected entry visible.
func (v *View) adjustScroll() {
	visible := v.visibleItemCount()
	if v.selected < v.scrollOffset {
		v.scrollOffset = v.selected
	} else if v.selected >= v.scrollOffset+visible {
		v.scrollOffset = v.selected - visible + 1
	}
}

func (v *View) visibleItemCount() int {
	// title, blank, column header, blank, status bar
	return max(v.height-7, 1)
}

// View renders the review queue.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	var b strings.Builder

	b.WriteString(v.styles.Title.Render(fmt.Sprintf("Review queue (%d open)", len(v.entries))))
	b.WriteString("\n\n")

	switch {
	case v.loading && len(v.entries) == 0:
		b.WriteString(v.styles.Muted.Render("Loading reviews..."))
		b.WriteString("\n")
	case v.err != nil && len(v.entries) == 0:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
		b.WriteString("\n")
	case len(v.entries) == 0:
		b.WriteString(v.styles.Muted.Render("Nothing to review."))
		b.WriteString("\n")
	default:
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  %-19s  %-24s  %-10s  %s", "CREATED", "DOCUMENT", "VERSION", "REASON")))
		b.WriteString("\n")
		visible := v.visibleItemCount()
		for i := v.scrollOffset; i < len(v.entries) && i < v.scrollOffset+visible; i++ {
			b.WriteString(v.renderEntry(i, &v.entries[i]))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(v.statusbar.View())

	return b.String()
}

func (v *View) renderEntry(index int, e *domain.ReviewEntry) string {
	indicator := "  "
	if index == v.selected {
		indicator = "> "
	}

	reasonWidth := max(v.width-62, 10)
	line := fmt.Sprintf("%s%-19s  %-24s  %-10s  %s",
		indicator,
		e.CreatedAt.Local().Format("2006-01-02 15:04:05"),
		clip(e.DocumentID, 24),
		clip(e.PipelineVersion, 10),
		clip(e.Reason, reasonWidth),
	)

	if index == v.selected {
		return v.styles.Selected.Render(line)
	}
	return v.styles.Normal.Render(line)
}

func clip(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit-3]) + "..."
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.statusbar.SetWidth(width)
	v.adjustScroll()
}

// Entries returns the loaded entries.
func (v *View) Entries() []domain.ReviewEntry {
	return v.entries
}

// SelectedIndex returns the selected entry index.
func (v *View) SelectedIndex() int {
	return v.selected
}

// SelectedEntry returns the selected entry, or nil when the list is empty.
func (v *View) SelectedEntry() *domain.ReviewEntry {
	if v.selected < len(v.entries) {
		return &v.entries[v.selected]
	}
	return nil
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
