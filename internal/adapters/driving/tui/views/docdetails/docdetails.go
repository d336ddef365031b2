// Package docdetails provides the document details view component for the TUI.
package docdetails

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/ragledger/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/ragledger/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/ragledger/internal/core/domain"
	"github.com/custodia-labs/ragledger/internal/core/ports/driving"
)

// ErrNoDocumentRegistry indicates that no document registry was provided.
var ErrNoDocumentRegistry = errors.New("document registry not available")

// recentLimit caps the runs and reviews shown for a document.
const recentLimit = 10

// View is the document details view.
type View struct {
	styles    *styles.Styles
	documents driving.DocumentRegistry
	runs      driving.RunTracker
	reviews   driving.ReviewQueue
	ctx       context.Context

	details      *messages.DocumentDetails
	from         messages.ViewType
	scrollOffset int
	width        int
	height       int
	ready        bool
	err          error
}

// NewView creates a new document details view. runs and reviews may be nil;
// their sections are omitted.
func NewView(
	s *styles.Styles,
	documents driving.DocumentRegistry,
	runs driving.RunTracker,
	reviews driving.ReviewQueue,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles:    s,
		documents: documents,
		runs:      runs,
		reviews:   reviews,
		ctx:       context.Background(),
		from:      messages.ViewMenu,
		width:     80,
		height:    24,
	}
}

// WithContext sets the context used for lookups.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Load clears the view and returns a command fetching the details of
// documentID. esc returns to from.
func (v *View) Load(documentID string, from messages.ViewType) tea.Cmd {
	v.details = nil
	v.err = nil
	v.scrollOffset = 0
	v.from = from

	ctx := v.ctx
	documents, runs, reviews := v.documents, v.runs, v.reviews
	return func() tea.Msg {
		if documents == nil {
			return messages.DocumentDetailsLoaded{DocumentID: documentID, Err: ErrNoDocumentRegistry}
		}
		doc, err := documents.Get(ctx, documentID)
		if err != nil {
			return messages.DocumentDetailsLoaded{DocumentID: documentID, Err: err}
		}

		details := &messages.DocumentDetails{Document: doc}
		if runs != nil {
			details.Runs, err = runs.ListRuns(ctx, domain.RunFilter{DocumentID: documentID, Limit: recentLimit})
			if err != nil {
				return messages.DocumentDetailsLoaded{DocumentID: documentID, Err: err}
			}
		}
		if reviews != nil {
			details.Reviews, err = reviews.List(ctx, domain.ReviewFilter{DocumentID: documentID, Limit: recentLimit})
			if err != nil {
				return messages.DocumentDetailsLoaded{DocumentID: documentID, Err: err}
			}
		}
		return messages.DocumentDetailsLoaded{DocumentID: documentID, Details: details}
	}
}

// SetDetails sets the document details to display.
func (v *View) SetDetails(details *messages.DocumentDetails) {
	v.details = details
	v.scrollOffset = 0
	v.err = nil
}

// SetError sets an error to display.
func (v *View) SetError(err error) {
	v.err = err
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

// Update handles messages for the document details view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.DocumentDetailsLoaded:
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.SetDetails(msg.Details)
		return v, nil

	case messages.ErrorOccurred:
		v.err = msg.Err
		return v, nil
	}

	return v, nil
}

// handleKeyMsg handles key presses.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if v.scrollOffset > 0 {
			v.scrollOffset--
		}
	case "down", "j":
		if v.scrollOffset < v.maxScrollOffset() {
			v.scrollOffset++
		}
	case "esc":
		from := v.from
		return v, func() tea.Msg {
			return messages.ViewChanged{View: from}
		}
	case "q":
		return v, tea.Quit
	}

	return v, nil
}

// visibleLines returns the number of lines that can be displayed.
func (v *View) visibleLines() int {
	// title, separator, help and padding
	return max(v.height-6, 1)
}

func (v *View) maxScrollOffset() int {
	return max(len(v.buildContent())-v.visibleLines(), 0)
}

// buildContent builds the content lines for display.
func (v *View) buildContent() []string {
	if v.details == nil || v.details.Document == nil {
		return nil
	}
	doc := v.details.Document

	status := string(doc.Status)
	if doc.Status == domain.StatusNeedsReview && doc.PreviousStatus != "" {
		status = fmt.Sprintf("%s (was %s)", doc.Status, doc.PreviousStatus)
	}

	lines := []string{
		formatField("ID", doc.ID),
		formatField("Title", orDash(doc.Title)),
		formatField("Author", orDash(doc.Author)),
		formatField("Source", doc.Source),
		formatField("URI", doc.SourceURI),
		formatField("Status", v.styles.Status(string(doc.Status)).Render(status)),
	}
	if doc.ContentType != "" {
		lines = append(lines, formatField("Type", doc.ContentType))
	}
	if doc.PublishedYear > 0 {
		lines = append(lines, formatField("Year", fmt.Sprintf("%d", doc.PublishedYear)))
	}
	lines = append(lines,
		formatField("Created", formatTime(doc.CreatedAt)),
		formatField("Updated", formatTime(doc.UpdatedAt)),
	)

	if v.runs != nil {
		lines = append(lines, "", "Runs:")
		if len(v.details.Runs) == 0 {
			lines = append(lines, "  none")
		}
		for i := range v.details.Runs {
			r := &v.details.Runs[i]
			lines = append(lines, fmt.Sprintf("  %s  %-10s %s %s",
				formatTime(r.StartedAt), r.PipelineVersion,
				v.styles.Status(string(r.Status)).Render(fmt.Sprintf("%-9s", r.Status)), r.ID))
		}
	}

	if v.reviews != nil {
		lines = append(lines, "", "Reviews:")
		if len(v.details.Reviews) == 0 {
			lines = append(lines, "  none")
		}
		for i := range v.details.Reviews {
			e := &v.details.Reviews[i]
			lines = append(lines, fmt.Sprintf("  %s  %s %s",
				formatTime(e.CreatedAt),
				v.styles.Status(string(e.Status)).Render(fmt.Sprintf("%-8s", e.Status)), e.Reason))
		}
	}

	return lines
}

func formatField(label, value string) string {
	return fmt.Sprintf("%-12s %s", label+":", value)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// View renders the document details view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Document Details"))
	b.WriteString("\n")
	b.WriteString(strings.Repeat("─", max(min(v.width-4, 60), 0)))
	b.WriteString("\n\n")

	if v.err != nil {
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %s", v.err.Error())))
		b.WriteString("\n\n")
		b.WriteString(v.renderHelp())
		return b.String()
	}

	if v.details == nil {
		b.WriteString(v.styles.Muted.Render("Loading document..."))
		b.WriteString("\n\n")
		b.WriteString(v.renderHelp())
		return b.String()
	}

	lines := v.buildContent()
	visible := v.visibleLines()
	for i := v.scrollOffset; i < len(lines) && i < v.scrollOffset+visible; i++ {
		b.WriteString(v.renderLine(lines[i]))
		b.WriteString("\n")
	}

	if len(lines) > visible {
		b.WriteString("\n")
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  [Line %d-%d of %d]",
			v.scrollOffset+1,
			min(v.scrollOffset+visible, len(lines)),
			len(lines))))
	}

	b.WriteString("\n\n")
	b.WriteString(v.renderHelp())

	return b.String()
}

func (v *View) renderLine(line string) string {
	switch {
	case line == "Runs:", line == "Reviews:":
		return v.styles.Subtitle.Render(line)
	case strings.HasPrefix(line, "  "):
		for _, s := range []string{"failed", "open"} {
			if strings.Contains(line, " "+s+" ") {
				return v.styles.Warning.Render(line)
			}
		}
		return v.styles.Muted.Render(line)
	case strings.Contains(line, ":"):
		parts := strings.SplitN(line, ":", 2)
		return v.styles.Subtitle.Render(parts[0]+":") + v.styles.Normal.Render(parts[1])
	}
	return v.styles.Normal.Render(line)
}

// renderHelp renders the help footer.
func (v *View) renderHelp() string {
	return v.styles.Help.Render("[↑/↓] scroll  [esc] back  [q] quit")
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Details returns the current document details.
func (v *View) Details() *messages.DocumentDetails {
	return v.details
}

// From returns the view esc returns to.
func (v *View) From() messages.ViewType {
	return v.from
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
