package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/ragledger/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/ragledger/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/ragledger/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/ragledger/internal/adapters/driving/tui/views/docdetails"
	"github.com/custodia-labs/ragledger/internal/adapters/driving/tui/views/menu"
	"github.com/custodia-labs/ragledger/internal/adapters/driving/tui/views/reviews"
	"github.com/custodia-labs/ragledger/internal/adapters/driving/tui/views/search"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the context for cancellation.
	ctx context.Context

	styles *styles.Styles
	keymap *keymap.KeyMap

	menuView       *menu.View
	reviewsView    *reviews.View
	searchView     *search.View
	docDetailsView *docdetails.View

	// currentView tracks which view is active.
	currentView messages.ViewType

	// err holds the last error that occurred.
	err error

	// width and height are terminal dimensions.
	width  int
	height int

	// ready indicates if the app has initialised.
	ready bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
// The app opens on the review queue.
func NewApp(ports *Ports) (*App, error) {
	if ports == nil {
		return nil, fmt.Errorf("creating app: %w", ErrMissingReviewQueue)
	}
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	return &App{
		ports:          ports,
		ctx:            context.Background(),
		styles:         s,
		keymap:         km,
		menuView:       menu.NewView(s, km, ports.Search != nil),
		reviewsView:    reviews.NewView(s, km, ports.Reviews),
		searchView:     search.NewView(s, km, ports.Search),
		docDetailsView: docdetails.NewView(s, ports.Documents, ports.Runs, ports.Reviews),
		currentView:    messages.ViewReviews,
	}, nil
}

// WithContext sets the context for the app and its views.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.reviewsView.WithContext(ctx)
	a.searchView.WithContext(ctx)
	a.docDetailsView.WithContext(ctx)
	return a
}

// Init implements tea.Model.
// It runs initial commands when the program starts.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		tea.SetWindowTitle("ragledger - review queue"),
		a.reviewsView.Init(),
	)
}

// Update implements tea.Model.
// It handles messages and updates the model state.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		// Global quit with ctrl+c
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if a.currentView == messages.ViewHelp {
			switch k := msg.String(); {
			case keymap.Matches(k, a.keymap.Back):
				a.currentView = messages.ViewMenu
			case keymap.Matches(k, a.keymap.Quit):
				return a, tea.Quit
			}
			return a, nil
		}
		return a, a.forward(msg)

	case messages.ViewChanged:
		a.currentView = msg.View
		switch msg.View {
		case messages.ViewReviews:
			return a, a.reviewsView.Load()
		case messages.ViewSearch:
			return a, a.searchView.Reset()
		case messages.ViewMenu, messages.ViewDocDetails, messages.ViewHelp:
		}
		return a, nil

	case messages.DocumentSelected:
		a.currentView = messages.ViewDocDetails
		return a, a.docDetailsView.Load(msg.DocumentID, msg.From)

	case messages.ReviewsLoaded, messages.ReviewResolved:
		a.reviewsView, cmd = a.reviewsView.Update(msg)
		a.err = a.reviewsView.Err()
		return a, cmd

	case messages.SearchCompleted:
		a.searchView, cmd = a.searchView.Update(msg)
		a.err = a.searchView.Err()
		return a, cmd

	case messages.DocumentDetailsLoaded:
		a.docDetailsView, cmd = a.docDetailsView.Update(msg)
		a.err = a.docDetailsView.Err()
		return a, cmd

	case messages.ErrorOccurred:
		a.err = msg.Err
		return a, a.forward(msg)

	case messages.Quit:
		return a, tea.Quit
	}

	return a, a.forward(msg)
}

// forward passes msg to the active view.
func (a *App) forward(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch a.currentView {
	case messages.ViewMenu:
		a.menuView, cmd = a.menuView.Update(msg)
	case messages.ViewReviews:
		a.reviewsView, cmd = a.reviewsView.Update(msg)
	case messages.ViewSearch:
		a.searchView, cmd = a.searchView.Update(msg)
	case messages.ViewDocDetails:
		a.docDetailsView, cmd = a.docDetailsView.Update(msg)
	case messages.ViewHelp:
		// Help view doesn't need to handle other messages
	}
	return cmd
}

// View implements tea.Model.
// It renders the current view as a string.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	switch a.currentView {
	case messages.ViewReviews:
		return a.reviewsView.View()
	case messages.ViewSearch:
		return a.searchView.View()
	case messages.ViewDocDetails:
		return a.docDetailsView.View()
	case messages.ViewHelp:
		return a.viewHelp()
	default:
		return a.menuView.View()
	}
}

// viewHelp renders every key binding grouped by view.
func (a *App) viewHelp() string {
	h := help.New()
	h.Styles.FullKey = a.styles.Subtitle
	h.Styles.FullDesc = a.styles.Normal
	h.Width = a.width

	var b strings.Builder
	b.WriteString(a.styles.Title.Render("Help"))
	b.WriteString("\n\n")
	b.WriteString(h.FullHelpView(a.keymap.FullHelp()))
	b.WriteString("\n\n")
	b.WriteString(a.styles.Help.Render("[esc] back to menu"))
	return b.String()
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions on the app and every view.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.menuView.SetDimensions(width, height)
	a.reviewsView.SetDimensions(width, height)
	a.searchView.SetDimensions(width, height)
	a.docDetailsView.SetDimensions(width, height)
}
