package cli

import (
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/ragledger/internal/adapters/driving/tui"
)

// errNoTerminal is returned when the TUI is started without a terminal.
var errNoTerminal = errors.New("tui requires an interactive terminal")

// isTerminal reports whether stdout is attached to a terminal.
var isTerminal = func() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// tuiCmd represents the tui command.
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive review queue",
	Long: `Launch the interactive terminal user interface for the review queue.

The TUI lists open review entries so they can be worked through and
resolved, and offers search over the projection.

Controls:
  ↑/k, ↓/j  - Navigate entries
  Enter, x  - Resolve the selected entry
  d         - Show the document behind the entry
  r         - Reload
  Esc       - Back / Menu
  q         - Quit`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
			err = fmt.Errorf("tui panicked: %v", r)
		}
	}()

	if !isTerminal() {
		return errNoTerminal
	}

	ports := tui.NewPorts(reviewQueue, documentRegistry, runTracker, searchProjection)
	app, err := tui.NewApp(ports)
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	app.WithContext(cmd.Context())

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}
