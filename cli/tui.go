// ABOUTME: TUI subcommand
// ABOUTME: Runs the full-screen interface with background sync active
package cli

import (
	"flag"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rallyhq/rally/tui"
)

// TUICommand launches the interactive full-screen interface.
func TUICommand(app *App, args []string) error {
	fs := flag.NewFlagSet("tui", flag.ExitOnError)
	_ = fs.Parse(args)

	app.Engine.Start()

	model := tui.NewModel(app.Engine, app.Focus)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithReportFocus())

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("TUI failed: %w", err)
	}
	return nil
}
