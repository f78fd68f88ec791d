// ABOUTME: Sync status CLI command
// ABOUTME: Shows per-collection refresh state from the sync-state database
package cli

import (
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/rallyhq/rally/db"
)

// StatusCommand shows when each collection last refreshed and how it went.
func StatusCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	_ = fs.Parse(args)

	states, err := db.GetAllSyncStates(app.DB)
	if err != nil {
		return fmt.Errorf("failed to read sync state: %w", err)
	}

	if len(states) == 0 {
		fmt.Println("No refresh history yet. Run 'rally refresh' to fetch from the server.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "COLLECTION\tSTATUS\tLAST REFRESH\tERROR")
	for _, state := range states {
		last := "never"
		if state.LastRefreshTime != nil {
			last = formatTimeSince(*state.LastRefreshTime)
		}
		errText := "-"
		if state.ErrorMessage != nil && *state.ErrorMessage != "" {
			errText = *state.ErrorMessage
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", state.Collection, state.Status, last, errText)
	}
	_ = w.Flush()

	return nil
}
