// ABOUTME: Dashboard and graph visualization CLI commands
// ABOUTME: Renders aggregate snapshot data as text or DOT output
package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/rallyhq/rally/engine"
	"github.com/rallyhq/rally/models"
	"github.com/rallyhq/rally/viz"
)

// DashboardCommand renders the aggregate overview from local snapshots.
func DashboardCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("dashboard", flag.ExitOnError)
	refresh := fs.Bool("refresh", false, "Fetch fresh data from the server first")
	_ = fs.Parse(args)

	if *refresh {
		if err := app.Engine.RefreshNow(context.Background(), engine.TargetAll); err != nil {
			return fmt.Errorf("refresh failed: %s", faultText(err))
		}
	}

	var stats *models.DashboardStats
	if s, ok := app.Engine.Dashboard(); ok {
		stats = &s
	}
	var credits *models.Credits
	if c, ok := app.Engine.Credits(); ok {
		credits = &c
	}

	fmt.Print(viz.RenderDashboard(stats, credits, app.Engine.Sidebar.List()))
	return nil
}

// GraphCommand emits the campaign-to-conversation graph as DOT.
func GraphCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("graph", flag.ExitOnError)
	output := fs.String("output", "", "Output file (default: stdout)")
	_ = fs.Parse(args)

	dot, err := viz.GenerateAggregateGraph(
		app.Engine.Campaigns.List(), app.Engine.Conversations.List())
	if err != nil {
		return fmt.Errorf("failed to generate graph: %w", err)
	}

	if *output == "" {
		fmt.Print(dot)
		return nil
	}

	if err := os.WriteFile(*output, []byte(dot), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", *output, err)
	}
	fmt.Printf("✓ Graph written to %s\n", *output)
	return nil
}
