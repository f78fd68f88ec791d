// ABOUTME: Background refresh daemon and one-shot refresh commands
// ABOUTME: Runs the silent refresh loop with interval and target selection
package cli

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rallyhq/rally/engine"
)

// minDaemonInterval keeps the daemon from hammering the backend.
const minDaemonInterval = time.Minute

// RefreshCommand runs a foreground refresh and reports the outcome.
func RefreshCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("refresh", flag.ExitOnError)
	targetName := fs.String("target", "all", "What to refresh: conversations, campaigns, dashboard, or all")
	_ = fs.Parse(args)

	target, err := parseTarget(*targetName)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	if err := app.Engine.RefreshNow(ctx, target); err != nil {
		return fmt.Errorf("refresh failed: %s", faultText(err))
	}

	fmt.Printf("✓ Refreshed %s\n", target)
	return nil
}

// DaemonCommand runs the silent background refresh loop until interrupted.
func DaemonCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("daemon", flag.ExitOnError)
	intervalStr := fs.String("interval", app.Config.RefreshInterval.String(), "Refresh interval (e.g. 5m, 1h)")
	targetsStr := fs.String("targets", "all", "Comma-separated targets: conversations, campaigns, dashboard, or all")
	_ = fs.Parse(args)

	interval, err := time.ParseDuration(*intervalStr)
	if err != nil {
		return fmt.Errorf("invalid interval %q: %w", *intervalStr, err)
	}
	if interval < minDaemonInterval {
		return fmt.Errorf("interval must be at least %s, got %s", minDaemonInterval, interval)
	}

	targets := parseTargets(*targetsStr)
	if len(targets) == 0 {
		return fmt.Errorf("no valid targets in %q", *targetsStr)
	}

	log.Printf("Starting rally daemon (interval: %s, targets: %s)",
		interval, strings.Join(targetNames(targets), ", "))

	app.Engine.Scheduler.SetInterval(interval)
	app.Engine.Scheduler.SetTargets(targets)
	app.Engine.Scheduler.Start()
	app.Engine.Scheduler.KickAll()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	log.Printf("Received %v, shutting down", sig)
	return nil
}

func parseTarget(name string) (engine.Target, error) {
	switch strings.TrimSpace(name) {
	case "", "all":
		return engine.TargetAll, nil
	case "conversations":
		return engine.TargetConversations, nil
	case "campaigns":
		return engine.TargetCampaigns, nil
	case "dashboard":
		return engine.TargetDashboard, nil
	default:
		return "", fmt.Errorf("unknown target: %s", name)
	}
}

// parseTargets parses a comma-separated target list; invalid names are
// dropped. "all" expands to every target.
func parseTargets(input string) []engine.Target {
	result := []engine.Target{}
	for _, part := range strings.Split(input, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if part == "all" {
			return []engine.Target{
				engine.TargetConversations,
				engine.TargetCampaigns,
				engine.TargetDashboard,
			}
		}
		target, err := parseTarget(part)
		if err != nil {
			continue
		}
		result = append(result, target)
	}
	return result
}

func targetNames(targets []engine.Target) []string {
	names := make([]string, len(targets))
	for i, target := range targets {
		names[i] = string(target)
	}
	return names
}

// formatTimeSince formats a time duration in a human-readable way.
func formatTimeSince(t time.Time) string {
	duration := time.Since(t)

	if duration < time.Minute {
		return "just now"
	} else if duration < time.Hour {
		minutes := int(duration.Minutes())
		if minutes == 1 {
			return "1 minute ago"
		}
		return fmt.Sprintf("%d minutes ago", minutes)
	} else if duration < 24*time.Hour {
		hours := int(duration.Hours())
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	} else {
		days := int(duration.Hours() / 24)
		if days == 1 {
			return "1 day ago"
		}
		return fmt.Sprintf("%d days ago", days)
	}
}
