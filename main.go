// ABOUTME: Entry point for the rally CLI and MCP server
// ABOUTME: Routes commands and wires shared dependencies
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/rallyhq/rally/cli"
)

const version = "0.1.0"

func main() {
	showVersion := flag.Bool("version", false, "Show version and exit")
	_ = flag.CommandLine.Parse(os.Args[1:])

	if *showVersion {
		fmt.Printf("rally version %s\n", version)
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(0)
	}

	command := args[0]
	commandArgs := args[1:]

	if command == "help" {
		printUsage()
		os.Exit(0)
	}

	app, err := cli.NewApp()
	if err != nil {
		log.Fatalf("Failed to start: %v", err)
	}
	defer app.Close()

	switch command {
	case "tui":
		if err := cli.TUICommand(app, commandArgs); err != nil {
			log.Fatalf("Error: %v", err)
		}

	case "mcp":
		if err := cli.MCPCommand(app, commandArgs); err != nil {
			log.Fatalf("MCP server failed: %v", err)
		}

	case "conversations":
		if err := cli.ConversationsCommand(app, commandArgs); err != nil {
			log.Fatalf("Error: %v", err)
		}

	case "campaigns":
		if err := cli.CampaignsCommand(app, commandArgs); err != nil {
			log.Fatalf("Error: %v", err)
		}

	case "delete-conversation":
		if err := cli.DeleteConversationCommand(app, commandArgs); err != nil {
			log.Fatalf("Error: %v", err)
		}

	case "delete-campaign":
		if err := cli.DeleteCampaignCommand(app, commandArgs); err != nil {
			log.Fatalf("Error: %v", err)
		}

	case "refresh":
		if err := cli.RefreshCommand(app, commandArgs); err != nil {
			log.Fatalf("Error: %v", err)
		}

	case "daemon":
		if err := cli.DaemonCommand(app, commandArgs); err != nil {
			log.Fatalf("Error: %v", err)
		}

	case "status":
		if err := cli.StatusCommand(app, commandArgs); err != nil {
			log.Fatalf("Error: %v", err)
		}

	case "dashboard":
		if err := cli.DashboardCommand(app, commandArgs); err != nil {
			log.Fatalf("Error: %v", err)
		}

	case "graph":
		if err := cli.GraphCommand(app, commandArgs); err != nil {
			log.Fatalf("Error: %v", err)
		}

	case "login":
		if err := cli.LoginCommand(app, commandArgs); err != nil {
			log.Fatalf("Error: %v", err)
		}

	case "logout":
		if err := cli.LogoutCommand(app, commandArgs); err != nil {
			log.Fatalf("Error: %v", err)
		}

	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Printf(`rally v%s - Campaign workspace client

USAGE:
  rally [global flags] <command> [flags]

GLOBAL FLAGS:
  --version              Show version and exit

COMMANDS:
  tui                    Launch the interactive full-screen interface
  mcp                    Start MCP server (for Claude Desktop integration)
  conversations          List conversations
    --refresh              Fetch fresh data first
    --limit <n>            Max results (default: all)
  campaigns              List campaigns
    --refresh              Fetch fresh data first
    --status <status>      Filter by status
  delete-conversation <id>  Delete a conversation and any linked campaign
    --yes                  Skip confirmation
  delete-campaign <id>   Delete a campaign and its source conversation
    --yes                  Skip confirmation
  refresh                Fetch fresh data from the server
    --target <name>        conversations, campaigns, dashboard, or all
  daemon                 Run the background refresh loop
    --interval <dur>       Refresh interval, minimum 1m (default: 5m)
    --targets <list>       Comma-separated targets (default: all)
  status                 Show per-collection refresh state
  dashboard              Render the aggregate overview
    --refresh              Fetch fresh data first
  graph                  Emit the campaign/conversation graph as DOT
    --output <file>        Output file (default: stdout)
  login                  Authenticate and save a token
    --email <email>        Account email (prompted if omitted)
  logout                 Clear the token and local snapshots

EXAMPLES:
  # Launch the TUI
  rally tui

  # List campaigns with fresh data
  rally campaigns --refresh

  # Delete a campaign without prompting
  rally delete-campaign 42 --yes

  # Run the refresh daemon every 10 minutes
  rally daemon --interval 10m

`, version)
}
