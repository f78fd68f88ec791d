// ABOUTME: MCP server subcommand
// ABOUTME: Exposes the local sync state as tools over stdio
package cli

import (
	"context"
	"log"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/rallyhq/rally/handlers"
)

// MCPCommand starts the MCP server on stdio
func MCPCommand(app *App, args []string) error {
	log.Println("Starting Rally MCP Server...")

	syncHandlers := handlers.NewSyncHandlers(app.Engine)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "rally",
		Version: "0.1.0",
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_conversations",
		Description: "List conversations from the local snapshot, optionally refreshing first",
	}, syncHandlers.ListConversations)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_campaigns",
		Description: "List campaigns from the local snapshot, with optional status filter",
	}, syncHandlers.ListCampaigns)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "delete_conversation",
		Description: "Delete a conversation and any campaign spawned from it",
	}, syncHandlers.DeleteConversation)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "delete_campaign",
		Description: "Delete a campaign and its source conversation",
	}, syncHandlers.DeleteCampaign)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "refresh",
		Description: "Fetch fresh data from the server for one or all collections",
	}, syncHandlers.Refresh)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_dashboard",
		Description: "Get aggregate stats and credit balance from the local snapshot",
	}, syncHandlers.GetDashboard)

	ctx := context.Background()
	return server.Run(ctx, &mcp.StdioTransport{})
}
