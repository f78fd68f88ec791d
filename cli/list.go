// ABOUTME: Conversation and campaign list CLI commands
// ABOUTME: Human-friendly tabular output over the local snapshot state
package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/rallyhq/rally/engine"
)

// ConversationsCommand lists conversations from the local snapshot.
func ConversationsCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("conversations", flag.ExitOnError)
	refresh := fs.Bool("refresh", false, "Fetch fresh data from the server first")
	limit := fs.Int("limit", 0, "Maximum results (default: all)")
	_ = fs.Parse(args)

	if *refresh {
		if err := app.Engine.RefreshNow(context.Background(), engine.TargetConversations); err != nil {
			return fmt.Errorf("refresh failed: %s", faultText(err))
		}
	}

	conversations := app.Engine.Conversations.List()
	if *limit > 0 && len(conversations) > *limit {
		conversations = conversations[:*limit]
	}

	if len(conversations) == 0 {
		fmt.Println("No conversations. Run with --refresh to fetch from the server.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tSTATUS\tCAMPAIGN")
	for _, conversation := range conversations {
		campaign := "-"
		if conversation.HasCampaign {
			campaign = "yes"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n",
			conversation.ID, conversation.Title, orDash(conversation.Status), campaign)
	}
	_ = w.Flush()

	fmt.Printf("\n%d conversation(s)\n", len(conversations))
	return nil
}

// CampaignsCommand lists campaigns from the local snapshot.
func CampaignsCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("campaigns", flag.ExitOnError)
	refresh := fs.Bool("refresh", false, "Fetch fresh data from the server first")
	status := fs.String("status", "", "Filter by status")
	_ = fs.Parse(args)

	if *refresh {
		if err := app.Engine.RefreshNow(context.Background(), engine.TargetCampaigns); err != nil {
			return fmt.Errorf("refresh failed: %s", faultText(err))
		}
	}

	campaigns := app.Engine.Campaigns.List()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSTATUS\tTONE\tCONVERSATION")
	count := 0
	for _, campaign := range campaigns {
		if *status != "" && campaign.Status != *status {
			continue
		}
		source := "-"
		if campaign.ConversationID != 0 {
			source = fmt.Sprintf("#%d", campaign.ConversationID)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
			campaign.ID, campaign.Name, orDash(campaign.Status), orDash(campaign.Tone), source)
		count++
	}
	_ = w.Flush()

	if count == 0 {
		fmt.Println("No campaigns. Run with --refresh to fetch from the server.")
		return nil
	}

	fmt.Printf("\n%d campaign(s)\n", count)
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
