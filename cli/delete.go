// ABOUTME: Delete CLI commands with confirmation
// ABOUTME: Runs the cross-entity delete flow and reports classified failures
package cli

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rallyhq/rally/api"
	"github.com/rallyhq/rally/engine"
)

// faultText renders an error for the terminal, preferring the classified
// user-facing message over the raw error chain.
func faultText(err error) string {
	if errors.Is(err, engine.ErrDeleteInFlight) {
		return "a delete for this entity is already in progress"
	}
	var fault *api.Fault
	if errors.As(err, &fault) {
		return fault.Message()
	}
	return err.Error()
}

// DeleteConversationCommand deletes a conversation and any campaign
// spawned from it.
func DeleteConversationCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("delete-conversation", flag.ExitOnError)
	yes := fs.Bool("yes", false, "Skip confirmation prompt")
	_ = fs.Parse(args)

	id, err := parseID(fs.Args(), "conversation")
	if err != nil {
		return err
	}

	name := fmt.Sprintf("conversation #%d", id)
	if conversation, ok := app.Engine.Conversations.Get(id); ok {
		name = fmt.Sprintf("conversation %q", conversation.Title)
	}

	if !*yes && !confirm(fmt.Sprintf("Delete %s and any linked campaign?", name)) {
		fmt.Println("Cancelled.")
		return nil
	}

	if err := app.Engine.Deletes.DeleteConversation(context.Background(), id); err != nil {
		return fmt.Errorf("delete failed: %s", faultText(err))
	}

	fmt.Printf("✓ Deleted %s\n", name)
	return nil
}

// DeleteCampaignCommand deletes a campaign and its source conversation.
func DeleteCampaignCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("delete-campaign", flag.ExitOnError)
	yes := fs.Bool("yes", false, "Skip confirmation prompt")
	_ = fs.Parse(args)

	id, err := parseID(fs.Args(), "campaign")
	if err != nil {
		return err
	}

	name := fmt.Sprintf("campaign #%d", id)
	if campaign, ok := app.Engine.Campaigns.Get(id); ok {
		name = fmt.Sprintf("campaign %q", campaign.Name)
	}

	if !*yes && !confirm(fmt.Sprintf("Delete %s and its source conversation?", name)) {
		fmt.Println("Cancelled.")
		return nil
	}

	if err := app.Engine.Deletes.DeleteCampaign(context.Background(), id); err != nil {
		return fmt.Errorf("delete failed: %s", faultText(err))
	}

	fmt.Printf("✓ Deleted %s\n", name)
	return nil
}

func parseID(args []string, kind string) (int, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("%s ID is required", kind)
	}
	id, err := strconv.Atoi(args[0])
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s ID: %s", kind, args[0])
	}
	return id, nil
}

func confirm(prompt string) bool {
	fmt.Printf("%s [y/N]: ", prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
