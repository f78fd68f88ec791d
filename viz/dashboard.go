// ABOUTME: Terminal dashboard rendering from snapshot data
// ABOUTME: Provides ASCII overview of campaigns, conversations, and credits
package viz

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rallyhq/rally/models"
)

// RenderDashboard renders the aggregate overview. Any of the inputs may be
// absent (nil / empty) on a cold start; the dashboard renders what it has.
func RenderDashboard(stats *models.DashboardStats, credits *models.Credits, recent []models.Conversation) string {
	var out strings.Builder

	// Header
	out.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
	out.WriteString("  RALLY CAMPAIGN DASHBOARD\n")
	out.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n")

	if stats == nil && credits == nil && len(recent) == 0 {
		out.WriteString("No data yet. Run 'rally refresh' to fetch from the server.\n")
		return out.String()
	}

	if stats != nil {
		out.WriteString("OVERVIEW\n")
		out.WriteString(fmt.Sprintf("  💬 %d conversations  📣 %d campaigns\n\n",
			stats.TotalConversations, stats.TotalCampaigns))

		if len(stats.CampaignsByStatus) > 0 {
			out.WriteString("CAMPAIGNS BY STATUS\n")
			renderStatusBars(&out, stats.CampaignsByStatus)
			out.WriteString("\n")
		}
	}

	if credits != nil {
		out.WriteString("CREDITS\n")
		if credits.Plan != "" {
			out.WriteString(fmt.Sprintf("  ⚡ %d remaining (%s plan)\n\n", credits.Balance, credits.Plan))
		} else {
			out.WriteString(fmt.Sprintf("  ⚡ %d remaining\n\n", credits.Balance))
		}
	}

	if len(recent) > 0 {
		out.WriteString("RECENT CONVERSATIONS\n")
		max := len(recent)
		if max > 5 {
			max = 5
		}
		for _, conversation := range recent[:max] {
			marker := " "
			if conversation.HasCampaign {
				marker = "📣"
			}
			out.WriteString(fmt.Sprintf("  %s %s\n", marker, conversation.Title))
		}
	}

	return out.String()
}

func renderStatusBars(out *strings.Builder, byStatus map[string]int) {
	statuses := make([]string, 0, len(byStatus))
	maxCount := 0
	for status, count := range byStatus {
		statuses = append(statuses, status)
		if count > maxCount {
			maxCount = count
		}
	}
	sort.Strings(statuses)
	if maxCount == 0 {
		maxCount = 1
	}

	for _, status := range statuses {
		count := byStatus[status]

		// Calculate bar length (0-10 blocks)
		barLength := (count * 10) / maxCount
		bar := strings.Repeat("█", barLength) + strings.Repeat("░", 10-barLength)

		out.WriteString(fmt.Sprintf("  %-12s %s  %2d\n", status, bar, count))
	}
}
