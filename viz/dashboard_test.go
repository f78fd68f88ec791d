// ABOUTME: Tests for dashboard rendering
// ABOUTME: Verifies sections appear and empty states render cleanly
package viz

import (
	"strings"
	"testing"

	"github.com/rallyhq/rally/models"
)

func TestRenderDashboardEmpty(t *testing.T) {
	out := RenderDashboard(nil, nil, nil)
	if !strings.Contains(out, "RALLY CAMPAIGN DASHBOARD") {
		t.Error("expected header in empty dashboard")
	}
	if !strings.Contains(out, "No data yet") {
		t.Error("expected cold-start hint in empty dashboard")
	}
}

func TestRenderDashboardSections(t *testing.T) {
	stats := &models.DashboardStats{
		TotalConversations: 12,
		TotalCampaigns:     4,
		CampaignsByStatus: map[string]int{
			"draft":  3,
			"active": 1,
		},
	}
	credits := &models.Credits{Balance: 250, Plan: "pro"}
	recent := []models.Conversation{
		{ID: 1, Title: "Spring launch brainstorm", HasCampaign: true},
		{ID: 2, Title: "Q3 planning"},
	}

	out := RenderDashboard(stats, credits, recent)

	if !strings.Contains(out, "12 conversations") {
		t.Error("expected conversation count")
	}
	if !strings.Contains(out, "4 campaigns") {
		t.Error("expected campaign count")
	}
	if !strings.Contains(out, "250 remaining (pro plan)") {
		t.Error("expected credits line")
	}
	if !strings.Contains(out, "Spring launch brainstorm") {
		t.Error("expected recent conversation title")
	}
	if !strings.Contains(out, "draft") || !strings.Contains(out, "█") {
		t.Error("expected status bar chart")
	}
}

func TestRenderStatusBarsScaled(t *testing.T) {
	var out strings.Builder
	renderStatusBars(&out, map[string]int{"active": 10, "draft": 5})
	s := out.String()

	// Largest bucket fills the bar, smaller buckets scale down.
	if !strings.Contains(s, strings.Repeat("█", 10)) {
		t.Error("expected full bar for the largest status bucket")
	}
	if !strings.Contains(s, strings.Repeat("█", 5)+strings.Repeat("░", 5)) {
		t.Error("expected half bar for half-sized bucket")
	}
}
