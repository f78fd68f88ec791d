package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	fieldLabelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			Width(16)

	fieldValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))
)

func (m Model) renderDetailView() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("DETAIL VIEW"))
	s.WriteString("\n\n")

	switch m.tab {
	case TabConversations:
		s.WriteString(m.renderConversationDetail())
	case TabCampaigns:
		s.WriteString(m.renderCampaignDetail())
	}

	s.WriteString("\n\n")
	s.WriteString(m.renderDetailHelp())

	return s.String()
}

func (m Model) renderConversationDetail() string {
	conversation, ok := m.engine.Conversations.Get(m.selectedID)
	if !ok {
		return "Conversation no longer present locally."
	}

	var s strings.Builder

	s.WriteString(m.renderField("Title", conversation.Title))
	s.WriteString(m.renderField("Status", conversation.Status))
	s.WriteString(m.renderField("Tone", conversation.Tone))

	if conversation.HasCampaign {
		s.WriteString(m.renderField("Campaign", "yes"))
		for _, campaign := range m.engine.Campaigns.List() {
			if campaign.ConversationID == conversation.ID {
				s.WriteString(m.renderField("", "  ↳ "+campaign.Name))
				break
			}
		}
	}

	if conversation.UpdatedAt != nil {
		s.WriteString(m.renderField("Updated", conversation.UpdatedAt.Format("2006-01-02 15:04")))
	}

	return s.String()
}

func (m Model) renderCampaignDetail() string {
	campaign, ok := m.engine.Campaigns.Get(m.selectedID)
	if !ok {
		return "Campaign no longer present locally."
	}

	var s strings.Builder

	s.WriteString(m.renderField("Name", campaign.Name))
	s.WriteString(m.renderField("Status", campaign.Status))
	s.WriteString(m.renderField("Tone", campaign.Tone))

	if campaign.ConversationID != 0 {
		source := fmt.Sprintf("#%d", campaign.ConversationID)
		if conversation, ok := m.engine.Conversations.Get(campaign.ConversationID); ok {
			source = conversation.Title
		}
		s.WriteString(m.renderField("Source", source))
	}

	if campaign.UpdatedAt != nil {
		s.WriteString(m.renderField("Updated", campaign.UpdatedAt.Format("2006-01-02 15:04")))
	}

	return s.String()
}

func (m Model) renderField(label, value string) string {
	if value == "" {
		value = "-"
	}
	if label == "" {
		return fieldValueStyle.Render(value) + "\n"
	}
	return fmt.Sprintf("%s %s\n",
		fieldLabelStyle.Render(label+":"),
		fieldValueStyle.Render(value))
}

func (m Model) renderDetailHelp() string {
	help := []string{
		"Esc: Back",
		"d: Delete",
		"r: Refresh",
		"q: Quit",
	}
	return helpStyle.Render(strings.Join(help, " • "))
}

func (m Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.viewMode = ViewList
	case "d":
		m.viewMode = ViewConfirmDelete
	}

	return m, nil
}
