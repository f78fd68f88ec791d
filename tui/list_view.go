package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

func (m Model) renderListView() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("RALLY"))
	s.WriteString("\n\n")

	main := lipgloss.JoinVertical(
		lipgloss.Left,
		m.renderTabs(),
		"",
		m.renderTable(),
	)
	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, m.renderSidebar(), main))
	s.WriteString("\n\n")

	if m.deleteMessage != "" {
		s.WriteString(statusStyle.Render(m.deleteMessage))
		s.WriteString("\n")
	}

	s.WriteString(m.renderListHelp())

	return s.String()
}

// renderSidebar shows the persistent recent-conversations pane next to
// whichever tab is active.
func (m Model) renderSidebar() string {
	var s strings.Builder

	s.WriteString(sidebarHeaderStyle.Render("RECENT"))
	s.WriteString("\n")

	conversations := m.engine.Sidebar.List()
	if len(conversations) == 0 {
		s.WriteString("(no conversations)")
	}
	for _, conversation := range conversations {
		marker := " "
		if conversation.HasCampaign {
			marker = "●"
		}
		s.WriteString(fmt.Sprintf("%s %s\n", marker, truncate(conversation.Title, 20)))
	}

	return sidebarStyle.Render(s.String())
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}

func (m Model) renderTabs() string {
	tabs := []string{"Conversations", "Campaigns"}
	var rendered []string

	for i, tab := range tabs {
		if Tab(i) == m.tab {
			rendered = append(rendered, tabActiveStyle.Render(tab))
		} else {
			rendered = append(rendered, tabInactiveStyle.Render(tab))
		}
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (m Model) renderTable() string {
	switch m.tab {
	case TabConversations:
		return m.renderConversationsTable()
	case TabCampaigns:
		return m.renderCampaignsTable()
	}
	return ""
}

func (m Model) renderConversationsTable() string {
	conversations := m.engine.Conversations.List()

	columns := []table.Column{
		{Title: "Title", Width: 40},
		{Title: "Status", Width: 12},
		{Title: "Campaign", Width: 10},
	}

	var rows []table.Row
	for _, conversation := range conversations {
		campaign := ""
		if conversation.HasCampaign {
			campaign = "yes"
		}
		rows = append(rows, table.Row{
			conversation.Title,
			conversation.Status,
			campaign,
		})
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(m.tableHeight()),
	)

	if m.selectedRow < len(rows) {
		t.SetCursor(m.selectedRow)
	}

	return t.View()
}

func (m Model) renderCampaignsTable() string {
	campaigns := m.engine.Campaigns.List()

	columns := []table.Column{
		{Title: "Name", Width: 35},
		{Title: "Status", Width: 12},
		{Title: "Tone", Width: 12},
	}

	var rows []table.Row
	for _, campaign := range campaigns {
		rows = append(rows, table.Row{
			campaign.Name,
			campaign.Status,
			campaign.Tone,
		})
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(m.tableHeight()),
	)

	if m.selectedRow < len(rows) {
		t.SetCursor(m.selectedRow)
	}

	return t.View()
}

func (m Model) tableHeight() int {
	h := m.height - 10
	if h < 3 {
		h = 3
	}
	return h
}

func (m Model) renderListHelp() string {
	help := []string{
		"↑/↓: Navigate",
		"Tab: Switch tabs",
		"Enter: View details",
		"d: Delete",
		"r: Refresh",
		"q: Quit",
	}
	return helpStyle.Render(strings.Join(help, " • "))
}

func (m Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.selectedRow > 0 {
			m.selectedRow--
		}
	case "down", "j":
		if m.selectedRow < m.rowCount()-1 {
			m.selectedRow++
		}
	case "tab":
		m.tab = (m.tab + 1) % 2
		m.selectedRow = 0
		m.deleteMessage = ""
	case "enter":
		if id, ok := m.getSelectedID(); ok {
			m.viewMode = ViewDetail
			m.selectedID = id
			m.deleteMessage = ""
		}
	case "d":
		if id, ok := m.getSelectedID(); ok {
			m.viewMode = ViewConfirmDelete
			m.selectedID = id
			m.deleteMessage = ""
		}
	}

	return m, nil
}

func (m Model) getSelectedID() (int, bool) {
	switch m.tab {
	case TabConversations:
		conversations := m.engine.Conversations.List()
		if m.selectedRow < len(conversations) {
			return conversations[m.selectedRow].ID, true
		}
	case TabCampaigns:
		campaigns := m.engine.Campaigns.List()
		if m.selectedRow < len(campaigns) {
			return campaigns[m.selectedRow].ID, true
		}
	}
	return 0, false
}

// entityLabel names the selected entity for dialogs and errors
func (m Model) entityLabel() (kind, name string) {
	switch m.tab {
	case TabConversations:
		kind = "conversation"
		if conversation, ok := m.engine.Conversations.Get(m.selectedID); ok {
			name = conversation.Title
		}
	case TabCampaigns:
		kind = "campaign"
		if campaign, ok := m.engine.Campaigns.Get(m.selectedID); ok {
			name = campaign.Name
		}
	}
	if name == "" {
		name = fmt.Sprintf("#%d", m.selectedID)
	}
	return kind, name
}
