// ABOUTME: Terminal User Interface using bubbletea framework
// ABOUTME: Interactive full-screen view over the local snapshot state
package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rallyhq/rally/engine"
)

// ViewMode represents the current TUI view
type ViewMode int

const (
	ViewList ViewMode = iota
	ViewDetail
	ViewConfirmDelete
)

// Tab selects which collection the list view shows
type Tab int

const (
	TabConversations Tab = iota
	TabCampaigns
)

const tickPeriod = 2 * time.Second

// invalidateMsg arrives when another part of the app changes local state
type invalidateMsg struct{ event engine.Event }

type tickMsg time.Time

// deleteDoneMsg carries the outcome of a confirmed delete
type deleteDoneMsg struct{ err error }

// Model is the main bubbletea model
type Model struct {
	engine *engine.SyncEngine
	focus  chan<- struct{}

	viewMode ViewMode
	tab      Tab

	selectedRow int
	selectedID  int

	deleteMessage string

	events      <-chan engine.Event
	unsubscribe func()

	width  int
	height int
}

// NewModel creates a new TUI model. The focus channel wakes the sync
// scheduler when the terminal regains focus; pass nil to disable.
func NewModel(e *engine.SyncEngine, focus chan<- struct{}) Model {
	events, unsubscribe := e.Bus.Subscribe()
	return Model{
		engine:      e,
		focus:       focus,
		viewMode:    ViewList,
		tab:         TabConversations,
		events:      events,
		unsubscribe: unsubscribe,
		width:       80,
		height:      24,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.waitForInvalidation(), tick())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tea.FocusMsg:
		m.notifyFocus()
		return m, nil
	case invalidateMsg:
		m.clampSelection()
		return m, m.waitForInvalidation()
	case tickMsg:
		return m, tick()
	case deleteDoneMsg:
		if msg.err != nil {
			m.deleteMessage = "Delete failed: " + deleteFailureText(msg.err)
		} else {
			m.deleteMessage = "Deleted"
		}
		m.viewMode = ViewList
		m.selectedID = 0
		m.clampSelection()
		return m, nil
	}
	return m, nil
}

func (m Model) View() string {
	switch m.viewMode {
	case ViewList:
		return m.renderListView()
	case ViewDetail:
		return m.renderDetailView()
	case ViewConfirmDelete:
		return m.renderConfirmDeleteView()
	}
	return ""
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.unsubscribe()
		return m, tea.Quit
	case "r":
		m.engine.Scheduler.KickAll()
		return m, nil
	}

	switch m.viewMode {
	case ViewList:
		return m.handleListKeys(msg)
	case ViewDetail:
		return m.handleDetailKeys(msg)
	case ViewConfirmDelete:
		return m.handleConfirmDeleteKeys(msg)
	}

	return m, nil
}

// waitForInvalidation re-renders when local state changes under us
func (m Model) waitForInvalidation() tea.Cmd {
	return func() tea.Msg {
		event, ok := <-m.events
		if !ok {
			return nil
		}
		return invalidateMsg{event: event}
	}
}

func tick() tea.Cmd {
	return tea.Tick(tickPeriod, func(at time.Time) tea.Msg {
		return tickMsg(at)
	})
}

func (m Model) notifyFocus() {
	if m.focus == nil {
		return
	}
	select {
	case m.focus <- struct{}{}:
	default:
	}
}

func (m *Model) clampSelection() {
	rows := m.rowCount()
	if rows == 0 {
		m.selectedRow = 0
		return
	}
	if m.selectedRow >= rows {
		m.selectedRow = rows - 1
	}
}

func (m Model) rowCount() int {
	switch m.tab {
	case TabConversations:
		return m.engine.Conversations.Len()
	case TabCampaigns:
		return m.engine.Campaigns.Len()
	}
	return 0
}

func (m Model) performDelete() tea.Cmd {
	id := m.selectedID
	tab := m.tab
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		var err error
		switch tab {
		case TabConversations:
			err = m.engine.Deletes.DeleteConversation(ctx, id)
		case TabCampaigns:
			err = m.engine.Deletes.DeleteCampaign(ctx, id)
		}
		return deleteDoneMsg{err: err}
	}
}

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			MarginBottom(1)

	tabActiveStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			Background(lipgloss.Color("235")).
			Padding(0, 2)

	tabInactiveStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240")).
				Padding(0, 2)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			MarginTop(1)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("114"))

	sidebarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			PaddingRight(1).
			MarginRight(2).
			Width(24).
			Border(lipgloss.NormalBorder(), false, true, false, false).
			BorderForeground(lipgloss.Color("240"))

	sidebarHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("170"))
)
