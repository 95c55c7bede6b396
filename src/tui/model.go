// Package tui provides the terminal interface for reviewing the error pool:
// a group list on the left, the selected group's details on the right, and
// submission driven from the keyboard.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"faultline-agent/src/contracts"
	"faultline-agent/src/triage"
)

// submissionDoneMsg carries a completed submission back onto the program
// loop. The submitter's callback fires on a worker goroutine; the program
// only touches the session after this message arrives.
type submissionDoneMsg struct {
	record *contracts.ErrorRecord
	info   contracts.SubmittedReportInfo
}

// Model is the Bubble Tea model for the error review screen.
type Model struct {
	session *triage.Session

	listView       View
	detailViewport viewport.Model
	styles         *StyleConfig

	width         int
	height        int
	ready         bool
	detailFocused bool
	statusFlash   string
}

// NewModel builds the review screen over an existing session. The session
// must not be shared with another goroutine while the program runs.
func NewModel(session *triage.Session) Model {
	m := Model{
		session:  session,
		listView: NewView(),
		styles:   DefaultStyles(),
	}
	m.refreshItems()
	return m
}

// Init initializes the model. Required by tea.Model interface.
func (m Model) Init() tea.Cmd {
	return nil
}

// refreshItems rebuilds the list rows from the session's grouped view and
// re-syncs the list selection with the cursor.
func (m *Model) refreshItems() {
	view := m.session.View()
	items := make([]Item, 0, view.Size())
	for _, group := range view.Groups {
		items = append(items, Item{
			Group: group,
			Blame: m.session.Blame(group.Head()),
		})
	}
	m.listView.SetItems(items)
	m.listView.Select(m.session.Cursor().Index())
	m.updateDetailContent()
}

// syncCursor follows the list selection with the session cursor. The list
// owns up/down handling; the cursor is the source of truth for everything
// else (submission, detail text, the count line).
func (m *Model) syncCursor() {
	item, ok := m.listView.SelectedItem()
	if !ok {
		return
	}
	if m.session.Selected() != item.Head() {
		m.session.Cursor().SelectRecord(item.Head())
		m.detailViewport.GotoTop()
		m.updateDetailContent()
	}
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.resizeComponents()
		return m, nil

	case poolChangedMsg:
		m.session.Rebuild()
		m.refreshItems()
		return m, nil

	case submissionDoneMsg:
		m.session.ApplySubmission(msg.record, msg.info)
		var b strings.Builder
		triage.AppendSubmissionInfo(msg.record.SubmissionInfo(), &b)
		m.statusFlash = b.String()
		m.refreshItems()
		return m, nil

	case tea.KeyMsg:
		m.statusFlash = ""
		switch msg.String() {
		case "q", "ctrl+c":
			m.session.Close()
			return m, tea.Quit

		case "tab", "enter":
			m.detailFocused = !m.detailFocused
			return m, nil

		case "esc":
			m.detailFocused = false
			return m, nil

		case "r":
			m.session.MarkSelectedRead()
			m.refreshItems()
			return m, nil

		case "R":
			for _, group := range m.session.View().Groups {
				for _, record := range group.Records {
					record.SetRead(true)
				}
			}
			m.refreshItems()
			return m, nil

		case "s":
			cmd := m.submitSelected()
			return m, cmd

		case "C":
			m.session.ClearAll()
			m.session.Rebuild()
			m.refreshItems()
			return m, nil
		}

		if m.detailFocused {
			var cmd tea.Cmd
			m.detailViewport, cmd = m.detailViewport.Update(msg)
			return m, cmd
		}

		var cmd tea.Cmd
		m.listView, cmd = m.listView.Update(msg)
		m.syncCursor()
		return m, cmd
	}

	return m, nil
}

// submitSelected kicks off submission of the selected group and returns a
// command that waits for the result.
func (m *Model) submitSelected() tea.Cmd {
	if !m.session.CanSubmitSelected() {
		if notice, ok := m.session.ForeignPluginNotice(); ok {
			m.statusFlash = notice
		}
		return nil
	}

	done := make(chan submissionDoneMsg, 1)
	started := m.session.SubmitSelected(context.Background(), func(record *contracts.ErrorRecord, info contracts.SubmittedReportInfo) {
		done <- submissionDoneMsg{record: record, info: info}
	})
	if !started {
		return nil
	}
	m.refreshItems()
	return func() tea.Msg { return <-done }
}

// updateDetailContent fills the viewport with the selected group's details.
func (m *Model) updateDetailContent() {
	maxWidth := m.detailViewport.Width - 2
	if maxWidth <= 0 {
		maxWidth = 78
	}

	details := m.session.DetailsText()
	if details == "" {
		m.detailViewport.SetContent("")
		return
	}

	var content strings.Builder
	for _, line := range strings.Split(details, "\n") {
		if VisualWidth(line) > maxWidth {
			line = Wrap(line, maxWidth)
		}
		content.WriteString(line)
		content.WriteString("\n")
	}
	m.detailViewport.SetContent(content.String())
}

// panelDimensions holds calculated layout dimensions
type panelDimensions struct {
	availableHeight int
	leftPanelWidth  int
	rightPanelWidth int
}

// calculateDimensions computes panel sizes based on terminal dimensions.
func (m Model) calculateDimensions() panelDimensions {
	// Account for: title (1) + status line (1) + help line (1) + panel
	// column header row (1) + panel borders (2)
	availableHeight := m.height - 6

	// Two-panel layout: group list (40%) | details (60%)
	leftPanelWidth := int(float64(m.width) * 0.4)
	rightPanelWidth := m.width - leftPanelWidth

	return panelDimensions{
		availableHeight: availableHeight,
		leftPanelWidth:  leftPanelWidth,
		rightPanelWidth: rightPanelWidth,
	}
}

// resizeComponents handles window resize events
func (m *Model) resizeComponents() {
	dims := m.calculateDimensions()

	m.listView.SetSize(dims.leftPanelWidth-2, dims.availableHeight)

	m.detailViewport.Width = dims.rightPanelWidth - 2
	m.detailViewport.Height = dims.availableHeight - 1

	m.updateDetailContent()
}

// View renders the complete layout.
func (m Model) View() string {
	if !m.ready {
		return "\n  Initializing..."
	}

	if m.session.View().Size() == 0 {
		return "No errors in the pool.\n\nPress q to quit.\n"
	}

	title := m.renderTitle()
	dims := m.calculateDimensions()

	leftPanel := m.renderListPanel(dims.leftPanelWidth, dims.availableHeight)
	rightPanel := m.renderDetailPanel(dims.rightPanelWidth, dims.availableHeight)
	mainContent := lipgloss.JoinHorizontal(lipgloss.Top, leftPanel, rightPanel)

	status := m.renderStatusLine()
	help := m.renderHelpText()

	return lipgloss.JoinVertical(lipgloss.Left, title, mainContent, status, help)
}

// renderTitle renders the top line with the group count.
func (m Model) renderTitle() string {
	title := "Faultline - Error Report Triage"
	if position, total, ok := m.session.GroupPosition(); ok {
		title = fmt.Sprintf("%s  %d of %d", title, position, total)
	}
	return m.styles.TitleStyle().Render(title)
}

// renderStatusLine renders the blame/state line for the selected group, or
// the latest submission result.
func (m Model) renderStatusLine() string {
	if m.statusFlash != "" {
		return m.styles.NoticeStyle().Render(Truncate(m.statusFlash, m.width-2, true))
	}
	line := m.session.InfoLine()
	if notice, ok := m.session.ForeignPluginNotice(); ok {
		line = line + " " + notice
	}
	return m.styles.StatusStyle().Render(Truncate(line, m.width-2, true))
}

// renderHelpText renders context-aware help text at the bottom
func (m Model) renderHelpText() string {
	keyStyle := lipgloss.NewStyle().Foreground(m.styles.PrimaryBlue).Bold(true)
	sepStyle := lipgloss.NewStyle().Foreground(m.styles.TextSecondary)

	var helpText string
	if m.detailFocused {
		helpText = fmt.Sprintf("%s: Scroll %s %s: Back %s %s: Quit",
			keyStyle.Render("j/k"), sepStyle.Render("•"),
			keyStyle.Render("Esc"), sepStyle.Render("•"),
			keyStyle.Render("q"))
	} else {
		helpText = fmt.Sprintf("%s: Nav %s %s: Submit %s %s: Read %s %s: Clear %s %s: Details %s %s: Quit",
			keyStyle.Render("j/k"), sepStyle.Render("•"),
			keyStyle.Render("s"), sepStyle.Render("•"),
			keyStyle.Render("r"), sepStyle.Render("•"),
			keyStyle.Render("C"), sepStyle.Render("•"),
			keyStyle.Render("Tab"), sepStyle.Render("•"),
			keyStyle.Render("q"))
	}

	return m.styles.HelpStyle().Render(helpText)
}

// renderListPanel renders the left panel with the group list
func (m Model) renderListPanel(width, height int) string {
	listPanel := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.styles.BorderColor).
		Width(width - 2).
		Height(height).
		Render(m.listView.Render())

	delegate := m.listView.Delegate()
	countHeader := fmt.Sprintf("%*s", delegate.CountWidth, "Ct")
	headerText := fmt.Sprintf("S │ %s │ %-*s │ Message", countHeader, keyColWidth, "Key")
	truncatedHeaderText := Truncate(headerText, width-4, true)
	headerRow := lipgloss.NewStyle().
		Foreground(m.styles.PrimaryBlue).
		Bold(true).
		Width(width-2).
		Padding(0, 1).
		Render(truncatedHeaderText)

	return lipgloss.JoinVertical(lipgloss.Left, headerRow, listPanel)
}

// renderDetailPanel renders the right panel with the details viewport
func (m Model) renderDetailPanel(width, height int) string {
	item, ok := m.listView.SelectedItem()
	if !ok {
		emptyStyle := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(m.styles.BorderColor).
			Width(width).
			Height(height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(m.styles.TextSecondary).
			Faint(true)
		return lipgloss.JoinVertical(lipgloss.Left, " ", emptyStyle.Render("Navigate the list to view details"))
	}

	headerRow := lipgloss.NewStyle().
		Foreground(m.styles.PrimaryBlue).
		Bold(true).
		Padding(0, 1).
		Render(Truncate(item.Blame, width-2, true))

	borderStyle := m.styles.BorderColor
	if m.detailFocused {
		borderStyle = m.styles.AccentBlue
	}

	return lipgloss.JoinVertical(lipgloss.Left, headerRow,
		lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(borderStyle).
			Width(width).
			Height(height).
			Render(m.detailViewport.View()))
}
