package tui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	// listRenderingOverhead accounts for padding added by bubbles/list and
	// panel borders around each row.
	listRenderingOverhead = 10

	// keyColWidth is how much of the group fingerprint to show. The digest
	// renders as a long decimal, the leading digits are enough to eyeball.
	keyColWidth = 8
)

// Delegate renders grouped errors as table rows.
type Delegate struct {
	CountWidth int
	styles     *StyleConfig
}

// NewDelegate creates a new group table delegate with default styles
func NewDelegate() Delegate {
	return Delegate{
		CountWidth: 2,
		styles:     DefaultStyles(),
	}
}

// SetColumnWidths sizes the duplicate-count column to the largest group.
func (d *Delegate) SetColumnWidths(maxCount int) {
	d.CountWidth = len(fmt.Sprintf("%d", maxCount))
	if d.CountWidth < 2 {
		d.CountWidth = 2
	}
}

// Height returns the height of a list item
func (d Delegate) Height() int { return 1 }

// Spacing returns spacing between items
func (d Delegate) Spacing() int { return 0 }

// Update handles item updates
func (d Delegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

// Render renders a list item
func (d Delegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	entry, ok := item.(Item)
	if !ok {
		return
	}

	isSelected := index == m.Index()

	countFmt := fmt.Sprintf("%%%dd", d.CountWidth)
	stateCol := entry.StateMark()
	countCol := fmt.Sprintf(countFmt, entry.Count())
	keyCol := TruncateAndPad(string(entry.Group.Key), keyColWidth, false)

	// Fixed columns: state (1) + count + key + separators (9)
	fixedWidth := 1 + d.CountWidth + keyColWidth + 9
	availableWidth := m.Width() - fixedWidth - listRenderingOverhead

	var snippet string
	if availableWidth > 0 {
		snippet = TruncateAndPad(entry.Head().Message, availableWidth, true)
	}

	line := fmt.Sprintf("%s │ %s │ %s │ %s", stateCol, countCol, keyCol, snippet)

	style := lipgloss.NewStyle().Foreground(d.styles.TextSecondary)
	if !entry.Head().IsRead() {
		style = style.Foreground(d.styles.TextPrimary)
	}
	if isSelected {
		style = style.Bold(true).Foreground(d.styles.PrimaryBlue).Background(d.styles.SelectedColor)
	}

	fmt.Fprint(w, style.Render(line))
}
