package tui

import (
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
)

// View manages the list of error groups.
type View struct {
	list     list.Model
	items    []Item
	delegate *Delegate
}

// NewView creates a new group list view
func NewView() View {
	delegate := NewDelegate()
	l := list.New([]list.Item{}, &delegate, 0, 0)
	l.SetShowStatusBar(false)
	l.SetShowTitle(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)

	return View{
		list:     l,
		items:    []Item{},
		delegate: &delegate,
	}
}

// Update handles group list updates
func (v View) Update(msg tea.Msg) (View, tea.Cmd) {
	var cmd tea.Cmd
	v.list, cmd = v.list.Update(msg)
	return v, cmd
}

// SetSize sets the list dimensions
func (v *View) SetSize(width, height int) {
	v.list.SetSize(width, height)
}

// SetItems replaces the list contents and resizes the count column.
func (v *View) SetItems(items []Item) {
	v.items = items

	maxCount := 0
	for _, item := range items {
		if c := item.Count(); c > maxCount {
			maxCount = c
		}
	}
	v.delegate.SetColumnWidths(maxCount)

	listItems := make([]list.Item, len(items))
	for i, item := range items {
		listItems[i] = item
	}
	v.list.SetItems(listItems)
}

// Select moves the list selection to the given index.
func (v *View) Select(index int) {
	if index >= 0 && index < len(v.items) {
		v.list.Select(index)
	}
}

// Index returns the current list selection index.
func (v View) Index() int {
	return v.list.Index()
}

// SelectedItem returns the currently selected group item
func (v View) SelectedItem() (Item, bool) {
	if len(v.list.Items()) == 0 {
		return Item{}, false
	}
	return v.list.SelectedItem().(Item), true
}

// Render returns the string representation of the view
func (v View) Render() string {
	return v.list.View()
}

// Delegate returns the delegate for accessing column widths
func (v View) Delegate() *Delegate {
	return v.delegate
}
