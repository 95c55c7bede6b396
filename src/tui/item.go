package tui

import (
	"faultline-agent/src/contracts"
	"faultline-agent/src/grouping"
)

// Item wraps a message group for display in the group list and implements
// bubbles/list.Item.
type Item struct {
	Group *grouping.MessageGroup
	// Blame is the attribution line for the group head, precomputed so the
	// delegate doesn't re-resolve plugins on every render.
	Blame string
}

// FilterValue is the value used for fuzzy filtering.
func (i Item) FilterValue() string { return i.Head().Message }

// Title returns the primary text for the item (required by list.Item).
func (i Item) Title() string { return i.Head().Message }

// Description returns the secondary text for the item (required by list.Item).
func (i Item) Description() string { return i.Blame }

// Head returns the group's representative record.
func (i Item) Head() *contracts.ErrorRecord { return i.Group.Head() }

// Count returns the number of duplicates collapsed into this group.
func (i Item) Count() int { return i.Group.Count() }

// StateMark returns the single-character status column for the list row.
func (i Item) StateMark() string {
	head := i.Head()
	switch {
	case head.IsSubmitted():
		return "✓"
	case head.IsSubmitting():
		return "…"
	case !head.IsRead():
		return "●"
	default:
		return " "
	}
}
