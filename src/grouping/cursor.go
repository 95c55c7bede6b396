package grouping

import "faultline-agent/src/contracts"

// Cursor tracks the selected group within a GroupedView. It is only
// meaningful while the view it was created for is current: rebuilding the
// view requires a new cursor, re-resolved via SelectEarliestUnread.
//
// Over an empty view the cursor holds index 0 but Selected returns nil;
// movement is a no-op at either bound.
type Cursor struct {
	view  *GroupedView
	index int
}

// NewCursor returns a cursor positioned at the first group.
func NewCursor(view *GroupedView) *Cursor {
	return &Cursor{view: view}
}

// Index returns the current position.
func (c *Cursor) Index() int { return c.index }

// Selected returns the current group, or nil when the view is empty.
func (c *Cursor) Selected() *MessageGroup {
	if c.view == nil || c.index < 0 || c.index >= c.view.Size() {
		return nil
	}
	return c.view.Groups[c.index]
}

// SelectedRecord returns the head record of the current group, or nil.
func (c *Cursor) SelectedRecord() *contracts.ErrorRecord {
	group := c.Selected()
	if group == nil {
		return nil
	}
	return group.Head()
}

// CanMoveNext reports whether MoveNext would advance.
func (c *Cursor) CanMoveNext() bool {
	return c.index < c.view.Size()-1
}

// MoveNext advances the cursor; no-op at the last group.
func (c *Cursor) MoveNext() {
	if c.CanMoveNext() {
		c.index++
	}
}

// CanMovePrevious reports whether MovePrevious would retreat.
func (c *Cursor) CanMovePrevious() bool {
	return c.index > 0
}

// MovePrevious retreats the cursor; no-op at the first group.
func (c *Cursor) MovePrevious() {
	if c.CanMovePrevious() {
		c.index--
	}
}

// SelectEarliestUnread positions the cursor at the first group whose head is
// unread, or at index 0 when every head has been read.
func (c *Cursor) SelectEarliestUnread() {
	c.index = 0
	for i, group := range c.view.Groups {
		if !group.Head().IsRead() {
			c.index = i
			break
		}
	}
}

// SelectRecord positions the cursor at the group whose head is the given
// record (pointer identity). Returns false, leaving the cursor unchanged,
// when no group's head matches.
func (c *Cursor) SelectRecord(record *contracts.ErrorRecord) bool {
	for i, group := range c.view.Groups {
		if group.Head() == record {
			c.index = i
			return true
		}
	}
	return false
}
