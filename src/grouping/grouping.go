// Package grouping partitions captured error records into groups of
// equivalent failures. Both the MCP server and the TUI consume this package
// so that dedup counts and ordering stay consistent.
package grouping

import (
	"faultline-agent/src/contracts"
	"faultline-agent/src/fingerprint"
)

// MessageGroup is an ordered run of records sharing one fingerprint. The
// slice is head-first: the most recently processed duplicate sits at index 0
// and is the group's representative for display and submission.
type MessageGroup struct {
	Key     fingerprint.Key
	Records []*contracts.ErrorRecord
}

// Head returns the group's representative record.
func (g *MessageGroup) Head() *contracts.ErrorRecord {
	return g.Records[0]
}

// Count returns how many duplicates the group holds.
func (g *MessageGroup) Count() int {
	return len(g.Records)
}

// GroupedView is an ordered sequence of groups, insertion-ordered by the
// first occurrence of each distinct fingerprint in the input.
type GroupedView struct {
	Groups []*MessageGroup
}

// Size returns the number of groups.
func (v *GroupedView) Size() int {
	if v == nil {
		return 0
	}
	return len(v.Groups)
}

// TotalRecords returns the number of records across all groups. Always equal
// to the length of the grouped input.
func (v *GroupedView) TotalRecords() int {
	total := 0
	for _, g := range v.Groups {
		total += len(g.Records)
	}
	return total
}

// Group partitions records by throwable-text fingerprint, preserving
// first-seen group order and prepending each record to its group so the
// newest duplicate becomes the head. Pure: re-running on the same input
// yields the same view.
func Group(records []*contracts.ErrorRecord, hasher *fingerprint.Hasher) *GroupedView {
	view := &GroupedView{}
	byKey := make(map[fingerprint.Key]*MessageGroup)

	for _, record := range records {
		key := hasher.Compute(record.Throwable.Text())
		group, ok := byKey[key]
		if !ok {
			group = &MessageGroup{Key: key}
			byKey[key] = group
			view.Groups = append(view.Groups, group)
		}
		// Newest duplicate becomes the head. Submission and read-state
		// always target the head, so the insertion position is load-bearing.
		group.Records = append([]*contracts.ErrorRecord{record}, group.Records...)
	}

	return view
}
