package mcp

import (
	"time"

	"faultline-agent/src/contracts"
	"faultline-agent/src/grouping"
	"faultline-agent/src/triage"
)

// buildManifest renders the session's grouped view as a list manifest.
func buildManifest(session *triage.Session, includeRead bool) PoolManifest {
	view := session.View()
	manifest := PoolManifest{
		GroupCount:  view.Size(),
		RecordCount: view.TotalRecords(),
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
	}

	for _, group := range view.Groups {
		head := group.Head()
		if head.Throwable.Category == contracts.CategoryTooManyErrors {
			manifest.Overflow = true
		}
		if !includeRead && head.IsRead() {
			continue
		}
		manifest.Groups = append(manifest.Groups, GroupSummary{
			Key:       string(group.Key),
			Message:   head.Message,
			Count:     group.Count(),
			Blame:     session.Blame(head),
			Read:      head.IsRead(),
			Submitted: head.IsSubmitted(),
		})
	}

	return manifest
}

// selectGroup moves the session cursor to the group with the given key.
func selectGroup(session *triage.Session, key string) bool {
	for _, group := range session.View().Groups {
		if string(group.Key) == key {
			return session.Cursor().SelectRecord(group.Head())
		}
	}
	return false
}

// groupDetails renders one group with every occurrence expanded.
func groupDetails(session *triage.Session, key string) (GroupDetails, bool) {
	if !selectGroup(session, key) {
		return GroupDetails{}, false
	}

	group := session.SelectedGroup()
	details := GroupDetails{
		Key:   key,
		Blame: session.Blame(group.Head()),
		Info:  session.InfoLine(),
	}
	if notice, ok := session.ForeignPluginNotice(); ok {
		details.Notice = notice
	}
	details.Records = recordDetails(group)

	return details, true
}

func recordDetails(group *grouping.MessageGroup) []RecordDetails {
	records := make([]RecordDetails, 0, len(group.Records))
	for _, record := range group.Records {
		detail := RecordDetails{
			ID:             record.ID,
			Message:        record.Message,
			Trace:          record.Throwable.Text(),
			AdditionalInfo: record.AdditionalInfo,
		}
		if !record.Date.IsZero() {
			detail.Date = record.Date.UTC().Format(time.RFC3339)
		}
		records = append(records, detail)
	}
	return records
}
