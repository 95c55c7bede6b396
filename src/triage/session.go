// Package triage coordinates a review pass over the error pool: it owns the
// grouped view, the selection cursor, and record state changes.
//
// A Session is confined to one goroutine (the TUI program loop or an MCP
// handler). Pool listener callbacks and submission completions arrive on
// other goroutines; owners marshal them onto their own loop and then call
// Rebuild or ApplySubmission there.
package triage

import (
	"context"
	"fmt"
	"time"

	"faultline-agent/src/attribution"
	"faultline-agent/src/capture"
	"faultline-agent/src/contracts"
	"faultline-agent/src/fingerprint"
	"faultline-agent/src/grouping"
	"faultline-agent/src/logger"
	"faultline-agent/src/pool"
	"faultline-agent/src/submit"
)

// Session is one triage pass over the pool.
type Session struct {
	pool       pool.Pool
	hasher     *fingerprint.Hasher
	resolver   *attribution.Resolver
	plugins    contracts.PluginRegistry
	submitters *submit.Registry
	log        logger.Logger
	announce   *capture.Publisher

	raw    []*contracts.ErrorRecord
	view   *grouping.GroupedView
	cursor *grouping.Cursor

	// mute suppresses field-change side effects while the owner batch-loads
	// display fields from the selected record.
	mute bool
}

// NewSession builds a session over the pool's current contents. When
// defaultRecord is non-nil and heads a group, the cursor starts there;
// otherwise it starts at the earliest unread group.
func NewSession(p pool.Pool, hasher *fingerprint.Hasher, resolver *attribution.Resolver, plugins contracts.PluginRegistry, submitters *submit.Registry, log logger.Logger, defaultRecord *contracts.ErrorRecord) *Session {
	s := &Session{
		pool:       p,
		hasher:     hasher,
		resolver:   resolver,
		plugins:    plugins,
		submitters: submitters,
		log:        log,
	}
	s.Rebuild()
	if defaultRecord == nil || !s.cursor.SelectRecord(defaultRecord) {
		s.cursor.SelectEarliestUnread()
	}
	return s
}

// Rebuild snapshots the pool, regroups, and re-resolves the cursor. Any
// previously held cursor position is invalid after this call.
func (s *Session) Rebuild() {
	s.raw = s.pool.FatalErrors(true, true)
	s.view = grouping.Group(s.raw, s.hasher)
	s.cursor = grouping.NewCursor(s.view)
	s.cursor.SelectEarliestUnread()
}

// Pool returns the pool this session snapshots from, for owners that
// register pool listeners around the session's lifetime.
func (s *Session) Pool() pool.Pool { return s.pool }

// SetAnnouncer installs a publisher for completed submissions. In
// distributed mode the outcome is broadcast so other agents stop
// resurfacing the same group; nil disables broadcasting.
func (s *Session) SetAnnouncer(p *capture.Publisher) {
	s.announce = p
}

// View returns the current grouped view.
func (s *Session) View() *grouping.GroupedView { return s.view }

// Cursor returns the selection cursor.
func (s *Session) Cursor() *grouping.Cursor { return s.cursor }

// Selected returns the head record of the selected group, or nil when the
// pool is empty.
func (s *Session) Selected() *contracts.ErrorRecord { return s.cursor.SelectedRecord() }

// SelectedGroup returns the selected group, or nil when the pool is empty.
func (s *Session) SelectedGroup() *grouping.MessageGroup { return s.cursor.Selected() }

// Suppressed runs fn with change notifications muted, restoring them
// unconditionally afterward. Used while batch-updating display fields so
// listeners don't write the values straight back onto the record.
func (s *Session) Suppressed(fn func()) {
	s.mute = true
	defer func() { s.mute = false }()
	fn()
}

// Muted reports whether a Suppressed scope is active.
func (s *Session) Muted() bool { return s.mute }

// SetAdditionalInfo stores the operator's comment on the selected record.
// Dropped inside a Suppressed scope.
func (s *Session) SetAdditionalInfo(text string) {
	if s.mute {
		return
	}
	if record := s.Selected(); record != nil {
		record.AdditionalInfo = text
	}
}

// SetAssignee stores the assignee on the selected record. Dropped inside a
// Suppressed scope.
func (s *Session) SetAssignee(id string) {
	if s.mute {
		return
	}
	if record := s.Selected(); record != nil {
		record.AssigneeID = id
	}
}

// MarkSelectedRead flags the selected group's head read.
func (s *Session) MarkSelectedRead() {
	if record := s.Selected(); record != nil {
		record.SetRead(true)
	}
}

// ClearAll empties the pool. The session must be rebuilt (or closed) after.
func (s *Session) ClearAll() {
	s.pool.ClearFatals()
}

// Close marks every snapshotted record read.
func (s *Session) Close() {
	for _, record := range s.raw {
		record.SetRead(true)
	}
}

// SubmitterFor returns the submitter responsible for a record, or nil.
func (s *Session) SubmitterFor(record *contracts.ErrorRecord) submit.Submitter {
	if record == nil {
		return nil
	}
	return s.submitters.For(&record.Throwable)
}

// CanSubmitSelected reports whether the selected record has a submitter and
// no submission pending or done.
func (s *Session) CanSubmitSelected() bool {
	record := s.Selected()
	if record == nil || record.IsSubmitting() || record.IsSubmitted() {
		return false
	}
	return s.SubmitterFor(record) != nil
}

// SubmitSelected starts submission of the selected group. onComplete fires
// on a worker goroutine with the head record and result; the owner marshals
// it to its loop and calls ApplySubmission there. Returns whether a
// submission started.
func (s *Session) SubmitSelected(ctx context.Context, onComplete func(*contracts.ErrorRecord, contracts.SubmittedReportInfo)) bool {
	group := s.SelectedGroup()
	if group == nil {
		return false
	}
	record := group.Head()
	submitter := s.SubmitterFor(record)
	if submitter == nil || record.IsSubmitting() || record.IsSubmitted() {
		return false
	}

	record.SetSubmitting(true)
	events := submit.EventsForGroup(group.Records)
	started := submitter.Submit(ctx, events, record.AdditionalInfo, func(info contracts.SubmittedReportInfo) {
		onComplete(record, info)
	})
	if !started {
		record.SetSubmitting(false)
	}
	return started
}

// ApplySubmission records a completed submission. Must run on the owning
// goroutine.
func (s *Session) ApplySubmission(record *contracts.ErrorRecord, info contracts.SubmittedReportInfo) {
	record.SetSubmitting(false)
	record.SetSubmitted(&info)
	if info.Status == contracts.SubmissionFailed {
		s.log.Error("submission failed for record %s", record.ID)
		return
	}
	s.announceSubmission(record, info)
}

// announceSubmission broadcasts a successful submission. Publishing happens
// off the owning goroutine so a slow broker never stalls the event loop.
func (s *Session) announceSubmission(record *contracts.ErrorRecord, info contracts.SubmittedReportInfo) {
	if s.announce == nil {
		return
	}
	event := contracts.SubmissionEvent{
		RecordID:    record.ID,
		Fingerprint: string(s.hasher.Compute(record.Throwable.Text())),
		Result:      info,
	}
	if id, ok := s.resolver.Resolve(&record.Throwable); ok {
		event.PluginID = id
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.announce.Submission(ctx, event); err != nil {
			s.log.Error("failed to announce submission for %s: %v", record.ID, err)
		}
	}()
}

// GroupPosition returns the 1-based cursor position and group count for the
// "N of M" count line; ok is false when the view is empty.
func (s *Session) GroupPosition() (position, total int, ok bool) {
	if s.view.Size() == 0 {
		return 0, 0, false
	}
	return s.cursor.Index() + 1, s.view.Size(), true
}

// pluginName resolves the display name for a plugin, falling back to the ID.
func (s *Session) pluginName(id contracts.PluginID) string {
	if descriptor, ok := s.lookupDescriptor(id); ok && descriptor.Name != "" {
		return descriptor.Name
	}
	return string(id)
}

func (s *Session) lookupDescriptor(id contracts.PluginID) (d *contracts.PluginDescriptor, ok bool) {
	defer func() {
		if recover() != nil {
			d, ok = nil, false
		}
	}()
	return s.plugins.Descriptor(id)
}

// Blame returns the attribution line for a record: the responsible plugin's
// name, "unknown plugin" for unattributed abstract-method failures, or the
// platform itself.
func (s *Session) Blame(record *contracts.ErrorRecord) string {
	if record == nil {
		return ""
	}
	if id, ok := s.resolver.Resolve(&record.Throwable); ok {
		return fmt.Sprintf("Caused by plugin %s.", s.pluginName(id))
	}
	if record.Throwable.Category == contracts.CategoryAbstractMethod {
		return "Caused by an unknown plugin."
	}
	return "Caused by the platform core."
}
