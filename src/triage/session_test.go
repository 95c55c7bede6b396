package triage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"faultline-agent/src/attribution"
	"faultline-agent/src/broker"
	"faultline-agent/src/capture"
	"faultline-agent/src/contracts"
	"faultline-agent/src/fingerprint"
	"faultline-agent/src/logger"
	"faultline-agent/src/pool"
	"faultline-agent/src/submit"
)

type stubRegistry struct {
	classes     map[string]contracts.PluginID
	descriptors map[contracts.PluginID]*contracts.PluginDescriptor
}

func (s *stubRegistry) IsPluginClass(className string) bool {
	_, ok := s.classes[className]
	return ok
}

func (s *stubRegistry) PluginByClassName(className string) (contracts.PluginID, bool) {
	id, ok := s.classes[className]
	return id, ok
}

func (s *stubRegistry) Descriptor(id contracts.PluginID) (*contracts.PluginDescriptor, bool) {
	d, ok := s.descriptors[id]
	return d, ok
}

type recordingSubmitter struct {
	pluginID contracts.PluginID
	result   contracts.SubmittedReportInfo
	events   []submit.Event
}

func (r *recordingSubmitter) Name() string                 { return "report" }
func (r *recordingSubmitter) PluginID() contracts.PluginID { return r.pluginID }
func (r *recordingSubmitter) Submit(ctx context.Context, events []submit.Event, additionalInfo string, onComplete func(contracts.SubmittedReportInfo)) bool {
	r.events = events
	go onComplete(r.result)
	return true
}

func record(trace string) *contracts.ErrorRecord {
	return &contracts.ErrorRecord{
		ID:      trace,
		Message: trace,
		Date:    time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
		Throwable: contracts.Throwable{
			Category: contracts.CategoryGeneric,
			Type:     "TestError",
			Message:  trace,
		},
	}
}

type fixture struct {
	pool      *pool.InMemoryPool
	session   *Session
	submitter *recordingSubmitter
	registry  *stubRegistry
}

func newFixture(defaultRecord *contracts.ErrorRecord, records ...*contracts.ErrorRecord) *fixture {
	p := pool.NewInMemoryPool()
	for _, r := range records {
		p.Add(r)
	}
	registry := &stubRegistry{
		classes:     map[string]contracts.PluginID{},
		descriptors: map[contracts.PluginID]*contracts.PluginDescriptor{},
	}
	log := logger.NewSilentLogger()
	resolver := attribution.NewResolver(registry, log)
	submitter := &recordingSubmitter{
		pluginID: contracts.CorePluginID,
		result:   contracts.SubmittedReportInfo{Status: contracts.SubmissionNew, URL: "https://tracker/42", LinkText: "FL-42"},
	}
	submitters := submit.NewRegistry(registry, resolver, submitter)
	return &fixture{
		pool:      p,
		session:   NewSession(p, fingerprint.New(), resolver, registry, submitters, log, defaultRecord),
		submitter: submitter,
		registry:  registry,
	}
}

func TestSessionEmptyPool(t *testing.T) {
	f := newFixture(nil)

	if f.session.Selected() != nil {
		t.Error("empty pool should have no selection")
	}
	if f.session.View().Size() != 0 {
		t.Error("expected empty view")
	}
	if _, _, ok := f.session.GroupPosition(); ok {
		t.Error("empty view should report no position")
	}
	if f.session.InfoLine() != "" {
		t.Error("empty selection should have empty info line")
	}
	if f.session.SubmitSelected(context.Background(), nil) {
		t.Error("submission on empty pool should not start")
	}
}

func TestSessionStartsAtEarliestUnread(t *testing.T) {
	r1, r2, r3 := record("A"), record("B"), record("C")
	r1.SetRead(true)
	f := newFixture(nil, r1, r2, r3)

	if f.session.Cursor().Index() != 1 {
		t.Errorf("expected cursor at first unread group (1), got %d", f.session.Cursor().Index())
	}
}

func TestSessionDefaultRecordSelection(t *testing.T) {
	r1, r2 := record("A"), record("B")
	f := newFixture(r2, r1, r2)

	if f.session.Selected() != r2 {
		t.Error("expected default record to be selected")
	}
}

func TestSessionRebuildAfterNewEntry(t *testing.T) {
	r1 := record("A")
	f := newFixture(nil, r1)
	r1.SetRead(true)

	r2 := record("A")
	f.pool.Add(r2)
	f.session.Rebuild()

	if f.session.View().Size() != 1 {
		t.Fatalf("expected one group after duplicate arrival, got %d", f.session.View().Size())
	}
	if f.session.Selected() != r2 {
		t.Error("newest duplicate should head the group after rebuild")
	}
}

func TestSuppressedScopeDropsFieldWrites(t *testing.T) {
	r := record("A")
	r.AdditionalInfo = "original"
	f := newFixture(nil, r)

	f.session.Suppressed(func() {
		f.session.SetAdditionalInfo("from listener echo")
		f.session.SetAssignee("nobody")
	})
	if r.AdditionalInfo != "original" || r.AssigneeID != "" {
		t.Error("writes inside Suppressed scope must be dropped")
	}
	if f.session.Muted() {
		t.Error("mute flag must be released after the scope")
	}

	f.session.SetAdditionalInfo("operator note")
	if r.AdditionalInfo != "operator note" {
		t.Error("writes outside the scope must land")
	}
}

func TestSuppressedReleasesOnPanic(t *testing.T) {
	f := newFixture(nil, record("A"))

	func() {
		defer func() { recover() }()
		f.session.Suppressed(func() { panic("boom") })
	}()
	if f.session.Muted() {
		t.Error("mute flag must be released even when the scope panics")
	}
}

func TestSubmitSelectedLifecycle(t *testing.T) {
	r1 := record("A")
	r2 := record("A")
	f := newFixture(nil, r1, r2)

	head := f.session.Selected()
	if head != r2 {
		t.Fatal("expected newest duplicate as head")
	}

	done := make(chan struct{})
	started := f.session.SubmitSelected(context.Background(), func(rec *contracts.ErrorRecord, info contracts.SubmittedReportInfo) {
		// Owner's loop: apply the completion here.
		f.session.ApplySubmission(rec, info)
		close(done)
	})
	if !started {
		t.Fatal("submission should start")
	}
	if !head.IsSubmitting() && !head.IsSubmitted() {
		t.Error("head should be marked submitting once started")
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("submission did not complete")
	}

	if head.IsSubmitting() {
		t.Error("submitting flag should clear on completion")
	}
	if !head.IsSubmitted() {
		t.Fatal("head should be marked submitted")
	}
	if got := head.SubmissionInfo().URL; got != "https://tracker/42" {
		t.Errorf("unexpected submission URL %q", got)
	}
	if len(f.submitter.events) != 2 {
		t.Errorf("expected 2 events (whole group), got %d", len(f.submitter.events))
	}
	if f.session.CanSubmitSelected() {
		t.Error("submitted record must not be submittable again")
	}
}

func TestInfoLineStates(t *testing.T) {
	r := record("A")
	f := newFixture(nil, r)

	line := f.session.InfoLine()
	if !strings.Contains(line, "platform core") {
		t.Errorf("expected core blame, got %q", line)
	}
	if !strings.Contains(line, "Unread.") {
		t.Errorf("expected unread marker, got %q", line)
	}

	r.SetSubmitting(true)
	if line := f.session.InfoLine(); !strings.Contains(line, "Submitting...") {
		t.Errorf("expected submitting marker, got %q", line)
	}

	r.SetSubmitting(false)
	r.SetSubmitted(&contracts.SubmittedReportInfo{Status: contracts.SubmissionDuplicate, URL: "u", LinkText: "FL-1"})
	line = f.session.InfoLine()
	if !strings.Contains(line, "FL-1") || !strings.Contains(line, "Duplicate") {
		t.Errorf("expected duplicate submission info, got %q", line)
	}

	r.SetSubmitted(&contracts.SubmittedReportInfo{Status: contracts.SubmissionFailed})
	if line := f.session.InfoLine(); !strings.Contains(line, "Submission failed.") {
		t.Errorf("expected failure text, got %q", line)
	}
}

func TestInfoLineCountsDuplicates(t *testing.T) {
	f := newFixture(nil, record("A"), record("A"), record("A"))

	if line := f.session.InfoLine(); !strings.Contains(line, "(3 times)") {
		t.Errorf("expected duplicate count, got %q", line)
	}
}

func TestBlameForPluginFailure(t *testing.T) {
	r := record("A")
	r.Throwable.Category = contracts.CategoryPluginException
	r.Throwable.PluginID = "widget-plugin"
	f := newFixture(nil, r)
	f.registry.descriptors["widget-plugin"] = &contracts.PluginDescriptor{ID: "widget-plugin", Name: "Widget Tools"}

	if blame := f.session.Blame(r); !strings.Contains(blame, "Widget Tools") {
		t.Errorf("expected plugin name in blame, got %q", blame)
	}
}

func TestForeignPluginNotice(t *testing.T) {
	r := record("A")
	r.Throwable.Category = contracts.CategoryPluginException
	r.Throwable.PluginID = "foreign-plugin"
	f := newFixture(nil, r)
	f.registry.descriptors["foreign-plugin"] = &contracts.PluginDescriptor{
		ID:        "foreign-plugin",
		Vendor:    "Acme",
		VendorURL: "https://acme.example",
	}

	notice, ok := f.session.ForeignPluginNotice()
	if !ok {
		t.Fatal("expected a foreign plugin notice")
	}
	if !strings.Contains(notice, "Acme") || !strings.Contains(notice, "https://acme.example") {
		t.Errorf("notice should name vendor and contact, got %q", notice)
	}
}

func TestCloseMarksAllRead(t *testing.T) {
	r1, r2 := record("A"), record("B")
	f := newFixture(nil, r1, r2)

	f.session.Close()
	if !r1.IsRead() || !r2.IsRead() {
		t.Error("Close must mark all snapshotted records read")
	}
}

func TestOverflowRecordHasNoInfoLineAndNoSubmitter(t *testing.T) {
	p := pool.NewInMemoryPool()
	for i := 0; i <= pool.MaxFatalsBeforeOverflow; i++ {
		p.Add(record(fmt.Sprintf("unique-%d", i)))
	}
	registry := &stubRegistry{classes: map[string]contracts.PluginID{}, descriptors: map[contracts.PluginID]*contracts.PluginDescriptor{}}
	log := logger.NewSilentLogger()
	resolver := attribution.NewResolver(registry, log)
	core := &recordingSubmitter{pluginID: contracts.CorePluginID}
	session := NewSession(p, fingerprint.New(), resolver, registry, submit.NewRegistry(registry, resolver, core), log, nil)

	overflow := session.View().Groups[session.View().Size()-1].Head()
	if overflow.Throwable.Category != contracts.CategoryTooManyErrors {
		t.Fatal("expected overflow record as last group")
	}
	if session.SubmitterFor(overflow) != nil {
		t.Error("overflow record must not get a submitter")
	}
	if session.DetailsText() == "" {
		t.Error("details for selected record should not be empty")
	}
}

func subscribeSubmitted(t *testing.T, brk *broker.InMemoryBroker) <-chan broker.Message {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	msgs, err := brk.Subscribe(ctx, contracts.TopicReportsSubmitted, "session-test")
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	return msgs
}

func TestApplySubmissionAnnouncesResult(t *testing.T) {
	f := newFixture(nil, record("announced failure"))
	brk := broker.NewInMemoryBroker()
	defer brk.Close()
	msgs := subscribeSubmitted(t, brk)
	f.session.SetAnnouncer(capture.NewPublisher(brk, "test-host", logger.NewSilentLogger()))

	head := f.session.Selected()
	f.session.ApplySubmission(head, contracts.SubmittedReportInfo{Status: contracts.SubmissionNew, URL: "https://tracker/7", LinkText: "FL-7"})

	select {
	case msg := <-msgs:
		if msg.Key != head.ID {
			t.Errorf("expected key %q, got %q", head.ID, msg.Key)
		}
		var event contracts.SubmissionEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			t.Fatalf("bad submission payload: %v", err)
		}
		if event.RecordID != head.ID {
			t.Errorf("expected record %q, got %q", head.ID, event.RecordID)
		}
		if event.Result.Status != contracts.SubmissionNew {
			t.Errorf("unexpected status %q", event.Result.Status)
		}
		if event.Fingerprint == "" {
			t.Error("expected a fingerprint on the event")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("expected a submission event on the broker")
	}
}

func TestApplySubmissionFailureIsNotAnnounced(t *testing.T) {
	f := newFixture(nil, record("failed submission"))
	brk := broker.NewInMemoryBroker()
	defer brk.Close()
	msgs := subscribeSubmitted(t, brk)
	f.session.SetAnnouncer(capture.NewPublisher(brk, "test-host", logger.NewSilentLogger()))

	head := f.session.Selected()
	f.session.ApplySubmission(head, contracts.SubmittedReportInfo{Status: contracts.SubmissionFailed})

	select {
	case msg := <-msgs:
		t.Fatalf("failed submissions must not be announced, got %q", msg.Key)
	case <-time.After(100 * time.Millisecond):
	}
	if !head.IsSubmitted() {
		t.Error("failed result should still be recorded on the record")
	}
}
