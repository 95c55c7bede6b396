package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"faultline-agent/src/attribution"
	"faultline-agent/src/contracts"
	"faultline-agent/src/fingerprint"
	"faultline-agent/src/logger"
	"faultline-agent/src/pool"
	"faultline-agent/src/registry"
	"faultline-agent/src/submit"
	"faultline-agent/src/triage"
)

func testSession(t *testing.T, records ...*contracts.ErrorRecord) *triage.Session {
	t.Helper()
	p := pool.NewInMemoryPool()
	for _, record := range records {
		p.Add(record)
	}
	log := logger.NewSilentLogger()
	plugins := registry.NewStaticRegistry(nil)
	resolver := attribution.NewResolver(plugins, log)
	submitters := submit.NewRegistry(plugins, resolver)
	return triage.NewSession(p, fingerprint.New(), resolver, plugins, submitters, log, nil)
}

func record(id, message string) *contracts.ErrorRecord {
	return &contracts.ErrorRecord{
		ID:      id,
		Message: message,
		Throwable: contracts.Throwable{
			Category: contracts.CategoryGeneric,
			Type:     "RuntimeError",
			Message:  message,
		},
		Date: time.Date(2026, 3, 14, 9, 26, 0, 0, time.UTC),
	}
}

func TestModel_EmptyPool(t *testing.T) {
	model := NewModel(testSession(t))

	updated, _ := model.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	model = updated.(Model)

	view := model.View()
	if !strings.Contains(view, "No errors in the pool.") {
		t.Errorf("expected empty-pool message, got:\n%q", view)
	}
}

func TestModel_TitleShowsGroupPosition(t *testing.T) {
	model := NewModel(testSession(t,
		record("r1", "disk full"),
		record("r2", "connection refused"),
	))

	updated, _ := model.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	model = updated.(Model)

	view := model.View()
	if !strings.Contains(view, "1 of 2") {
		t.Errorf("expected group position in title, got:\n%s", view)
	}
}

func TestModel_NavigationMovesCursor(t *testing.T) {
	session := testSession(t,
		record("r1", "disk full"),
		record("r2", "connection refused"),
	)
	model := NewModel(session)

	updated, _ := model.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	model = updated.(Model)

	if got := session.Selected().ID; got != "r1" {
		t.Fatalf("expected r1 selected initially, got %s", got)
	}

	updated, _ = model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})
	model = updated.(Model)

	if got := session.Selected().ID; got != "r2" {
		t.Errorf("expected r2 selected after moving down, got %s", got)
	}

	updated, _ = model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("k")})
	model = updated.(Model)

	if got := session.Selected().ID; got != "r1" {
		t.Errorf("expected r1 selected after moving back up, got %s", got)
	}
}

func TestModel_MarkSelectedRead(t *testing.T) {
	first := record("r1", "disk full")
	session := testSession(t, first)
	model := NewModel(session)

	updated, _ := model.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	model = updated.(Model)

	updated, _ = model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	_ = updated.(Model)

	if !first.IsRead() {
		t.Error("expected selected record to be marked read")
	}
}

func TestModel_QuitClosesSession(t *testing.T) {
	first := record("r1", "disk full")
	model := NewModel(testSession(t, first))

	updated, _ := model.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	model = updated.(Model)

	_, cmd := model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if !first.IsRead() {
		t.Error("expected records marked read on quit")
	}
}

func TestModel_SubmissionResultApplied(t *testing.T) {
	first := record("r1", "disk full")
	session := testSession(t, first)
	model := NewModel(session)

	updated, _ := model.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	model = updated.(Model)

	info := contracts.SubmittedReportInfo{Status: contracts.SubmissionNew, URL: "http://tracker/1", LinkText: "FL-1"}
	updated, _ = model.Update(submissionDoneMsg{record: first, info: info})
	model = updated.(Model)

	if !first.IsSubmitted() {
		t.Error("expected record marked submitted")
	}
	if !strings.Contains(model.View(), "FL-1") {
		t.Error("expected submission result in status line")
	}
}

func TestModel_PoolGrowthSurfacesOnChangeMsg(t *testing.T) {
	session := testSession(t, record("r1", "disk full"))
	model := NewModel(session)

	updated, _ := model.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	model = updated.(Model)

	session.Pool().Add(record("r2", "network timeout"))
	if session.View().Size() != 1 {
		t.Fatal("snapshot should be unchanged before the change message arrives")
	}

	updated, _ = model.Update(poolChangedMsg{})
	model = updated.(Model)

	if got := session.View().Size(); got != 2 {
		t.Fatalf("expected 2 groups after rebuild, got %d", got)
	}
	if !strings.Contains(model.View(), "network timeout") {
		t.Error("expected new group in rendered view")
	}
}

func TestModel_PoolClearedResetsView(t *testing.T) {
	session := testSession(t, record("r1", "disk full"))
	model := NewModel(session)

	updated, _ := model.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	model = updated.(Model)

	session.Pool().ClearFatals()
	updated, _ = model.Update(poolChangedMsg{})
	model = updated.(Model)

	if session.View().Size() != 0 {
		t.Fatal("expected empty view after clear")
	}
	if !strings.Contains(model.View(), "No errors in the pool.") {
		t.Error("expected empty-pool message after clear")
	}
}

func TestPoolRelayForwardsChanges(t *testing.T) {
	var msgs []tea.Msg
	relay := &poolRelay{send: func(msg tea.Msg) { msgs = append(msgs, msg) }}

	p := pool.NewInMemoryPool()
	p.AddListener(relay)
	p.Add(record("r1", "disk full"))
	p.ClearFatals()

	if len(msgs) != 2 {
		t.Fatalf("expected 2 forwarded messages, got %d", len(msgs))
	}
	for _, msg := range msgs {
		if _, ok := msg.(poolChangedMsg); !ok {
			t.Fatalf("unexpected message type %T", msg)
		}
	}
}
