package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"faultline-agent/src/triage"
)

// Start runs the review screen over a session until the operator quits.
// While the program runs, pool changes from other goroutines (live ingest)
// are forwarded into the loop so the view tracks the pool.
func Start(session *triage.Session) error {
	p := tea.NewProgram(NewModel(session), tea.WithAltScreen())
	relay := &poolRelay{send: p.Send}
	session.Pool().AddListener(relay)
	defer session.Pool().RemoveListener(relay)
	_, err := p.Run()
	return err
}
