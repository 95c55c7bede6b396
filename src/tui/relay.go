package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"faultline-agent/src/contracts"
)

// poolChangedMsg re-enters the program loop after the pool changed on
// another goroutine; the model rebuilds the session before touching it.
type poolChangedMsg struct{}

// poolRelay is a pool.Listener that forwards notifications into the program
// loop. Callbacks fire on the mutating goroutine (the ingestion agent), so
// they carry no state of their own; send marshals onto the loop.
type poolRelay struct {
	send func(tea.Msg)
}

func (r *poolRelay) EntryAdded(*contracts.ErrorRecord) { r.send(poolChangedMsg{}) }
func (r *poolRelay) PoolCleared()                      { r.send(poolChangedMsg{}) }
func (r *poolRelay) EntryRead(*contracts.ErrorRecord)  { r.send(poolChangedMsg{}) }
