// Package pool owns the live set of captured fatal error records. The pool
// is the process-wide collector that capturing hooks and the ingestion agent
// append to, and that triage sessions snapshot from.
package pool

import "faultline-agent/src/contracts"

// Listener receives pool lifecycle notifications. Callbacks fire on the
// goroutine that triggered the change; listeners that own single-goroutine
// state (the triage session) must marshal back to their own loop.
type Listener interface {
	// EntryAdded fires after a record is accepted into the pool.
	EntryAdded(record *contracts.ErrorRecord)
	// PoolCleared fires after ClearFatals removes everything.
	PoolCleared()
	// EntryRead fires when a record transitions to read.
	EntryRead(record *contracts.ErrorRecord)
}

// Pool is the error record collector consumed by triage sessions.
type Pool interface {
	// Add accepts a record. Returns false once the overflow guard tripped;
	// further records are dropped until the pool is cleared.
	Add(record *contracts.ErrorRecord) bool

	// FatalErrors returns a snapshot of records in arrival order, optionally
	// filtering out submitted or read records. Callers must not reorder the
	// result or assume it reflects later mutations.
	FatalErrors(includeSubmitted, includeRead bool) []*contracts.ErrorRecord

	// MarkAllRead flags every record read, notifying listeners once per
	// record that transitions.
	MarkAllRead()

	// ClearFatals removes all records and re-arms the overflow guard.
	ClearFatals()

	// AddListener registers for lifecycle notifications.
	AddListener(l Listener)

	// RemoveListener unregisters a previously added listener.
	RemoveListener(l Listener)
}
