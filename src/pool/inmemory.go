package pool

import (
	"sync"

	"faultline-agent/src/contracts"
)

// MaxFatalsBeforeOverflow caps how many fatal records the pool accepts,
// duplicates included, before it appends a single synthetic overflow record
// and drops the rest. Keeps a crash loop from flooding memory and the
// triage list.
const MaxFatalsBeforeOverflow = 100

// TooManyErrorsMessage is the message of the synthetic overflow record.
const TooManyErrorsMessage = "Too many errors reported; subsequent errors are being dropped"

// InMemoryPool is a thread-safe Pool. Listener callbacks fire outside the
// lock so a listener may re-enter the pool.
type InMemoryPool struct {
	mu        sync.Mutex
	records   []*contracts.ErrorRecord
	listeners []Listener
	overflow  bool
}

// NewInMemoryPool creates an empty pool.
func NewInMemoryPool() *InMemoryPool {
	return &InMemoryPool{}
}

// Add accepts a record, tripping the overflow guard at capacity.
func (p *InMemoryPool) Add(record *contracts.ErrorRecord) bool {
	p.mu.Lock()
	if p.overflow {
		p.mu.Unlock()
		return false
	}

	var added *contracts.ErrorRecord
	if len(p.records) >= MaxFatalsBeforeOverflow {
		p.overflow = true
		added = overflowRecord()
	} else {
		added = record
	}
	p.records = append(p.records, added)
	listeners := p.snapshotListeners()
	p.mu.Unlock()

	for _, l := range listeners {
		l.EntryAdded(added)
	}
	return added == record
}

// FatalErrors returns a filtered snapshot in arrival order.
func (p *InMemoryPool) FatalErrors(includeSubmitted, includeRead bool) []*contracts.ErrorRecord {
	p.mu.Lock()
	defer p.mu.Unlock()

	result := make([]*contracts.ErrorRecord, 0, len(p.records))
	for _, r := range p.records {
		if !includeSubmitted && (r.IsSubmitted() || r.IsSubmitting()) {
			continue
		}
		if !includeRead && r.IsRead() {
			continue
		}
		result = append(result, r)
	}
	return result
}

// MarkAllRead flags every record read.
func (p *InMemoryPool) MarkAllRead() {
	p.mu.Lock()
	var transitioned []*contracts.ErrorRecord
	for _, r := range p.records {
		if !r.IsRead() {
			r.SetRead(true)
			transitioned = append(transitioned, r)
		}
	}
	listeners := p.snapshotListeners()
	p.mu.Unlock()

	for _, l := range listeners {
		for _, r := range transitioned {
			l.EntryRead(r)
		}
	}
}

// ClearFatals removes all records and re-arms the overflow guard.
func (p *InMemoryPool) ClearFatals() {
	p.mu.Lock()
	p.records = nil
	p.overflow = false
	listeners := p.snapshotListeners()
	p.mu.Unlock()

	for _, l := range listeners {
		l.PoolCleared()
	}
}

// AddListener registers a listener.
func (p *InMemoryPool) AddListener(l Listener) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listeners = append(p.listeners, l)
}

// RemoveListener unregisters a listener.
func (p *InMemoryPool) RemoveListener(l Listener) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, existing := range p.listeners {
		if existing == l {
			p.listeners = append(p.listeners[:i], p.listeners[i+1:]...)
			return
		}
	}
}

func (p *InMemoryPool) snapshotListeners() []Listener {
	listeners := make([]Listener, len(p.listeners))
	copy(listeners, p.listeners)
	return listeners
}

func overflowRecord() *contracts.ErrorRecord {
	return &contracts.ErrorRecord{
		ID:      "overflow",
		Message: TooManyErrorsMessage,
		Throwable: contracts.Throwable{
			Category: contracts.CategoryTooManyErrors,
			Type:     "TooManyErrors",
			Message:  TooManyErrorsMessage,
		},
	}
}
