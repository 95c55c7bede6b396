package store

import (
	"context"
	"fmt"
	"sync"

	"faultline-agent/src/contracts"
)

// InMemoryStore is a thread-safe Store for local mode and tests.
type InMemoryStore struct {
	mu            sync.RWMutex
	byID          map[string]*ArchivedReport
	byFingerprint map[string][]string // fingerprint -> ordered report IDs
}

// NewInMemoryStore creates an empty in-memory archive.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		byID:          make(map[string]*ArchivedReport),
		byFingerprint: make(map[string][]string),
	}
}

// SaveReport archives a report, ignoring duplicate IDs.
func (s *InMemoryStore) SaveReport(ctx context.Context, report *ArchivedReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[report.ID]; exists {
		return nil
	}
	stored := *report
	s.byID[report.ID] = &stored
	s.byFingerprint[report.Fingerprint] = append(s.byFingerprint[report.Fingerprint], report.ID)
	return nil
}

// GetReport retrieves one report by ID.
func (s *InMemoryStore) GetReport(ctx context.Context, id string) (*ArchivedReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	report, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	result := *report
	return &result, nil
}

// ListByFingerprint returns all reports for a fingerprint, oldest first.
func (s *InMemoryStore) ListByFingerprint(ctx context.Context, fp string) ([]ArchivedReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.byFingerprint[fp]
	reports := make([]ArchivedReport, 0, len(ids))
	for _, id := range ids {
		reports = append(reports, *s.byID[id])
	}
	return reports, nil
}

// RecordSubmission stores the submission outcome for a report.
func (s *InMemoryStore) RecordSubmission(ctx context.Context, id string, info contracts.SubmittedReportInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	report, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	report.Submission = &info
	return nil
}

// Close is a no-op for the in-memory archive.
func (s *InMemoryStore) Close() error {
	return nil
}
