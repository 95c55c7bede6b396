// Package store defines the interface for the durable report archive.
package store

import (
	"context"
	"errors"
	"time"

	"faultline-agent/src/contracts"
)

// ErrNotFound is returned when no archived report matches a query.
var ErrNotFound = errors.New("report not found")

// ArchivedReport is the persisted form of one ingested error record.
type ArchivedReport struct {
	ID            string
	Source        string
	Fingerprint   string
	PluginID      contracts.PluginID
	Message       string
	ThrowableText string
	CreatedAt     time.Time
	Submission    *contracts.SubmittedReportInfo
}

// Store persists ingested reports and their submission outcomes.
type Store interface {
	// SaveReport archives a report. Saving an existing ID is a no-op.
	SaveReport(ctx context.Context, report *ArchivedReport) error

	// GetReport retrieves one report by ID.
	GetReport(ctx context.Context, id string) (*ArchivedReport, error)

	// ListByFingerprint retrieves all reports sharing a fingerprint, oldest
	// first.
	ListByFingerprint(ctx context.Context, fp string) ([]ArchivedReport, error)

	// RecordSubmission stores the submission outcome for a report.
	RecordSubmission(ctx context.Context, id string, info contracts.SubmittedReportInfo) error

	// Close closes the store connection.
	Close() error
}
