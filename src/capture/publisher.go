// Package capture publishes report events on behalf of monitored processes.
// The monitored application embeds a Publisher and calls Report when a fatal
// error escapes; agents on the other side of the broker do the rest.
package capture

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"faultline-agent/src/broker"
	"faultline-agent/src/contracts"
	"faultline-agent/src/logger"
)

// Publisher writes report and submission events to the broker.
type Publisher struct {
	broker broker.Broker
	source string
	logger logger.Logger
}

// NewPublisher creates a publisher. source identifies the reporting process
// and becomes the partition key for its events.
func NewPublisher(brk broker.Broker, source string, log logger.Logger) *Publisher {
	return &Publisher{
		broker: brk,
		source: source,
		logger: log,
	}
}

// Report publishes one captured failure. The event's source and timestamp
// are filled in when absent.
func (p *Publisher) Report(ctx context.Context, event contracts.ReportEvent) error {
	if event.Source == "" {
		event.Source = p.source
	}
	if event.Timestamp == "" {
		event.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal report event: %w", err)
	}
	if err := p.broker.Publish(ctx, contracts.TopicReportsRaw, event.Source, data); err != nil {
		return fmt.Errorf("failed to publish report %s: %w", event.ID, err)
	}

	p.logger.Debug("[Capture] Published report %s", event.ID)
	return nil
}

// ReportAll publishes a batch of failures, stopping at the first error.
func (p *Publisher) ReportAll(ctx context.Context, events []contracts.ReportEvent) error {
	for i := range events {
		if err := p.Report(ctx, events[i]); err != nil {
			return err
		}
	}
	return nil
}

// Submission publishes the outcome of a completed report submission so other
// agents can stop resurfacing the same group.
func (p *Publisher) Submission(ctx context.Context, event contracts.SubmissionEvent) error {
	if event.Timestamp == "" {
		event.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal submission event: %w", err)
	}
	if err := p.broker.Publish(ctx, contracts.TopicReportsSubmitted, event.RecordID, data); err != nil {
		return fmt.Errorf("failed to publish submission for %s: %w", event.RecordID, err)
	}

	p.logger.Debug("[Capture] Published submission result for %s", event.RecordID)
	return nil
}
