// Package ingest provides the ingestion agent. It consumes report events
// from the broker, turns them into pool records, and archives them.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"faultline-agent/src/attribution"
	"faultline-agent/src/broker"
	"faultline-agent/src/contracts"
	"faultline-agent/src/fingerprint"
	"faultline-agent/src/logger"
	"faultline-agent/src/pool"
	"faultline-agent/src/sanitize"
	"faultline-agent/src/store"
)

// ConsumerGroup is the agent's broker consumer group.
const ConsumerGroup = "faultline-ingest"

// Agent consumes report events and feeds the pool and archive.
type Agent struct {
	broker   broker.Broker
	pool     pool.Pool
	archive  store.Store
	hasher   *fingerprint.Hasher
	resolver *attribution.Resolver
	logger   logger.Logger
}

// NewAgent creates an ingestion agent. archive may be nil when running
// without persistence.
func NewAgent(brk broker.Broker, p pool.Pool, archive store.Store, hasher *fingerprint.Hasher, resolver *attribution.Resolver, log logger.Logger) *Agent {
	return &Agent{
		broker:   brk,
		pool:     p,
		archive:  archive,
		hasher:   hasher,
		resolver: resolver,
		logger:   log,
	}
}

// Run starts the agent's main loop, returning when ctx is cancelled or the
// broker channel closes.
func (a *Agent) Run(ctx context.Context) error {
	a.logger.Info("[IngestAgent] Starting...")

	msgChan, err := a.broker.Subscribe(ctx, contracts.TopicReportsRaw, ConsumerGroup)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", contracts.TopicReportsRaw, err)
	}

	a.logger.Info("[IngestAgent] Listening for reports on '%s' topic...", contracts.TopicReportsRaw)

	for {
		select {
		case msg, ok := <-msgChan:
			if !ok {
				a.logger.Info("[IngestAgent] Message channel closed, shutting down")
				return nil
			}
			if err := a.processEvent(ctx, msg); err != nil {
				a.logger.Error("[IngestAgent] Error processing report: %v", err)
			}

		case <-ctx.Done():
			a.logger.Info("[IngestAgent] Context cancelled, shutting down")
			return ctx.Err()
		}
	}
}

// processEvent handles one incoming report event.
func (a *Agent) processEvent(ctx context.Context, msg broker.Message) error {
	var event contracts.ReportEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return fmt.Errorf("failed to unmarshal report event: %w", err)
	}

	record := RecordFromEvent(&event)
	accepted := a.pool.Add(record)
	if !accepted {
		a.logger.Debug("[IngestAgent] Pool overflowed, dropped report %s", event.ID)
	}

	if a.archive == nil {
		return nil
	}

	report := &store.ArchivedReport{
		ID:            record.ID,
		Source:        event.Source,
		Fingerprint:   string(a.hasher.Compute(record.Throwable.Text())),
		Message:       record.Message,
		ThrowableText: record.Throwable.Text(),
		CreatedAt:     record.Date,
	}
	if a.resolver != nil {
		if pluginID, ok := a.resolver.Resolve(&record.Throwable); ok {
			report.PluginID = pluginID
		}
	}
	if err := a.archive.SaveReport(ctx, report); err != nil {
		return fmt.Errorf("failed to archive report %s: %w", record.ID, err)
	}

	a.logger.Info("[IngestAgent] Ingested report %s from %s", record.ID, event.Source)
	return nil
}

// RecordFromEvent converts a wire event into a pool record, sanitizing text
// fields that may carry terminal escape sequences.
func RecordFromEvent(event *contracts.ReportEvent) *contracts.ErrorRecord {
	throwable := event.Throwable
	throwable.Message = sanitize.Line(throwable.Message)

	date := time.Now()
	if event.Timestamp != "" {
		if parsed, err := time.Parse(time.RFC3339, event.Timestamp); err == nil {
			date = parsed
		}
	}

	return &contracts.ErrorRecord{
		ID:             event.ID,
		Message:        sanitize.TraceText(event.Message),
		Throwable:      throwable,
		Date:           date,
		AdditionalInfo: event.AdditionalInfo,
	}
}
