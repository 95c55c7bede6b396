// Package pipeline wires the broker, pool, archive, and ingestion agent
// together. Both the CLI and the MCP server use it to bring a triage
// environment up in either local or distributed mode.
package pipeline

import (
	"context"
	"fmt"
	"os"

	"faultline-agent/src/attribution"
	"faultline-agent/src/broker"
	"faultline-agent/src/config"
	"faultline-agent/src/contracts"
	"faultline-agent/src/devinfo"
	"faultline-agent/src/fingerprint"
	"faultline-agent/src/ingest"
	"faultline-agent/src/logger"
	"faultline-agent/src/pool"
	"faultline-agent/src/store"
	"faultline-agent/src/submit"
)

// Environment is an assembled triage pipeline.
type Environment struct {
	Broker     broker.Broker
	Pool       *pool.InMemoryPool
	Archive    store.Store
	Hasher     *fingerprint.Hasher
	Resolver   *attribution.Resolver
	Submitters *submit.Registry
	Registry   contracts.PluginRegistry
	Developers *devinfo.Cache
	// DevFetcher is nil when no directory endpoint is configured; assignee
	// lookups are then unavailable.
	DevFetcher devinfo.Fetcher
}

// Build assembles an environment from configuration. registry describes the
// installed plugins of the monitored application; a nil registry attributes
// everything to the core.
func Build(cfg *config.Config, registry contracts.PluginRegistry, log logger.Logger) (*Environment, error) {
	if registry == nil {
		registry = emptyRegistry{}
	}

	var brk broker.Broker
	if cfg.Distributed() {
		kafka, err := broker.NewKafkaBroker(cfg.KafkaBrokers, log)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to Kafka: %w", err)
		}
		brk = kafka
	} else {
		brk = broker.NewInMemoryBroker()
	}

	var archive store.Store
	if cfg.PostgresDSN != "" {
		pg, err := store.NewPostgresStore(cfg.PostgresDSN)
		if err != nil {
			brk.Close()
			return nil, fmt.Errorf("failed to open archive: %w", err)
		}
		archive = pg
	} else {
		archive = store.NewInMemoryStore()
	}

	hasher := fingerprint.New()
	resolver := attribution.NewResolver(registry, log)

	credentials := submit.CredentialStore(submit.AnonymousCredentials{})
	if cfg.ReporterUsername != "" {
		credentials = staticCredentials{username: cfg.ReporterUsername}
	}
	var submitters []submit.Submitter
	if cfg.ReportEndpoint != "" {
		submitters = append(submitters,
			submit.NewHTTPSubmitter("Report to Tracker", contracts.CorePluginID, cfg.ReportEndpoint, credentials, log))
	}

	var fetcher devinfo.Fetcher
	if cfg.DevDirectoryEndpoint != "" {
		fetcher = devinfo.NewHTTPFetcher(cfg.DevDirectoryEndpoint)
	}

	return &Environment{
		Broker:     brk,
		Pool:       pool.NewInMemoryPool(),
		Archive:    archive,
		Hasher:     hasher,
		Resolver:   resolver,
		Submitters: submit.NewRegistry(registry, resolver, submitters...),
		Registry:   registry,
		Developers: devinfo.NewCache(),
		DevFetcher: fetcher,
	}, nil
}

// StartIngest launches the ingestion agent as a goroutine. Errors other
// than cancellation are reported to stderr even with a silent logger, since
// silent mode is for keeping stdout clean, not for hiding failures.
func (e *Environment) StartIngest(ctx context.Context, log logger.Logger) {
	agent := ingest.NewAgent(e.Broker, e.Pool, e.Archive, e.Hasher, e.Resolver, log)
	go func() {
		if err := agent.Run(ctx); err != nil && err != context.Canceled {
			fmt.Fprintf(os.Stderr, "[Pipeline] Ingestion agent error: %v\n", err)
		}
	}()
}

// Close releases broker and archive connections.
func (e *Environment) Close() {
	e.Broker.Close()
	e.Archive.Close()
}

type staticCredentials struct {
	username string
}

func (c staticCredentials) Username() (string, bool) { return c.username, true }

// emptyRegistry is the no-plugins registry used when none is configured.
type emptyRegistry struct{}

func (emptyRegistry) IsPluginClass(string) bool { return false }
func (emptyRegistry) PluginByClassName(string) (contracts.PluginID, bool) {
	return "", false
}
func (emptyRegistry) Descriptor(contracts.PluginID) (*contracts.PluginDescriptor, bool) {
	return nil, false
}
