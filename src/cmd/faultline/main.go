// Package main provides the unified Faultline CLI.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"faultline-agent/src/capture"
	"faultline-agent/src/config"
	"faultline-agent/src/contracts"
	"faultline-agent/src/ingest"
	"faultline-agent/src/logger"
	"faultline-agent/src/mcp"
	"faultline-agent/src/pipeline"
	"faultline-agent/src/registry"
	"faultline-agent/src/triage"
	"faultline-agent/src/tui"
)

var appConfig *config.Config

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "faultline",
	Short: "Faultline - error report triage for plugin platforms",
	Long: `Faultline collects fatal error reports from a plugin-extensible
application, deduplicates them by stack trace, attributes each failure to
the plugin that caused it, and drives report submission.

It supports two modes:
- Local Mode: in-memory broker and pool (default)
- Distributed Mode: Kafka + Postgres, shared archive

Mode is auto-detected based on the KAFKA_BROKERS environment variable.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		var err error
		appConfig, err = config.LoadFromEnv()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
			os.Exit(1)
		}
	},
}

// viewCmd launches the triage TUI over the error pool
var viewCmd = &cobra.Command{
	Use:   "view [report-file]",
	Short: "Review the error pool in the TUI",
	Long: `Launch the triage TUI over the error pool.

With a report file argument, the pool is seeded from a JSON array of report
events. In distributed mode the pool is additionally fed live from Kafka.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		log := logger.NewSilentLogger()
		env, err := pipeline.Build(appConfig, loadPluginRegistry(), log)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to build pipeline: %v\n", config.WrapError(err))
			os.Exit(1)
		}
		defer env.Close()

		if len(args) == 1 {
			if err := seedPoolFromFile(env, args[0]); err != nil {
				fmt.Fprintf(os.Stderr, "Failed to load reports: %v\n", err)
				os.Exit(1)
			}
		}

		if appConfig.Distributed() {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			env.StartIngest(ctx, log)
		}

		session := triage.NewSession(env.Pool, env.Hasher, env.Resolver, env.Registry, env.Submitters, log, nil)
		if appConfig.Distributed() {
			hostname, _ := os.Hostname()
			session.SetAnnouncer(capture.NewPublisher(env.Broker, hostname, log))
		}
		if err := tui.Start(session); err != nil {
			fmt.Fprintf(os.Stderr, "TUI error: %v\n", err)
			os.Exit(1)
		}
	},
}

// ingestCmd runs the standalone ingestion agent
var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Run the ingestion agent",
	Long: `Consume report events from Kafka, deduplicate them into the pool,
and archive them in Postgres.

Requires distributed mode (KAFKA_BROKERS must be set).`,
	Run: func(cmd *cobra.Command, args []string) {
		if !appConfig.Distributed() {
			fmt.Fprintln(os.Stderr, "ERROR: KAFKA_BROKERS environment variable is required for the ingestion agent")
			fmt.Fprintln(os.Stderr, "Example: export KAFKA_BROKERS=localhost:9092")
			os.Exit(1)
		}

		log := logger.NewConsoleLogger()
		log.Info("Starting Faultline Ingestion Agent")
		log.Info("Kafka brokers: %v", appConfig.KafkaBrokers)

		env, err := pipeline.Build(appConfig, loadPluginRegistry(), log)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to build pipeline: %v\n", config.WrapError(err))
			os.Exit(1)
		}
		defer env.Close()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		go func() {
			<-sigChan
			log.Info("Shutdown signal received, stopping agent...")
			cancel()
		}()

		agent := ingest.NewAgent(env.Broker, env.Pool, env.Archive, env.Hasher, env.Resolver, log)
		if err := agent.Run(ctx); err != nil && err != context.Canceled {
			fmt.Fprintf(os.Stderr, "Agent error: %v\n", err)
			os.Exit(1)
		}

		log.Info("Ingestion agent stopped")
	},
}

// reportCmd publishes captured reports to the broker
var reportCmd = &cobra.Command{
	Use:   "report [report-file]",
	Short: "Publish report events from a file",
	Long: `Read a JSON array of report events and publish them to the raw
reports topic, where a running ingestion agent will pick them up.

Requires distributed mode (KAFKA_BROKERS must be set).`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if !appConfig.Distributed() {
			fmt.Fprintln(os.Stderr, "ERROR: KAFKA_BROKERS environment variable is required to publish reports")
			os.Exit(1)
		}

		log := logger.NewConsoleLogger()
		env, err := pipeline.Build(appConfig, nil, log)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to build pipeline: %v\n", config.WrapError(err))
			os.Exit(1)
		}
		defer env.Close()

		events, err := readReportFile(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load reports: %v\n", err)
			os.Exit(1)
		}

		hostname, _ := os.Hostname()
		publisher := capture.NewPublisher(env.Broker, hostname, log)
		if err := publisher.ReportAll(context.Background(), events); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to publish reports: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Published %d reports\n", len(events))
	},
}

// mcpCmd runs the MCP server on stdio
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the MCP server on stdio",
	Long: `Expose the error pool to LLM agents over the Model Context
Protocol. In distributed mode the pool is fed live from Kafka; otherwise it
starts empty and fills as tools publish reports.`,
	Run: func(cmd *cobra.Command, args []string) {
		// stdout carries the protocol; logging must stay off it.
		log := logger.NewSilentLogger()
		env, err := pipeline.Build(appConfig, loadPluginRegistry(), log)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to build pipeline: %v\n", config.WrapError(err))
			os.Exit(1)
		}
		defer env.Close()

		if appConfig.Distributed() {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			env.StartIngest(ctx, log)
		}

		server := mcp.NewServer(env.Pool, env.Hasher, env.Resolver, env.Registry, env.Submitters, log).
			WithDeveloperDirectory(env.Developers, env.DevFetcher)
		if appConfig.Distributed() {
			hostname, _ := os.Hostname()
			server = server.WithAnnouncer(capture.NewPublisher(env.Broker, hostname, log))
		}
		if err := server.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "MCP server error: %v\n", err)
			os.Exit(1)
		}
	},
}

// loadPluginRegistry reads the plugin manifest named by configuration. A
// missing manifest means every failure is attributed to the core.
func loadPluginRegistry() contracts.PluginRegistry {
	if appConfig.PluginManifest == "" {
		return nil
	}
	plugins, err := registry.LoadFromFile(appConfig.PluginManifest)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", config.WrapError(err))
		os.Exit(1)
	}
	return plugins
}

// readReportFile parses a JSON array of report events.
func readReportFile(path string) ([]contracts.ReportEvent, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var events []contracts.ReportEvent
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return events, nil
}

// seedPoolFromFile loads a JSON array of report events into the pool.
func seedPoolFromFile(env *pipeline.Environment, path string) error {
	events, err := readReportFile(path)
	if err != nil {
		return err
	}
	for i := range events {
		env.Pool.Add(ingest.RecordFromEvent(&events[i]))
	}
	return nil
}

func main() {
	rootCmd.AddCommand(viewCmd)
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(mcpCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
