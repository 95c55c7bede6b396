// Package config provides configuration management for the Faultline agent.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	// KafkaBrokers is the seed broker list for distributed mode. Empty means
	// local in-memory mode.
	KafkaBrokers []string
	// PostgresDSN is the archive database connection string. Empty disables
	// the durable archive.
	PostgresDSN string
	// ReportEndpoint is where the core submitter posts reports.
	ReportEndpoint string
	// DevDirectoryEndpoint serves the developer list for assignee pickers.
	DevDirectoryEndpoint string
	// ReporterUsername identifies submitted reports; empty submits
	// anonymously.
	ReporterUsername string
	// PluginManifest is the path to the monitored application's plugin
	// manifest; empty means every failure is attributed to the core.
	PluginManifest string
}

// LoadFromEnv loads configuration from environment variables, reading a
// local .env file first when present.
func LoadFromEnv() (*Config, error) {
	// Missing .env is fine; explicit environment wins either way.
	_ = godotenv.Load()

	cfg := &Config{
		PostgresDSN:          os.Getenv("POSTGRES_DSN"),
		ReportEndpoint:       os.Getenv("REPORT_ENDPOINT"),
		DevDirectoryEndpoint: os.Getenv("DEV_DIRECTORY_ENDPOINT"),
		ReporterUsername:     os.Getenv("REPORTER_USERNAME"),
		PluginManifest:       os.Getenv("PLUGIN_MANIFEST"),
	}

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		for _, addr := range strings.Split(brokers, ",") {
			addr = strings.TrimSpace(addr)
			if addr == "" {
				continue
			}
			cfg.KafkaBrokers = append(cfg.KafkaBrokers, addr)
		}
		if len(cfg.KafkaBrokers) == 0 {
			return nil, fmt.Errorf("KAFKA_BROKERS is set but empty: %w", ErrNoBrokers)
		}
	}

	return cfg, nil
}

// Distributed reports whether the agent should use Kafka instead of the
// in-memory broker.
func (c *Config) Distributed() bool {
	return len(c.KafkaBrokers) > 0
}
