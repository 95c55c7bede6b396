package config

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNoBrokers      = errors.New("no broker addresses configured")
	ErrManifestBroken = errors.New("plugin manifest unreadable")
)

// UserError wraps errors with user-friendly messages
type UserError struct {
	Message string
	Hint    string
	Err     error
}

func (e *UserError) Error() string {
	msg := e.Message
	if e.Hint != "" {
		msg += "\n\nHint: " + e.Hint
	}
	if e.Err != nil {
		msg += fmt.Sprintf("\n\nDetails: %v", e.Err)
	}
	return msg
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// WrapError converts setup errors to user-friendly messages
func WrapError(err error) error {
	if err == nil {
		return nil
	}

	msg := err.Error()

	if errors.Is(err, ErrNoBrokers) {
		return &UserError{
			Message: "No Kafka brokers configured",
			Hint:    "Set KAFKA_BROKERS to a comma-separated list of seed brokers.\n  Example: export KAFKA_BROKERS=localhost:9092",
			Err:     err,
		}
	}

	if errors.Is(err, ErrManifestBroken) {
		return &UserError{
			Message: "Failed to load the plugin manifest",
			Hint:    "PLUGIN_MANIFEST must point to a JSON file listing installed plugins and their class prefixes.",
			Err:     err,
		}
	}

	if strings.Contains(msg, "connect") && strings.Contains(msg, "Kafka") {
		return &UserError{
			Message: "Could not reach the Kafka cluster",
			Hint:    "Check that the brokers in KAFKA_BROKERS are up and reachable from this host.",
			Err:     err,
		}
	}

	if strings.Contains(msg, "archive") || strings.Contains(msg, "postgres") {
		return &UserError{
			Message: "Could not open the report archive",
			Hint:    "Check POSTGRES_DSN, or unset it to run without a durable archive.",
			Err:     err,
		}
	}

	return err
}
