// Package broker defines the interface for message brokers and provides implementations.
package broker

import "context"

// Broker abstracts message publishing and consumption between capturing
// processes and the triage agent. Local mode uses the in-memory
// implementation; distributed mode uses Kafka/Redpanda.
type Broker interface {
	// Publish sends a message to a topic with an optional key.
	// The in-memory broker ignores the key; Kafka uses it for partitioning.
	Publish(ctx context.Context, topic string, key string, value []byte) error

	// Subscribe returns a channel for consuming messages from a topic.
	// groupID coordinates consumer groups in Kafka and is ignored in-memory.
	Subscribe(ctx context.Context, topic string, groupID string) (<-chan Message, error)

	// Close shuts down the broker connection gracefully.
	Close() error
}

// Message is a consumed broker message.
type Message struct {
	Topic     string
	Key       string
	Value     []byte
	Offset    int64
	Partition int32
	Timestamp int64
}
