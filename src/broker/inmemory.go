package broker

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// subscriberBuffer bounds each subscriber channel. A slow consumer drops
// messages rather than blocking publishers.
const subscriberBuffer = 256

// InMemoryBroker is a channel-based Broker for single-process mode and
// tests. Every subscriber of a topic receives every message.
type InMemoryBroker struct {
	mu          sync.RWMutex
	subscribers map[string][]chan Message
	offsets     map[string]int64
	closed      bool
}

// NewInMemoryBroker creates an empty in-memory broker.
func NewInMemoryBroker() *InMemoryBroker {
	return &InMemoryBroker{
		subscribers: make(map[string][]chan Message),
		offsets:     make(map[string]int64),
	}
}

// Publish fans the message out to all current subscribers of the topic.
func (b *InMemoryBroker) Publish(ctx context.Context, topic string, key string, value []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return fmt.Errorf("broker is closed")
	}

	offset := b.offsets[topic]
	b.offsets[topic] = offset + 1

	msg := Message{
		Topic:     topic,
		Key:       key,
		Value:     value,
		Offset:    offset,
		Timestamp: time.Now().UnixMilli(),
	}

	for _, ch := range b.subscribers[topic] {
		select {
		case ch <- msg:
		default:
			// Subscriber buffer full; drop rather than block.
		}
	}
	return nil
}

// Subscribe registers a new consumer channel for the topic. The channel
// closes when ctx is cancelled or the broker closes.
func (b *InMemoryBroker) Subscribe(ctx context.Context, topic string, groupID string) (<-chan Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, fmt.Errorf("broker is closed")
	}

	ch := make(chan Message, subscriberBuffer)
	b.subscribers[topic] = append(b.subscribers[topic], ch)

	go func() {
		<-ctx.Done()
		b.removeSubscriber(topic, ch)
	}()

	return ch, nil
}

func (b *InMemoryBroker) removeSubscriber(topic string, ch chan Message) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.subscribers[topic]
	for i, existing := range subs {
		if existing == ch {
			b.subscribers[topic] = append(subs[:i], subs[i+1:]...)
			close(ch)
			return
		}
	}
}

// Close shuts down all subscriber channels.
func (b *InMemoryBroker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	for topic, subs := range b.subscribers {
		for _, ch := range subs {
			close(ch)
		}
		delete(b.subscribers, topic)
	}
	return nil
}
