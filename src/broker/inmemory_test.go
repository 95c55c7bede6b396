package broker

import (
	"context"
	"testing"
	"time"

	"faultline-agent/src/contracts"
)

func TestInMemoryPublishSubscribe(t *testing.T) {
	b := NewInMemoryBroker()
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := b.Subscribe(ctx, contracts.TopicReportsRaw, "triage")
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	if err := b.Publish(ctx, contracts.TopicReportsRaw, "proc-1", []byte(`{"id":"r1"}`)); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	select {
	case msg := <-ch:
		if msg.Topic != contracts.TopicReportsRaw || msg.Key != "proc-1" {
			t.Errorf("unexpected message %+v", msg)
		}
		if string(msg.Value) != `{"id":"r1"}` {
			t.Errorf("unexpected payload %q", msg.Value)
		}
	case <-time.After(time.Second):
		t.Fatal("message not delivered")
	}
}

func TestInMemoryFanOut(t *testing.T) {
	b := NewInMemoryBroker()
	defer b.Close()

	ctx := context.Background()
	ch1, _ := b.Subscribe(ctx, contracts.TopicReportsRaw, "a")
	ch2, _ := b.Subscribe(ctx, contracts.TopicReportsRaw, "b")

	b.Publish(ctx, contracts.TopicReportsRaw, "", []byte("x"))

	for i, ch := range []<-chan Message{ch1, ch2} {
		select {
		case <-ch:
		case <-time.After(time.Second):
			t.Fatalf("subscriber %d did not receive", i)
		}
	}
}

func TestInMemoryOffsetsIncrease(t *testing.T) {
	b := NewInMemoryBroker()
	defer b.Close()

	ctx := context.Background()
	ch, _ := b.Subscribe(ctx, contracts.TopicReportsRaw, "")

	b.Publish(ctx, contracts.TopicReportsRaw, "", []byte("first"))
	b.Publish(ctx, contracts.TopicReportsRaw, "", []byte("second"))

	first := <-ch
	second := <-ch
	if second.Offset != first.Offset+1 {
		t.Errorf("offsets not sequential: %d then %d", first.Offset, second.Offset)
	}
}

func TestInMemoryTopicIsolation(t *testing.T) {
	b := NewInMemoryBroker()
	defer b.Close()

	ctx := context.Background()
	ch, _ := b.Subscribe(ctx, contracts.TopicReportsSubmitted, "")

	b.Publish(ctx, contracts.TopicReportsRaw, "", []byte("raw"))

	select {
	case msg := <-ch:
		t.Errorf("subscriber received message from wrong topic: %+v", msg)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestInMemoryClose(t *testing.T) {
	b := NewInMemoryBroker()
	ctx := context.Background()
	ch, _ := b.Subscribe(ctx, contracts.TopicReportsRaw, "")

	if err := b.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	if _, open := <-ch; open {
		t.Error("subscriber channel should close with the broker")
	}
	if err := b.Publish(ctx, contracts.TopicReportsRaw, "", nil); err == nil {
		t.Error("publish after close should fail")
	}
	if _, err := b.Subscribe(ctx, contracts.TopicReportsRaw, ""); err == nil {
		t.Error("subscribe after close should fail")
	}
}

func TestInMemoryCancelledSubscriber(t *testing.T) {
	b := NewInMemoryBroker()
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	ch, _ := b.Subscribe(ctx, contracts.TopicReportsRaw, "")
	cancel()

	// The subscriber channel closes once the context goroutine runs.
	deadline := time.After(time.Second)
	for {
		select {
		case _, open := <-ch:
			if !open {
				return
			}
		case <-deadline:
			t.Fatal("subscriber channel did not close after cancel")
		}
	}
}
