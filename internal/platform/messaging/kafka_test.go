package messaging

import (
	"context"
	"testing"
	"time"

	contractsv1 "agora/contracts/gen/events/v1"

	"go.uber.org/goleak"
)

func TestKafkaFanOutAndUnsubscribe(t *testing.T) {
	defer goleak.VerifyNone(t)

	bus, err := NewKafka([]string{"localhost:9092"}, nil)
	if err != nil {
		t.Fatalf("new kafka: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	received := make(chan contractsv1.VoteRecordCreated, 1)
	if err := bus.Subscribe(ctx, contractsv1.TopicVoteRecordCreated, "test-cg", func(_ context.Context, event contractsv1.Envelope) error {
		var data contractsv1.VoteRecordCreated
		if err := event.DecodeData(&data); err != nil {
			return err
		}
		received <- data
		return nil
	}); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	event := contractsv1.Envelope{
		EventID:   "event-1",
		EventType: contractsv1.TopicVoteRecordCreated,
		Data:      []byte(`{"record_id":"record-1","weight":2}`),
	}
	if err := bus.Publish(context.Background(), contractsv1.TopicVoteRecordCreated, event); err != nil {
		t.Fatalf("publish: %v", err)
	}
	select {
	case data := <-received:
		if data.RecordID != "record-1" || data.Weight != 2 {
			t.Fatalf("unexpected payload %+v", data)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("event was not delivered")
	}

	cancel()
	deadline := time.Now().Add(2 * time.Second)
	for bus.SubscriberCount(contractsv1.TopicVoteRecordCreated) != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("subscriber was not removed after cancel")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
