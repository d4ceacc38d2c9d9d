package kafka

import (
	"context"
	"fmt"

	"github.com/twmb/franz-go/pkg/kgo"

	"payrecon/internal/decision"
)

// Publisher implements decision.OutcomePublisher with a synchronous produce
// keyed by transaction id, so every decision of a transaction lands on one
// partition in order.
type Publisher struct {
	client *kgo.Client
	topic  string
}

// NewPublisher creates a publisher for topic.
func NewPublisher(client *kgo.Client, topic string) *Publisher {
	return &Publisher{client: client, topic: topic}
}

func (p *Publisher) Publish(ctx context.Context, record decision.Record) error {
	value, err := encodeRecord(record)
	if err != nil {
		return fmt.Errorf("encode decision event: %w", err)
	}
	rec := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(record.TransactionID),
		Value: value,
		Headers: []kgo.RecordHeader{
			{Key: "action", Value: []byte(record.Action)},
		},
	}
	if err := p.client.ProduceSync(ctx, rec).FirstErr(); err != nil {
		return fmt.Errorf("publish decision %s: %w", record.TransactionID, err)
	}
	return nil
}

var _ decision.OutcomePublisher = (*Publisher)(nil)
