package kafka

import (
	"context"
	"log/slog"

	"payrecon/internal/decision"
	"payrecon/internal/platform/kafka/consumer"
)

// Materializer saves consumed decision events into a decision store, giving
// a read model that survives the producing process. Saves are upserts, so
// redelivery is harmless.
type Materializer struct {
	store  decision.Store
	logger *slog.Logger
}

// NewMaterializer creates a materializer over store.
func NewMaterializer(store decision.Store, logger *slog.Logger) *Materializer {
	return &Materializer{store: store, logger: logger}
}

// Handle decodes and stores one event. Undecodable events are logged and
// skipped so they do not block the partition.
func (m *Materializer) Handle(ctx context.Context, msg *consumer.Message) error {
	rec, err := decodeRecord(msg.Value)
	if err != nil {
		m.logger.WarnContext(ctx, "skipping undecodable decision event",
			"key", string(msg.Key),
			"offset", msg.Offset,
			"error", err,
		)
		return nil
	}
	return m.store.Save(ctx, rec)
}

var _ consumer.Handler = (*Materializer)(nil)
