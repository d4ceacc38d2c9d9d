// Package consumer runs a franz-go consumer group loop and hands each record
// to a Handler, committing only what was handled.
package consumer

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
)

const (
	defaultMinBackoff = 100 * time.Millisecond
	defaultMaxBackoff = 5 * time.Second
)

// Message is the transport-neutral view of a consumed record.
type Message struct {
	Topic     string
	Key       []byte
	Value     []byte
	Partition int32
	Offset    int64
	Timestamp time.Time
}

// Handler processes one message. A returned error leaves the record
// uncommitted; the consumer rewinds its partition to that offset, backs off,
// and delivers it again. Later records of the same partition wait behind it.
type Handler interface {
	Handle(ctx context.Context, msg *Message) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, msg *Message) error

func (f HandlerFunc) Handle(ctx context.Context, msg *Message) error { return f(ctx, msg) }

// Client is the slice of *kgo.Client the consumer drives.
type Client interface {
	PollFetches(ctx context.Context) kgo.Fetches
	CommitRecords(ctx context.Context, rs ...*kgo.Record) error
	SetOffsets(offsets map[string]map[int32]kgo.EpochOffset)
}

// Consumer drives a handler from a kgo client configured with a consumer group
// and auto-commit disabled.
type Consumer struct {
	client     Client
	handler    Handler
	logger     *slog.Logger
	minBackoff time.Duration
	maxBackoff time.Duration
}

// Option configures a Consumer.
type Option func(*Consumer)

// WithRetryBackoff bounds the wait after a handler failure. The wait doubles
// per consecutive failing poll and resets once a poll handles cleanly.
func WithRetryBackoff(lo, hi time.Duration) Option {
	return func(c *Consumer) {
		if lo > 0 {
			c.minBackoff = lo
		}
		if hi > 0 {
			c.maxBackoff = hi
		}
	}
}

// GroupOpts returns the kgo options a Consumer expects on its client.
func GroupOpts(group string, topics ...string) []kgo.Opt {
	return []kgo.Opt{
		kgo.ConsumerGroup(group),
		kgo.ConsumeTopics(topics...),
		kgo.DisableAutoCommit(),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	}
}

// New creates a consumer.
func New(client Client, handler Handler, logger *slog.Logger, opts ...Option) *Consumer {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Consumer{
		client:     client,
		handler:    handler,
		logger:     logger,
		minBackoff: defaultMinBackoff,
		maxBackoff: defaultMaxBackoff,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.maxBackoff < c.minBackoff {
		c.maxBackoff = c.minBackoff
	}
	return c
}

// Run polls until ctx is cancelled or the client is closed. Handler failures
// never end the loop.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := c.minBackoff
	for {
		fetches := c.client.PollFetches(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if fetches.IsClientClosed() {
			return nil
		}
		fetches.EachError(func(topic string, partition int32, err error) {
			if !errors.Is(err, context.Canceled) {
				c.logger.WarnContext(ctx, "fetch error", "topic", topic, "partition", partition, "error", err)
			}
		})

		handled, rewind := c.process(ctx, fetches)
		if len(handled) > 0 {
			if err := c.client.CommitRecords(ctx, handled...); err != nil {
				c.logger.WarnContext(ctx, "commit failed", "records", len(handled), "error", err)
			}
		}
		if len(rewind) == 0 {
			backoff = c.minBackoff
			continue
		}

		c.client.SetOffsets(rewind)
		if err := sleep(ctx, backoff); err != nil {
			return err
		}
		backoff = min(backoff*2, c.maxBackoff)
	}
}

// process hands records to the handler partition by partition. The first
// failure in a partition stops that partition for this poll and is returned
// as the offset to resume from.
func (c *Consumer) process(ctx context.Context, fetches kgo.Fetches) ([]*kgo.Record, map[string]map[int32]kgo.EpochOffset) {
	var handled []*kgo.Record
	var rewind map[string]map[int32]kgo.EpochOffset

	fetches.EachPartition(func(p kgo.FetchTopicPartition) {
		for _, r := range p.Records {
			if err := c.handler.Handle(ctx, toMessage(r)); err != nil {
				c.logger.WarnContext(ctx, "handler failed, record will be redelivered",
					"topic", r.Topic,
					"partition", r.Partition,
					"offset", r.Offset,
					"error", err,
				)
				if rewind == nil {
					rewind = make(map[string]map[int32]kgo.EpochOffset)
				}
				if rewind[r.Topic] == nil {
					rewind[r.Topic] = make(map[int32]kgo.EpochOffset)
				}
				rewind[r.Topic][r.Partition] = kgo.EpochOffset{Epoch: r.LeaderEpoch, Offset: r.Offset}
				return
			}
			handled = append(handled, r)
		}
	})
	return handled, rewind
}

func toMessage(r *kgo.Record) *Message {
	return &Message{
		Topic:     r.Topic,
		Key:       r.Key,
		Value:     r.Value,
		Partition: r.Partition,
		Offset:    r.Offset,
		Timestamp: r.Timestamp,
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
