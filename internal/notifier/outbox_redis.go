package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"payrecon/pkg/platform/sentinel"
)

const defaultKeyPrefix = "payrecon:notifier"

// RedisOutbox stores emails as JSON in a hash, ordered by a sorted set on
// send time.
type RedisOutbox struct {
	client   *redis.Client
	emails   string
	timeline string
}

// NewRedisOutbox creates a Redis-backed outbox under the given key prefix.
func NewRedisOutbox(client *redis.Client, prefix string) *RedisOutbox {
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &RedisOutbox{
		client:   client,
		emails:   prefix + ":emails",
		timeline: prefix + ":timeline",
	}
}

func (o *RedisOutbox) Append(ctx context.Context, email *Email) error {
	raw, err := json.Marshal(email)
	if err != nil {
		return fmt.Errorf("encode email: %w", err)
	}
	_, err = o.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, o.emails, email.ID, raw)
		pipe.ZAdd(ctx, o.timeline, redis.Z{Score: float64(email.Timestamp.UnixNano()), Member: email.ID})
		return nil
	})
	if err != nil {
		return fmt.Errorf("append email: %w", err)
	}
	return nil
}

func (o *RedisOutbox) List(ctx context.Context) ([]*Email, error) {
	ids, err := o.client.ZRevRange(ctx, o.timeline, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read timeline: %w", err)
	}
	if len(ids) == 0 {
		return []*Email{}, nil
	}
	values, err := o.client.HMGet(ctx, o.emails, ids...).Result()
	if err != nil {
		return nil, fmt.Errorf("read emails: %w", err)
	}
	out := make([]*Email, 0, len(values))
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var e Email
		if err := json.Unmarshal([]byte(raw), &e); err != nil {
			return nil, fmt.Errorf("decode email: %w", err)
		}
		out = append(out, &e)
	}
	return out, nil
}

func (o *RedisOutbox) Find(ctx context.Context, id string) (*Email, error) {
	raw, err := o.client.HGet(ctx, o.emails, id).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("read email: %w", err)
	}
	var e Email
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		return nil, fmt.Errorf("decode email: %w", err)
	}
	return &e, nil
}

// MarkRead rewrites the email under WATCH so concurrent marks do not lose
// each other's writes.
func (o *RedisOutbox) MarkRead(ctx context.Context, id string, at time.Time) (*Email, error) {
	var updated *Email
	err := o.client.Watch(ctx, func(tx *redis.Tx) error {
		raw, err := tx.HGet(ctx, o.emails, id).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return sentinel.ErrNotFound
			}
			return err
		}
		var e Email
		if err := json.Unmarshal([]byte(raw), &e); err != nil {
			return fmt.Errorf("decode email: %w", err)
		}
		e.Read = true
		e.ReadAt = &at
		next, err := json.Marshal(&e)
		if err != nil {
			return fmt.Errorf("encode email: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, o.emails, id, next)
			return nil
		})
		if err == nil {
			updated = &e
		}
		return err
	}, o.emails)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("mark email read: %w", err)
	}
	return updated, nil
}
