package notifier

import (
	"context"
	"time"
)

// Outbox holds sent emails.
type Outbox interface {
	Append(ctx context.Context, email *Email) error
	// List returns emails newest first.
	List(ctx context.Context) ([]*Email, error)
	// Find returns sentinel.ErrNotFound when absent.
	Find(ctx context.Context, id string) (*Email, error)
	MarkRead(ctx context.Context, id string, at time.Time) (*Email, error)
}
