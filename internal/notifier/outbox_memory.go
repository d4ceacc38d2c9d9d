package notifier

import (
	"context"
	"sync"
	"time"

	"payrecon/pkg/platform/sentinel"
)

// InMemoryOutbox keeps emails in process memory.
type InMemoryOutbox struct {
	mu     sync.RWMutex
	emails []*Email
	byID   map[string]*Email
}

// NewInMemoryOutbox creates an empty outbox.
func NewInMemoryOutbox() *InMemoryOutbox {
	return &InMemoryOutbox{byID: make(map[string]*Email)}
}

func (o *InMemoryOutbox) Append(_ context.Context, email *Email) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	e := cloneEmail(email)
	o.emails = append(o.emails, e)
	o.byID[e.ID] = e
	return nil
}

func (o *InMemoryOutbox) List(_ context.Context) ([]*Email, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	out := make([]*Email, 0, len(o.emails))
	for i := len(o.emails) - 1; i >= 0; i-- {
		out = append(out, cloneEmail(o.emails[i]))
	}
	return out, nil
}

func (o *InMemoryOutbox) Find(_ context.Context, id string) (*Email, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	e, ok := o.byID[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneEmail(e), nil
}

func (o *InMemoryOutbox) MarkRead(_ context.Context, id string, at time.Time) (*Email, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	e, ok := o.byID[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	e.Read = true
	e.ReadAt = &at
	return cloneEmail(e), nil
}
