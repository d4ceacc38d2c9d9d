package store

import (
	"context"
	"slices"
	"sync"

	"payrecon/internal/decision"
	"payrecon/pkg/platform/sentinel"
)

// InMemoryStore keeps decision records in process memory.
// Records are copied in and out so callers cannot alias stored state.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[string]decision.Record
}

// NewInMemory creates an empty in-memory decision store.
func NewInMemory() *InMemoryStore {
	return &InMemoryStore{records: make(map[string]decision.Record)}
}

func (s *InMemoryStore) Save(_ context.Context, record decision.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.TransactionID] = cloneRecord(record)
	return nil
}

func (s *InMemoryStore) FindByTransactionID(_ context.Context, transactionID string) (*decision.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[transactionID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	out := cloneRecord(rec)
	return &out, nil
}

// Count returns the number of stored records.
func (s *InMemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func cloneRecord(r decision.Record) decision.Record {
	r.Reasons = slices.Clone(r.Reasons)
	r.AuditReasons = slices.Clone(r.AuditReasons)
	lines := make([]decision.AllocationLine, len(r.Allocation))
	for i, l := range r.Allocation {
		lines[i] = l
		if l.InvoiceID != nil {
			id := *l.InvoiceID
			lines[i].InvoiceID = &id
		}
	}
	r.Allocation = lines
	return r
}
