package directory

import (
	"context"
	"slices"
	"strings"
	"sync"

	"payrecon/pkg/platform/sentinel"
)

// InMemoryStore is the directory store used by the mock CRM.
type InMemoryStore struct {
	mu           sync.RWMutex
	customers    map[string]*Customer
	transactions []*Transaction
}

// NewInMemoryStore creates an empty store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{customers: make(map[string]*Customer)}
}

func (s *InMemoryStore) Save(_ context.Context, customer *Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *customer
	s.customers[c.ID] = &c
	return nil
}

func (s *InMemoryStore) List(_ context.Context, filter Filter) ([]*Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Customer, 0, len(s.customers))
	for _, c := range s.customers {
		if filter.Matches(c) {
			cp := *c
			out = append(out, &cp)
		}
	}
	slices.SortFunc(out, func(a, b *Customer) int { return strings.Compare(a.ID, b.ID) })
	return out, nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id string) (*Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.customers[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *InMemoryStore) FindByAccountNumber(_ context.Context, accountNumber string) (*Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.customers {
		if c.AccountNumber == accountNumber {
			cp := *c
			return &cp, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryStore) Update(_ context.Context, id string, fn func(*Customer) error) (*Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.customers[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	working := *c
	if err := fn(&working); err != nil {
		return nil, err
	}
	s.customers[id] = &working
	out := working
	return &out, nil
}

func (s *InMemoryStore) AppendTransaction(_ context.Context, txn *Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := *txn
	s.transactions = append(s.transactions, &t)
	return nil
}

func (s *InMemoryStore) ListTransactions(_ context.Context, customerID string) ([]*Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Transaction, 0, len(s.transactions))
	for _, t := range s.transactions {
		if customerID == "" || t.CustomerID == customerID {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out, nil
}
