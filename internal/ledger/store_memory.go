package ledger

import (
	"context"
	"slices"
	"strings"
	"sync"

	"payrecon/pkg/platform/sentinel"
)

// InMemoryStore is the ledger store used by the mock ERP.
type InMemoryStore struct {
	mu       sync.RWMutex
	invoices map[string]*Invoice
	payments []*Payment
}

// NewInMemoryStore creates an empty store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{invoices: make(map[string]*Invoice)}
}

func (s *InMemoryStore) SaveInvoice(_ context.Context, invoice *Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invoices[invoice.ID] = cloneInvoice(invoice)
	return nil
}

func (s *InMemoryStore) ListInvoices(_ context.Context, filter InvoiceFilter) ([]*Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Invoice, 0, len(s.invoices))
	for _, inv := range s.invoices {
		if filter.Matches(inv) {
			out = append(out, cloneInvoice(inv))
		}
	}
	slices.SortFunc(out, func(a, b *Invoice) int { return strings.Compare(a.ID, b.ID) })
	return out, nil
}

func (s *InMemoryStore) FindInvoice(_ context.Context, id string) (*Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	inv, ok := s.invoices[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneInvoice(inv), nil
}

func (s *InMemoryStore) RecordPayment(_ context.Context, invoiceID string, fn func(*Invoice) (*Payment, error)) (*Invoice, *Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.invoices[invoiceID]
	if !ok {
		return nil, nil, sentinel.ErrNotFound
	}
	working := cloneInvoice(inv)
	payment, err := fn(working)
	if err != nil {
		return nil, nil, err
	}
	s.invoices[invoiceID] = working
	p := *payment
	s.payments = append(s.payments, &p)
	return cloneInvoice(working), payment, nil
}

func (s *InMemoryStore) ListPayments(_ context.Context, invoiceID string) ([]*Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Payment, 0)
	for _, p := range s.payments {
		if invoiceID == "" || p.InvoiceID == invoiceID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func cloneInvoice(inv *Invoice) *Invoice {
	cp := *inv
	cp.LineItems = slices.Clone(inv.LineItems)
	cp.Payments = nil
	return &cp
}
