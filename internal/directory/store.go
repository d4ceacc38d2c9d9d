package directory

import "context"

// Store persists customers and their balance log.
type Store interface {
	Save(ctx context.Context, customer *Customer) error
	List(ctx context.Context, filter Filter) ([]*Customer, error)
	// FindByID and FindByAccountNumber return sentinel.ErrNotFound when absent.
	FindByID(ctx context.Context, id string) (*Customer, error)
	FindByAccountNumber(ctx context.Context, accountNumber string) (*Customer, error)
	// Update applies fn to the customer atomically. When fn returns an error
	// nothing is written.
	Update(ctx context.Context, id string, fn func(*Customer) error) (*Customer, error)
	AppendTransaction(ctx context.Context, txn *Transaction) error
	ListTransactions(ctx context.Context, customerID string) ([]*Transaction, error)
}
