package ledger

import "context"

// Store persists invoices and payments.
type Store interface {
	SaveInvoice(ctx context.Context, invoice *Invoice) error
	ListInvoices(ctx context.Context, filter InvoiceFilter) ([]*Invoice, error)
	// FindInvoice returns sentinel.ErrNotFound when absent.
	FindInvoice(ctx context.Context, id string) (*Invoice, error)
	// RecordPayment locks the invoice, lets fn mutate it and build the payment,
	// then writes both. Nothing is written when fn fails.
	RecordPayment(ctx context.Context, invoiceID string, fn func(*Invoice) (*Payment, error)) (*Invoice, *Payment, error)
	// ListPayments returns payments in recording order; an empty invoiceID lists all.
	ListPayments(ctx context.Context, invoiceID string) ([]*Payment, error)
}
