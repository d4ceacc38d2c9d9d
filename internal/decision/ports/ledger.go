package ports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// LedgerPort is the decision engine's read-only view of the invoice ledger (ERP).
// The engine never records payments through this port.
type LedgerPort interface {
	// OutstandingInvoices returns the pending, partially paid and overdue
	// invoices billed to the account reference.
	OutstandingInvoices(ctx context.Context, accountReference string) ([]Invoice, error)

	// InvoiceByReference returns the invoice with the given identifier.
	// Returns nil, nil when no invoice carries that identifier.
	InvoiceByReference(ctx context.Context, reference string) (*Invoice, error)
}

// InvoiceStatus is the settlement state of an invoice.
type InvoiceStatus string

const (
	InvoicePending       InvoiceStatus = "pending"
	InvoicePartiallyPaid InvoiceStatus = "partially_paid"
	InvoicePaid          InvoiceStatus = "paid"
	InvoiceOverdue       InvoiceStatus = "overdue"
)

// IsOutstanding reports whether an invoice in this state still expects payment.
func (s InvoiceStatus) IsOutstanding() bool {
	switch s {
	case InvoicePending, InvoicePartiallyPaid, InvoiceOverdue:
		return true
	default:
		return false
	}
}

// Invoice is a read-only snapshot of a ledger invoice (port model).
type Invoice struct {
	ID               string
	AccountReference string
	Amount           decimal.Decimal
	AmountDue        decimal.Decimal
	Status           InvoiceStatus
	DueDate          time.Time
	IssueDate        time.Time
	Description      string
	PaymentHistory   []Payment
}

// Payment is a payment already applied to an invoice (port model).
type Payment struct {
	ID                string
	InvoiceID         string
	Amount            decimal.Decimal
	Method            string
	Reference         string
	ExternalReference string
	Timestamp         time.Time
}
