package ledger

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	dErrors "payrecon/pkg/domain-errors"
)

// settledTolerance is the outstanding amount at or below which an invoice
// counts as paid.
var settledTolerance = decimal.RequireFromString("0.01")

// Status is the settlement state of an invoice.
type Status string

const (
	StatusPending       Status = "pending"
	StatusPartiallyPaid Status = "partially_paid"
	StatusPaid          Status = "paid"
	StatusOverdue       Status = "overdue"
)

// ParseStatus validates a status filter value.
func ParseStatus(s string) (Status, error) {
	switch st := Status(strings.ToLower(strings.TrimSpace(s))); st {
	case StatusPending, StatusPartiallyPaid, StatusPaid, StatusOverdue:
		return st, nil
	}
	return "", dErrors.New(dErrors.CodeValidation, "status must be one of pending, partially_paid, paid, overdue")
}

// IsOutstanding reports whether invoices in this state still expect payment.
func (s Status) IsOutstanding() bool {
	return s == StatusPending || s == StatusPartiallyPaid || s == StatusOverdue
}

// LineItem is one billed product on an invoice.
type LineItem struct {
	Product   string          `json:"product"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// Invoice is an ERP invoice.
type Invoice struct {
	ID                string
	CustomerAccount   string
	Amount            decimal.Decimal
	PaidAmount        decimal.Decimal
	Status            Status
	DueDate           time.Time
	IssueDate         time.Time
	Description       string
	PaymentTerms      string
	PaidDate          *time.Time
	LastPaymentDate   *time.Time
	LastPaymentAmount decimal.Decimal
	LineItems         []LineItem
	Payments          []*Payment // filled by the service on reads
}

// Outstanding returns the amount still due.
func (i *Invoice) Outstanding() decimal.Decimal {
	return i.Amount.Sub(i.PaidAmount)
}

// ApplyPayment settles amount against the invoice and moves its status.
// The invoice is paid once at most settledTolerance remains.
func (i *Invoice) ApplyPayment(amount decimal.Decimal, at time.Time) {
	remaining := i.Outstanding().Sub(amount)
	if remaining.LessThanOrEqual(settledTolerance) {
		i.Status = StatusPaid
		i.PaidAmount = i.Amount
		paid := at
		i.PaidDate = &paid
	} else {
		i.Status = StatusPartiallyPaid
		i.PaidAmount = i.Amount.Sub(remaining)
	}
	last := at
	i.LastPaymentDate = &last
	i.LastPaymentAmount = amount
}

// Payment is a payment recorded against an invoice.
type Payment struct {
	ID                string
	InvoiceID         string
	CustomerAccount   string
	Amount            decimal.Decimal
	Method            string
	Reference         string
	BankTransactionID string
	Timestamp         time.Time
	Status            string
	ProcessedBy       string
	OutstandingBefore decimal.Decimal
	OutstandingAfter  decimal.Decimal
}

// PaymentRequest asks the ledger to record a payment.
type PaymentRequest struct {
	Amount            decimal.Decimal
	Method            string
	Reference         string
	BankTransactionID string
}

// PaymentReceipt is the result of recording a payment.
type PaymentReceipt struct {
	Payment          *Payment
	Invoice          *Invoice
	RemainingBalance decimal.Decimal
}

// InvoiceFilter narrows invoice listings.
type InvoiceFilter struct {
	Status          Status
	CustomerAccount string
}

// Matches reports whether inv passes the filter.
func (f InvoiceFilter) Matches(inv *Invoice) bool {
	if f.Status != "" && inv.Status != f.Status {
		return false
	}
	if f.CustomerAccount != "" && inv.CustomerAccount != f.CustomerAccount {
		return false
	}
	return true
}
