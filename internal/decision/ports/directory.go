package ports

import (
	"context"

	"github.com/shopspring/decimal"
)

// DirectoryPort is the decision engine's view of the customer directory (CRM).
// Implementations may call the in-process directory service or a remote REST API.
type DirectoryPort interface {
	// GetByAccountReference returns the customer owning the account reference.
	// Returns nil, nil when no customer is registered for it.
	GetByAccountReference(ctx context.Context, accountReference string) (*Customer, error)

	// CreditCheck reports the credit headroom of a customer for an amount.
	CreditCheck(ctx context.Context, customerID string, amount decimal.Decimal) (*CreditCheck, error)
}

// CustomerStatus is the account standing of a customer.
type CustomerStatus string

const (
	CustomerActive    CustomerStatus = "active"
	CustomerSuspended CustomerStatus = "suspended"
	CustomerClosed    CustomerStatus = "closed"
)

// Customer is a read-only snapshot of a directory entry (port model).
type Customer struct {
	ID               string
	Name             string
	Email            string
	AccountReference string
	Status           CustomerStatus
	CreditLimit      decimal.Decimal
	CurrentBalance   decimal.Decimal
}

// IsActive reports whether the customer may have payments auto-processed.
func (c Customer) IsActive() bool {
	return c.Status == CustomerActive
}

// CreditCheck is the result of a directory credit check (port model).
type CreditCheck struct {
	CustomerID      string
	AvailableCredit decimal.Decimal
	Approved        bool
}
