package directory

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	dErrors "payrecon/pkg/domain-errors"
)

// Status is the standing of a customer account.
type Status string

const (
	StatusActive    Status = "active"
	StatusSuspended Status = "suspended"
	StatusClosed    Status = "closed"
)

// ParseStatus validates a status filter value.
func ParseStatus(s string) (Status, error) {
	switch st := Status(strings.ToLower(strings.TrimSpace(s))); st {
	case StatusActive, StatusSuspended, StatusClosed:
		return st, nil
	}
	return "", dErrors.New(dErrors.CodeValidation, "status must be one of active, suspended, closed")
}

// Customer is a CRM customer record.
type Customer struct {
	ID                string
	Name              string
	Email             string
	Phone             string
	AccountNumber     string
	Status            Status
	CreditLimit       decimal.Decimal
	CurrentBalance    decimal.Decimal
	CreatedDate       time.Time
	LastPaymentDate   *time.Time
	LastPaymentAmount decimal.Decimal
}

// AvailableCredit is the credit limit minus the current balance.
func (c *Customer) AvailableCredit() decimal.Decimal {
	return c.CreditLimit.Sub(c.CurrentBalance)
}

// BalanceChangeType is the kind of balance movement.
type BalanceChangeType string

const (
	ChangePayment    BalanceChangeType = "payment"
	ChangeCharge     BalanceChangeType = "charge"
	ChangeAdjustment BalanceChangeType = "adjustment"
)

// BalanceUpdate is a request to move a customer's balance.
type BalanceUpdate struct {
	Amount            decimal.Decimal
	Type              BalanceChangeType
	Reference         string
	BankTransactionID string
}

// Validate checks the update before it touches the balance.
func (u BalanceUpdate) Validate() error {
	switch u.Type {
	case ChangePayment, ChangeCharge:
		if !u.Amount.IsPositive() {
			return dErrors.New(dErrors.CodeValidation, "amount must be positive")
		}
	case ChangeAdjustment:
		if u.Amount.IsZero() {
			return dErrors.New(dErrors.CodeValidation, "adjustment amount must not be zero")
		}
	default:
		return dErrors.New(dErrors.CodeValidation, "type must be one of payment, charge, adjustment")
	}
	return nil
}

// Delta returns the signed change applied to the balance.
func (u BalanceUpdate) Delta() decimal.Decimal {
	if u.Type == ChangePayment {
		return u.Amount.Neg()
	}
	return u.Amount
}

// Transaction is an entry in the CRM balance log.
type Transaction struct {
	ID                string
	CustomerID        string
	Amount            decimal.Decimal
	Type              BalanceChangeType
	Reference         string
	BankTransactionID string
	Timestamp         time.Time
	OldBalance        decimal.Decimal
	NewBalance        decimal.Decimal
	ProcessedBy       string
}

// CreditCheckResult reports whether a customer can take on an amount.
type CreditCheckResult struct {
	CustomerID      string
	CreditLimit     decimal.Decimal
	CurrentBalance  decimal.Decimal
	AvailableCredit decimal.Decimal
	RequestedAmount decimal.Decimal
	Approved        bool
	Status          Status
}

// Filter narrows customer listings.
type Filter struct {
	Search string // matched case-insensitively against name and email
	Status Status
}

// Matches reports whether c passes the filter.
func (f Filter) Matches(c *Customer) bool {
	if f.Status != "" && c.Status != f.Status {
		return false
	}
	if f.Search == "" {
		return true
	}
	term := strings.ToLower(f.Search)
	return strings.Contains(strings.ToLower(c.Name), term) || strings.Contains(strings.ToLower(c.Email), term)
}
