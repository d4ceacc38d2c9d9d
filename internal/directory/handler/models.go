package handler

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"payrecon/internal/directory"
	dErrors "payrecon/pkg/domain-errors"
)

// CustomerResponse is the wire form of a CRM customer.
type CustomerResponse struct {
	ID                string          `json:"id"`
	Name              string          `json:"name"`
	Email             string          `json:"email"`
	Phone             string          `json:"phone"`
	AccountNumber     string          `json:"account_number"`
	Status            string          `json:"status"`
	CreditLimit       decimal.Decimal `json:"credit_limit"`
	CurrentBalance    decimal.Decimal `json:"current_balance"`
	CreatedDate       string          `json:"created_date"`
	LastPaymentDate   *time.Time      `json:"last_payment_date"`
	LastPaymentAmount decimal.Decimal `json:"last_payment_amount"`
}

func toCustomerResponse(c *directory.Customer) CustomerResponse {
	return CustomerResponse{
		ID:                c.ID,
		Name:              c.Name,
		Email:             c.Email,
		Phone:             c.Phone,
		AccountNumber:     c.AccountNumber,
		Status:            string(c.Status),
		CreditLimit:       c.CreditLimit,
		CurrentBalance:    c.CurrentBalance,
		CreatedDate:       c.CreatedDate.Format(time.DateOnly),
		LastPaymentDate:   c.LastPaymentDate,
		LastPaymentAmount: c.LastPaymentAmount,
	}
}

// CustomerListResponse is returned by GET /customers.
type CustomerListResponse struct {
	Customers []CustomerResponse `json:"customers"`
	Total     int                `json:"total"`
	Timestamp time.Time          `json:"timestamp"`
}

// CreditCheckResponse is returned by GET /customers/{id}/credit-check.
type CreditCheckResponse struct {
	CustomerID      string          `json:"customer_id"`
	CreditLimit     decimal.Decimal `json:"credit_limit"`
	CurrentBalance  decimal.Decimal `json:"current_balance"`
	AvailableCredit decimal.Decimal `json:"available_credit"`
	RequestedAmount decimal.Decimal `json:"requested_amount"`
	Approved        bool            `json:"approved"`
	Status          string          `json:"status"`
}

// UpdateBalanceRequest is the body of POST /customers/{id}/update-balance.
type UpdateBalanceRequest struct {
	Amount            decimal.Decimal `json:"amount"`
	Type              string          `json:"type"`
	Reference         string          `json:"reference"`
	BankTransactionID string          `json:"bank_transaction_id"`
}

// Validate normalises the request; amount rules live in the domain.
func (r *UpdateBalanceRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Type = strings.ToLower(strings.TrimSpace(r.Type))
	if r.Type == "" {
		r.Type = string(directory.ChangePayment)
	}
	if len(r.Reference) > 128 || len(r.BankTransactionID) > 128 {
		return dErrors.New(dErrors.CodeValidation, "reference fields must be at most 128 characters")
	}
	return nil
}

func (r *UpdateBalanceRequest) toUpdate() directory.BalanceUpdate {
	return directory.BalanceUpdate{
		Amount:            r.Amount,
		Type:              directory.BalanceChangeType(r.Type),
		Reference:         r.Reference,
		BankTransactionID: r.BankTransactionID,
	}
}

// TransactionResponse is the wire form of a balance log entry.
type TransactionResponse struct {
	ID                string          `json:"id"`
	CustomerID        string          `json:"customer_id"`
	Amount            decimal.Decimal `json:"amount"`
	Type              string          `json:"type"`
	Reference         string          `json:"reference"`
	BankTransactionID string          `json:"bank_transaction_id"`
	Timestamp         time.Time       `json:"timestamp"`
	OldBalance        decimal.Decimal `json:"old_balance"`
	NewBalance        decimal.Decimal `json:"new_balance"`
	ProcessedBy       string          `json:"processed_by"`
}

func toTransactionResponse(t *directory.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:                t.ID,
		CustomerID:        t.CustomerID,
		Amount:            t.Amount,
		Type:              string(t.Type),
		Reference:         t.Reference,
		BankTransactionID: t.BankTransactionID,
		Timestamp:         t.Timestamp,
		OldBalance:        t.OldBalance,
		NewBalance:        t.NewBalance,
		ProcessedBy:       t.ProcessedBy,
	}
}

// UpdateBalanceResponse is returned after a balance change.
type UpdateBalanceResponse struct {
	Transaction   TransactionResponse `json:"transaction"`
	Customer      CustomerResponse    `json:"customer"`
	BalanceChange decimal.Decimal     `json:"balance_change"`
}
