package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	dErrors "payrecon/pkg/domain-errors"
	"payrecon/pkg/requestcontext"
)

// DefaultHighValueOutstanding is the outstanding balance above which a
// transaction check recommends manual review.
var DefaultHighValueOutstanding = decimal.NewFromInt(50000)

// TransactionKind is the direction of money in a transaction check.
type TransactionKind string

const (
	KindPayment TransactionKind = "payment"
	KindCharge  TransactionKind = "charge"
	KindRefund  TransactionKind = "refund"
)

// ParseTransactionKind validates a kind, defaulting blank input to payment.
func ParseTransactionKind(s string) (TransactionKind, error) {
	switch k := TransactionKind(strings.ToLower(strings.TrimSpace(s))); k {
	case "":
		return KindPayment, nil
	case KindPayment, KindCharge, KindRefund:
		return k, nil
	}
	return "", dErrors.New(dErrors.CodeValidation, "type must be one of payment, charge, refund")
}

// ValidationStatus grades a transaction against the account's invoices.
// Later checks override earlier ones: high_value beats attention_required
// beats warning beats approved.
type ValidationStatus string

const (
	ValidationApproved          ValidationStatus = "approved"
	ValidationWarning           ValidationStatus = "warning"
	ValidationAttentionRequired ValidationStatus = "attention_required"
	ValidationHighValue         ValidationStatus = "high_value"
)

// TransactionCheck asks whether a transaction fits an account's invoices.
type TransactionCheck struct {
	AccountNumber string
	Amount        decimal.Decimal
	Kind          TransactionKind
}

// TransactionValidation is the ledger's opinion of a transaction.
type TransactionValidation struct {
	AccountNumber     string
	Amount            decimal.Decimal
	Kind              TransactionKind
	OutstandingAmount decimal.Decimal
	InvoiceCount      int
	OverdueCount      int
	Overpayment       bool
	Status            ValidationStatus
	Notes             []string
	Timestamp         time.Time
}

// CashFlowAnalysis summarises receivables across every account.
type CashFlowAnalysis struct {
	PendingReceivables decimal.Decimal
	OverdueAmount      decimal.Decimal
	OverdueCount       int
	OverdueInvoices    []*Invoice
	OutstandingBy      map[Status]decimal.Decimal
	Timestamp          time.Time
}

// ValidateTransaction grades a transaction against the account's open
// invoices. It reads only; nothing is posted.
func (s *Service) ValidateTransaction(ctx context.Context, check TransactionCheck) (*TransactionValidation, error) {
	account := strings.TrimSpace(check.AccountNumber)
	if account == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "account number is required")
	}
	if check.Amount.IsNegative() {
		return nil, dErrors.New(dErrors.CodeValidation, "amount must not be negative")
	}
	if check.Kind == "" {
		check.Kind = KindPayment
	}

	invoices, err := s.store.ListInvoices(ctx, InvoiceFilter{CustomerAccount: account})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list invoices")
	}

	result := &TransactionValidation{
		AccountNumber:     account,
		Amount:            check.Amount,
		Kind:              check.Kind,
		OutstandingAmount: decimal.Zero,
		InvoiceCount:      len(invoices),
		Status:            ValidationApproved,
		Notes:             []string{},
		Timestamp:         requestcontext.Now(ctx),
	}
	for _, inv := range invoices {
		if inv.Status.IsOutstanding() {
			result.OutstandingAmount = result.OutstandingAmount.Add(inv.Outstanding())
		}
		if inv.Status == StatusOverdue {
			result.OverdueCount++
		}
	}

	if check.Kind == KindPayment && check.Amount.GreaterThan(result.OutstandingAmount) {
		result.Overpayment = true
		result.Status = ValidationWarning
		result.Notes = append(result.Notes, "Payment amount exceeds outstanding invoices")
	}
	if result.OverdueCount > 0 {
		result.Status = ValidationAttentionRequired
		result.Notes = append(result.Notes, fmt.Sprintf("Customer has %d overdue invoices", result.OverdueCount))
	}
	if result.OutstandingAmount.GreaterThan(s.highValueOutstanding) {
		result.Status = ValidationHighValue
		result.Notes = append(result.Notes, "High value customer - manual review recommended")
	}

	s.logger.InfoContext(ctx, "transaction validated",
		"request_id", requestcontext.RequestID(ctx),
		"account_number", account,
		"amount", check.Amount.String(),
		"status", result.Status,
	)
	return result, nil
}

// CashFlow totals what is still owed, split by invoice status.
func (s *Service) CashFlow(ctx context.Context) (*CashFlowAnalysis, error) {
	invoices, err := s.store.ListInvoices(ctx, InvoiceFilter{})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list invoices")
	}

	analysis := &CashFlowAnalysis{
		PendingReceivables: decimal.Zero,
		OverdueAmount:      decimal.Zero,
		OverdueInvoices:    []*Invoice{},
		OutstandingBy:      make(map[Status]decimal.Decimal),
		Timestamp:          requestcontext.Now(ctx),
	}
	for _, inv := range invoices {
		if !inv.Status.IsOutstanding() {
			continue
		}
		due := inv.Outstanding()
		analysis.PendingReceivables = analysis.PendingReceivables.Add(due)
		analysis.OutstandingBy[inv.Status] = analysis.OutstandingBy[inv.Status].Add(due)
		if inv.Status == StatusOverdue {
			analysis.OverdueAmount = analysis.OverdueAmount.Add(due)
			analysis.OverdueInvoices = append(analysis.OverdueInvoices, inv)
		}
	}
	analysis.OverdueCount = len(analysis.OverdueInvoices)
	if err := s.attachPayments(ctx, analysis.OverdueInvoices); err != nil {
		return nil, err
	}
	return analysis, nil
}
