package handler

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"payrecon/internal/ledger"
	dErrors "payrecon/pkg/domain-errors"
)

// InvoiceResponse is the wire form of an ERP invoice.
type InvoiceResponse struct {
	ID                string            `json:"id"`
	CustomerAccount   string            `json:"customer_account"`
	Amount            decimal.Decimal   `json:"amount"`
	PaidAmount        decimal.Decimal   `json:"paid_amount"`
	OutstandingAmount decimal.Decimal   `json:"outstanding_amount"`
	Status            string            `json:"status"`
	DueDate           string            `json:"due_date"`
	IssueDate         string            `json:"issue_date"`
	Description       string            `json:"description"`
	PaymentTerms      string            `json:"payment_terms,omitempty"`
	PaidDate          *time.Time        `json:"paid_date,omitempty"`
	LastPaymentDate   *time.Time        `json:"last_payment_date,omitempty"`
	LastPaymentAmount decimal.Decimal   `json:"last_payment_amount"`
	LineItems         []ledger.LineItem `json:"line_items"`
	Payments          []PaymentResponse `json:"payments"`
}

func toInvoiceResponse(inv *ledger.Invoice) InvoiceResponse {
	resp := InvoiceResponse{
		ID:                inv.ID,
		CustomerAccount:   inv.CustomerAccount,
		Amount:            inv.Amount,
		PaidAmount:        inv.PaidAmount,
		OutstandingAmount: inv.Outstanding(),
		Status:            string(inv.Status),
		DueDate:           inv.DueDate.Format(time.DateOnly),
		IssueDate:         inv.IssueDate.Format(time.DateOnly),
		Description:       inv.Description,
		PaymentTerms:      inv.PaymentTerms,
		PaidDate:          inv.PaidDate,
		LastPaymentDate:   inv.LastPaymentDate,
		LastPaymentAmount: inv.LastPaymentAmount,
		LineItems:         inv.LineItems,
		Payments:          make([]PaymentResponse, 0, len(inv.Payments)),
	}
	if resp.LineItems == nil {
		resp.LineItems = []ledger.LineItem{}
	}
	for _, p := range inv.Payments {
		resp.Payments = append(resp.Payments, toPaymentResponse(p))
	}
	return resp
}

func toInvoiceResponses(invoices []*ledger.Invoice) []InvoiceResponse {
	out := make([]InvoiceResponse, 0, len(invoices))
	for _, inv := range invoices {
		out = append(out, toInvoiceResponse(inv))
	}
	return out
}

// InvoiceListResponse is returned by GET /invoices.
type InvoiceListResponse struct {
	Invoices  []InvoiceResponse `json:"invoices"`
	Total     int               `json:"total"`
	Timestamp time.Time         `json:"timestamp"`
}

// AccountInvoicesResponse is returned by the by-account endpoints.
type AccountInvoicesResponse struct {
	Invoices         []InvoiceResponse `json:"invoices"`
	Total            int               `json:"total"`
	AccountNumber    string            `json:"account_number"`
	TotalOutstanding decimal.Decimal   `json:"total_outstanding"`
}

// PaymentResponse is the wire form of a recorded payment.
type PaymentResponse struct {
	ID                string          `json:"id"`
	InvoiceID         string          `json:"invoice_id"`
	CustomerAccount   string          `json:"customer_account"`
	Amount            decimal.Decimal `json:"amount"`
	Method            string          `json:"method"`
	Reference         string          `json:"reference"`
	BankTransactionID string          `json:"bank_transaction_id"`
	Timestamp         time.Time       `json:"timestamp"`
	Status            string          `json:"status"`
	ProcessedBy       string          `json:"processed_by"`
	OutstandingBefore decimal.Decimal `json:"outstanding_before"`
	OutstandingAfter  decimal.Decimal `json:"outstanding_after"`
}

func toPaymentResponse(p *ledger.Payment) PaymentResponse {
	return PaymentResponse{
		ID:                p.ID,
		InvoiceID:         p.InvoiceID,
		CustomerAccount:   p.CustomerAccount,
		Amount:            p.Amount,
		Method:            p.Method,
		Reference:         p.Reference,
		BankTransactionID: p.BankTransactionID,
		Timestamp:         p.Timestamp,
		Status:            p.Status,
		ProcessedBy:       p.ProcessedBy,
		OutstandingBefore: p.OutstandingBefore,
		OutstandingAfter:  p.OutstandingAfter,
	}
}

// RecordPaymentRequest is the body of POST /invoices/{id}/payment.
type RecordPaymentRequest struct {
	Amount            decimal.Decimal `json:"amount"`
	Method            string          `json:"method"`
	Reference         string          `json:"reference"`
	BankTransactionID string          `json:"bank_transaction_id"`
}

// Validate normalises the request; amount rules live in the domain.
func (r *RecordPaymentRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Method = strings.ToLower(strings.TrimSpace(r.Method))
	if len(r.Reference) > 128 || len(r.BankTransactionID) > 128 {
		return dErrors.New(dErrors.CodeValidation, "reference fields must be at most 128 characters")
	}
	return nil
}

func (r *RecordPaymentRequest) toPaymentRequest() ledger.PaymentRequest {
	return ledger.PaymentRequest{
		Amount:            r.Amount,
		Method:            r.Method,
		Reference:         r.Reference,
		BankTransactionID: r.BankTransactionID,
	}
}

// RecordPaymentResponse is returned after a payment is posted.
type RecordPaymentResponse struct {
	Payment          PaymentResponse `json:"payment"`
	Invoice          InvoiceResponse `json:"invoice"`
	Message          string          `json:"message"`
	RemainingBalance decimal.Decimal `json:"remaining_balance"`
}

// ValidateTransactionRequest is the body of POST /financial/validate-transaction.
type ValidateTransactionRequest struct {
	AccountNumber string          `json:"account_number"`
	Amount        decimal.Decimal `json:"amount"`
	Type          string          `json:"type"`

	kind ledger.TransactionKind
}

// Validate requires an account and a known transaction type.
func (r *ValidateTransactionRequest) Validate() error {
	r.AccountNumber = strings.TrimSpace(r.AccountNumber)
	if r.AccountNumber == "" {
		return dErrors.New(dErrors.CodeValidation, "account_number is required")
	}
	kind, err := ledger.ParseTransactionKind(r.Type)
	if err != nil {
		return err
	}
	r.kind = kind
	return nil
}

func (r *ValidateTransactionRequest) toCheck() ledger.TransactionCheck {
	return ledger.TransactionCheck{AccountNumber: r.AccountNumber, Amount: r.Amount, Kind: r.kind}
}

// ValidationResponse mirrors ledger.TransactionValidation on the wire.
type ValidationResponse struct {
	AccountNumber       string          `json:"account_number"`
	TransactionAmount   decimal.Decimal `json:"transaction_amount"`
	TransactionType     string          `json:"transaction_type"`
	OutstandingInvoices decimal.Decimal `json:"outstanding_invoices"`
	InvoiceCount        int             `json:"invoice_count"`
	OverdueCount        int             `json:"overdue_count"`
	Overpayment         bool            `json:"overpayment"`
	ValidationStatus    string          `json:"validation_status"`
	Notes               []string        `json:"notes"`
	Timestamp           time.Time       `json:"timestamp"`
}

func toValidationResponse(v *ledger.TransactionValidation) ValidationResponse {
	return ValidationResponse{
		AccountNumber:       v.AccountNumber,
		TransactionAmount:   v.Amount,
		TransactionType:     string(v.Kind),
		OutstandingInvoices: v.OutstandingAmount,
		InvoiceCount:        v.InvoiceCount,
		OverdueCount:        v.OverdueCount,
		Overpayment:         v.Overpayment,
		ValidationStatus:    string(v.Status),
		Notes:               v.Notes,
		Timestamp:           v.Timestamp,
	}
}

// CashFlowSummary is the headline block of the cash-flow report.
type CashFlowSummary struct {
	PendingReceivables decimal.Decimal            `json:"pending_receivables"`
	OverdueAmount      decimal.Decimal            `json:"overdue_amount"`
	OverdueCount       int                        `json:"overdue_count"`
	OutstandingBy      map[string]decimal.Decimal `json:"outstanding_by_status"`
}

// CashFlowResponse is returned by GET /cash-flow/analysis.
type CashFlowResponse struct {
	Summary         CashFlowSummary   `json:"summary"`
	OverdueInvoices []InvoiceResponse `json:"overdue_invoices"`
	Timestamp       time.Time         `json:"timestamp"`
}

func toCashFlowResponse(a *ledger.CashFlowAnalysis) CashFlowResponse {
	by := make(map[string]decimal.Decimal, len(a.OutstandingBy))
	for status, amount := range a.OutstandingBy {
		by[string(status)] = amount
	}
	return CashFlowResponse{
		Summary: CashFlowSummary{
			PendingReceivables: a.PendingReceivables,
			OverdueAmount:      a.OverdueAmount,
			OverdueCount:       a.OverdueCount,
			OutstandingBy:      by,
		},
		OverdueInvoices: toInvoiceResponses(a.OverdueInvoices),
		Timestamp:       a.Timestamp,
	}
}
