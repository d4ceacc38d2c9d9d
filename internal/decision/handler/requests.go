package handler

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"payrecon/internal/decision"
	dErrors "payrecon/pkg/domain-errors"
)

// MaxBatchSize bounds POST /reconcile/decide/batch.
const MaxBatchSize = 500

var timestampLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02 15:04:05", time.DateOnly}

// DecideRequest is the HTTP form of a transaction. account_number and
// reference are accepted as aliases of account_reference and invoice_reference.
type DecideRequest struct {
	TransactionID     string           `json:"transaction_id"`
	AccountReference  string           `json:"account_reference"`
	AccountNumber     string           `json:"account_number"`
	Amount            *decimal.Decimal `json:"amount"`
	InvoiceReference  string           `json:"invoice_reference"`
	Reference         string           `json:"reference"`
	Timestamp         string           `json:"timestamp"`
	Method            string           `json:"method"`
	ExternalReference string           `json:"external_reference"`
	Description       string           `json:"description"`

	parsedTimestamp time.Time
}

// Validate normalises aliases and rejects malformed input. Business rules
// such as non-positive amounts are left to the engine, which answers them
// with an error disposition rather than an HTTP error.
func (r *DecideRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if len(r.TransactionID) > 64 || len(r.AccountReference) > 64 || len(r.AccountNumber) > 64 {
		return dErrors.New(dErrors.CodeValidation, "identifiers must be at most 64 characters")
	}
	if r.Amount == nil {
		return dErrors.New(dErrors.CodeValidation, "amount is required")
	}

	r.TransactionID = strings.TrimSpace(r.TransactionID)
	if r.TransactionID == "" {
		r.TransactionID = "TXN-" + uuid.NewString()
	}
	r.AccountReference = strings.TrimSpace(r.AccountReference)
	if r.AccountReference == "" {
		r.AccountReference = strings.TrimSpace(r.AccountNumber)
	}
	r.InvoiceReference = strings.TrimSpace(r.InvoiceReference)
	if r.InvoiceReference == "" {
		r.InvoiceReference = strings.TrimSpace(r.Reference)
	}

	if ts := strings.TrimSpace(r.Timestamp); ts != "" {
		parsed, ok := parseTimestamp(ts)
		if !ok {
			return dErrors.New(dErrors.CodeValidation, "timestamp must be RFC 3339 or YYYY-MM-DD")
		}
		r.parsedTimestamp = parsed
	}
	return nil
}

// Transaction builds the domain transaction; now fills a missing timestamp.
func (r *DecideRequest) Transaction(now time.Time) decision.Transaction {
	ts := r.parsedTimestamp
	if ts.IsZero() {
		ts = now
	}
	return decision.Transaction{
		ID:                r.TransactionID,
		AccountReference:  r.AccountReference,
		Amount:            *r.Amount,
		InvoiceReference:  r.InvoiceReference,
		Timestamp:         ts.UTC(),
		Method:            strings.TrimSpace(r.Method),
		ExternalReference: strings.TrimSpace(r.ExternalReference),
		Description:       r.Description,
	}
}

func parseTimestamp(s string) (time.Time, bool) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// DecideBatchRequest is the body of POST /reconcile/decide/batch.
type DecideBatchRequest struct {
	Transactions []DecideRequest `json:"transactions"`
}

// Validate checks the batch bounds and every transaction in it.
func (r *DecideBatchRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if len(r.Transactions) == 0 {
		return dErrors.New(dErrors.CodeValidation, "transactions must not be empty")
	}
	if len(r.Transactions) > MaxBatchSize {
		return dErrors.New(dErrors.CodeValidation, "transactions must contain at most 500 entries")
	}
	seen := make(map[string]struct{}, len(r.Transactions))
	for i := range r.Transactions {
		if err := r.Transactions[i].Validate(); err != nil {
			return err
		}
		id := r.Transactions[i].TransactionID
		if _, dup := seen[id]; dup {
			return dErrors.New(dErrors.CodeValidation, "duplicate transaction_id "+id)
		}
		seen[id] = struct{}{}
	}
	return nil
}
