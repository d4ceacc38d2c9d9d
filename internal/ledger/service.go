package ledger

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	dErrors "payrecon/pkg/domain-errors"
	"payrecon/pkg/platform/sentinel"
	"payrecon/pkg/requestcontext"
)

const (
	defaultPaymentMethod = "bank_transfer"
	paymentCompleted     = "completed"
	processedBySystem    = "system"
)

// Service is the mock ERP: invoice queries and payment posting.
type Service struct {
	store                Store
	logger               *slog.Logger
	highValueOutstanding decimal.Decimal
}

// Option configures the ledger service.
type Option func(*Service)

// WithLogger sets the logger for the service.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithHighValueOutstanding sets the outstanding balance above which
// ValidateTransaction reports high_value. Non-positive values are ignored.
func WithHighValueOutstanding(limit decimal.Decimal) Option {
	return func(s *Service) {
		if limit.IsPositive() {
			s.highValueOutstanding = limit
		}
	}
}

// NewService creates a ledger service.
func NewService(store Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("invoice store is required")
	}
	svc := &Service{store: store, logger: slog.Default(), highValueOutstanding: DefaultHighValueOutstanding}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// ListInvoices returns invoices matching the filter, with payment history.
func (s *Service) ListInvoices(ctx context.Context, filter InvoiceFilter) ([]*Invoice, error) {
	invoices, err := s.store.ListInvoices(ctx, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list invoices")
	}
	if err := s.attachPayments(ctx, invoices); err != nil {
		return nil, err
	}
	return invoices, nil
}

// GetInvoice returns one invoice with its payment history.
func (s *Service) GetInvoice(ctx context.Context, id string) (*Invoice, error) {
	inv, err := s.store.FindInvoice(ctx, strings.TrimSpace(id))
	if err != nil {
		return nil, translate(err, "invoice not found", "failed to load invoice")
	}
	if err := s.attachPayments(ctx, []*Invoice{inv}); err != nil {
		return nil, err
	}
	return inv, nil
}

// InvoicesByAccount returns every invoice billed to an account.
func (s *Service) InvoicesByAccount(ctx context.Context, account string) ([]*Invoice, error) {
	account = strings.TrimSpace(account)
	if account == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "account number is required")
	}
	return s.ListInvoices(ctx, InvoiceFilter{CustomerAccount: account})
}

// Outstanding returns the invoices of an account that still have money due.
func (s *Service) Outstanding(ctx context.Context, account string) ([]*Invoice, error) {
	all, err := s.InvoicesByAccount(ctx, account)
	if err != nil {
		return nil, err
	}
	out := make([]*Invoice, 0, len(all))
	for _, inv := range all {
		if inv.Status.IsOutstanding() && inv.Outstanding().IsPositive() {
			out = append(out, inv)
		}
	}
	return out, nil
}

// RecordPayment posts a payment against an invoice. Payments larger than the
// outstanding amount are refused without changing the invoice.
func (s *Service) RecordPayment(ctx context.Context, invoiceID string, req PaymentRequest) (*PaymentReceipt, error) {
	if !req.Amount.IsPositive() {
		return nil, dErrors.New(dErrors.CodeValidation, "payment amount must be positive")
	}
	method := strings.TrimSpace(req.Method)
	if method == "" {
		method = defaultPaymentMethod
	}
	now := requestcontext.Now(ctx)

	inv, payment, err := s.store.RecordPayment(ctx, strings.TrimSpace(invoiceID), func(inv *Invoice) (*Payment, error) {
		before := inv.Outstanding()
		if req.Amount.GreaterThan(before) {
			return nil, dErrors.New(dErrors.CodeConflict,
				"payment amount exceeds outstanding balance of "+before.StringFixed(2))
		}
		inv.ApplyPayment(req.Amount, now)
		return &Payment{
			ID:                uuid.NewString(),
			InvoiceID:         inv.ID,
			CustomerAccount:   inv.CustomerAccount,
			Amount:            req.Amount,
			Method:            method,
			Reference:         req.Reference,
			BankTransactionID: req.BankTransactionID,
			Timestamp:         now,
			Status:            paymentCompleted,
			ProcessedBy:       processedBySystem,
			OutstandingBefore: before,
			OutstandingAfter:  inv.Outstanding(),
		}, nil
	})
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeConflict) {
			return nil, err
		}
		return nil, translate(err, "invoice not found", "failed to record payment")
	}
	if err := s.attachPayments(ctx, []*Invoice{inv}); err != nil {
		// the payment is committed; report it without history rather than fail
		s.logger.WarnContext(ctx, "payment history unavailable for receipt",
			"request_id", requestcontext.RequestID(ctx),
			"invoice_id", inv.ID,
			"error", err,
		)
	}

	s.logger.InfoContext(ctx, "payment recorded",
		"request_id", requestcontext.RequestID(ctx),
		"invoice_id", inv.ID,
		"payment_id", payment.ID,
		"amount", payment.Amount.String(),
		"status", inv.Status,
	)
	return &PaymentReceipt{Payment: payment, Invoice: inv, RemainingBalance: inv.Outstanding()}, nil
}

// Payments returns the payment log, optionally for one invoice.
func (s *Service) Payments(ctx context.Context, invoiceID string) ([]*Payment, error) {
	payments, err := s.store.ListPayments(ctx, strings.TrimSpace(invoiceID))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list payments")
	}
	return payments, nil
}

// Seed loads invoices into the store, replacing existing ids.
func (s *Service) Seed(ctx context.Context, invoices []*Invoice) error {
	for _, inv := range invoices {
		if inv.Status == "" {
			inv.Status = StatusPending
		}
		if err := s.store.SaveInvoice(ctx, inv); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to seed invoice "+inv.ID)
		}
	}
	return nil
}

func (s *Service) attachPayments(ctx context.Context, invoices []*Invoice) error {
	if len(invoices) == 0 {
		return nil
	}
	payments, err := s.store.ListPayments(ctx, "")
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load payment history")
	}
	byInvoice := make(map[string][]*Payment, len(invoices))
	for _, p := range payments {
		byInvoice[p.InvoiceID] = append(byInvoice[p.InvoiceID], p)
	}
	for _, inv := range invoices {
		inv.Payments = byInvoice[inv.ID]
	}
	return nil
}

func translate(err error, notFound, internal string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, notFound)
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, internal)
}
