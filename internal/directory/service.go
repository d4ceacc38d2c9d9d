package directory

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	dErrors "payrecon/pkg/domain-errors"
	"payrecon/pkg/platform/sentinel"
	"payrecon/pkg/requestcontext"
)

// Service is the mock CRM: customer lookups, credit checks and balance updates.
type Service struct {
	store  Store
	logger *slog.Logger
}

// Option configures the directory service.
type Option func(*Service)

// WithLogger sets the logger for the service.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService creates a directory service.
func NewService(store Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("customer store is required")
	}
	svc := &Service{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// List returns the customers matching the filter, ordered by id.
func (s *Service) List(ctx context.Context, filter Filter) ([]*Customer, error) {
	customers, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list customers")
	}
	return customers, nil
}

// Get returns a customer by id.
func (s *Service) Get(ctx context.Context, id string) (*Customer, error) {
	customer, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err, "customer not found", "failed to load customer")
	}
	return customer, nil
}

// GetByAccountNumber returns the customer owning an account number.
func (s *Service) GetByAccountNumber(ctx context.Context, accountNumber string) (*Customer, error) {
	accountNumber = strings.TrimSpace(accountNumber)
	if accountNumber == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "account number is required")
	}
	customer, err := s.store.FindByAccountNumber(ctx, accountNumber)
	if err != nil {
		return nil, translate(err, "customer not found", "failed to load customer")
	}
	return customer, nil
}

// CreditCheck reports the headroom of a customer. Only active customers are
// approved, and only when the amount fits within the available credit.
func (s *Service) CreditCheck(ctx context.Context, id string, amount decimal.Decimal) (*CreditCheckResult, error) {
	if amount.IsNegative() {
		return nil, dErrors.New(dErrors.CodeValidation, "amount must not be negative")
	}
	customer, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	available := customer.AvailableCredit()
	return &CreditCheckResult{
		CustomerID:      customer.ID,
		CreditLimit:     customer.CreditLimit,
		CurrentBalance:  customer.CurrentBalance,
		AvailableCredit: available,
		RequestedAmount: amount,
		Approved:        customer.Status == StatusActive && amount.LessThanOrEqual(available),
		Status:          customer.Status,
	}, nil
}

// UpdateBalance applies a payment, charge or adjustment and logs it. A change
// that would leave a credit balance larger than the credit limit is refused
// and leaves the customer untouched.
func (s *Service) UpdateBalance(ctx context.Context, id string, update BalanceUpdate) (*Transaction, *Customer, error) {
	if err := update.Validate(); err != nil {
		return nil, nil, err
	}
	now := requestcontext.Now(ctx)

	var oldBalance decimal.Decimal
	customer, err := s.store.Update(ctx, id, func(c *Customer) error {
		oldBalance = c.CurrentBalance
		next := c.CurrentBalance.Add(update.Delta())
		if next.IsNegative() && next.Abs().GreaterThan(c.CreditLimit) {
			return dErrors.New(dErrors.CodeConflict, "payment would exceed credit limit")
		}
		c.CurrentBalance = next
		if update.Type == ChangePayment {
			c.LastPaymentDate = &now
			c.LastPaymentAmount = update.Amount
		}
		return nil
	})
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeConflict) {
			return nil, nil, err
		}
		return nil, nil, translate(err, "customer not found", "failed to update balance")
	}

	txn := &Transaction{
		ID:                uuid.NewString(),
		CustomerID:        customer.ID,
		Amount:            update.Amount,
		Type:              update.Type,
		Reference:         update.Reference,
		BankTransactionID: update.BankTransactionID,
		Timestamp:         now,
		OldBalance:        oldBalance,
		NewBalance:        customer.CurrentBalance,
		ProcessedBy:       "system",
	}
	if err := s.store.AppendTransaction(ctx, txn); err != nil {
		return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record balance transaction")
	}

	s.logger.InfoContext(ctx, "customer balance updated",
		"request_id", requestcontext.RequestID(ctx),
		"customer_id", customer.ID,
		"type", update.Type,
		"amount", update.Amount.String(),
		"new_balance", customer.CurrentBalance.String(),
	)
	return txn, customer, nil
}

// Transactions returns the balance log, optionally for one customer.
func (s *Service) Transactions(ctx context.Context, customerID string) ([]*Transaction, error) {
	txns, err := s.store.ListTransactions(ctx, customerID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list transactions")
	}
	return txns, nil
}

// Seed loads customers into the store, replacing existing ids.
func (s *Service) Seed(ctx context.Context, customers []*Customer) error {
	for _, c := range customers {
		if c.CreatedDate.IsZero() {
			c.CreatedDate = time.Now().UTC()
		}
		if err := s.store.Save(ctx, c); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to seed customer "+c.ID)
		}
	}
	return nil
}

func translate(err error, notFound, internal string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, notFound)
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, internal)
}
