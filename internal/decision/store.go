package decision

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Record is the persisted form of a decision, kept for audit and lookup.
type Record struct {
	TransactionID        string
	AccountReference     string
	CustomerID           string
	Amount               decimal.Decimal
	Action               Action
	Reasons              []Reason
	AuditReasons         []Reason
	Rule                 string
	BestMatch            MatchKind
	Allocation           []AllocationLine
	NotificationTemplate string
	DecidedAt            time.Time
}

// NewRecord captures an outcome together with the transaction it decided.
func NewRecord(txn Transaction, outcome *Outcome) Record {
	rec := Record{
		TransactionID:    outcome.TransactionID(),
		AccountReference: txn.AccountReference,
		CustomerID:       outcome.CustomerID(),
		Amount:           txn.Amount,
		Action:           outcome.Action(),
		Reasons:          outcome.Reasons(),
		AuditReasons:     outcome.AuditReasons(),
		Rule:             outcome.Rule(),
		BestMatch:        outcome.BestMatch(),
		Allocation:       outcome.Allocation(),
		DecidedAt:        outcome.DecidedAt(),
	}
	if n := outcome.Notification(); n != nil {
		rec.NotificationTemplate = n.TemplateID
	}
	return rec
}

//go:generate mockgen -source=store.go -destination=mocks/store-mocks.go -package=mocks
//go:generate mockgen -destination=mocks/ports-mocks.go -package=mocks payrecon/internal/decision/ports DirectoryPort,LedgerPort,NotifierPort

// Store persists decision records. Saving a record for a transaction that was
// already decided replaces the earlier record.
type Store interface {
	Save(ctx context.Context, record Record) error
	// FindByTransactionID returns sentinel.ErrNotFound when no record exists.
	FindByTransactionID(ctx context.Context, transactionID string) (*Record, error)
}

// OutcomePublisher announces decisions to downstream consumers.
type OutcomePublisher interface {
	Publish(ctx context.Context, record Record) error
}
