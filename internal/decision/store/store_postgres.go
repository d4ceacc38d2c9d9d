package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"payrecon/internal/decision"
	"payrecon/pkg/platform/sentinel"
)

// Schema creates the decision_records table. Applied by Migrate.
const Schema = `
CREATE TABLE IF NOT EXISTS decision_records (
	transaction_id        TEXT PRIMARY KEY,
	account_reference     TEXT NOT NULL,
	customer_id           TEXT NOT NULL DEFAULT '',
	amount                NUMERIC(18, 4) NOT NULL,
	action                TEXT NOT NULL,
	reasons               TEXT[] NOT NULL DEFAULT '{}',
	audit_reasons         TEXT[] NOT NULL DEFAULT '{}',
	rule                  TEXT NOT NULL,
	best_match            TEXT NOT NULL DEFAULT '',
	allocation            JSONB NOT NULL DEFAULT '[]',
	notification_template TEXT NOT NULL DEFAULT '',
	decided_at            TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_decision_records_account ON decision_records (account_reference, decided_at DESC);
`

// PostgresStore persists decision records in PostgreSQL.
// This store is pure I/O; it never interprets a record.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed decision store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the table if it does not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("migrate decision records: %w", err)
	}
	return nil
}

type allocationRow struct {
	InvoiceID *string         `json:"invoice_id"`
	Amount    decimal.Decimal `json:"amount"`
}

// Save upserts the record; a re-decided transaction replaces its earlier record.
func (s *PostgresStore) Save(ctx context.Context, record decision.Record) error {
	rows := make([]allocationRow, len(record.Allocation))
	for i, l := range record.Allocation {
		rows[i] = allocationRow{InvoiceID: l.InvoiceID, Amount: l.Amount}
	}
	allocation, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("encode allocation: %w", err)
	}

	query := `
		INSERT INTO decision_records (
			transaction_id, account_reference, customer_id, amount, action, reasons,
			audit_reasons, rule, best_match, allocation, notification_template, decided_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (transaction_id) DO UPDATE SET
			account_reference = EXCLUDED.account_reference,
			customer_id = EXCLUDED.customer_id,
			amount = EXCLUDED.amount,
			action = EXCLUDED.action,
			reasons = EXCLUDED.reasons,
			audit_reasons = EXCLUDED.audit_reasons,
			rule = EXCLUDED.rule,
			best_match = EXCLUDED.best_match,
			allocation = EXCLUDED.allocation,
			notification_template = EXCLUDED.notification_template,
			decided_at = EXCLUDED.decided_at
	`
	_, err = s.db.ExecContext(ctx, query,
		record.TransactionID,
		record.AccountReference,
		record.CustomerID,
		record.Amount,
		string(record.Action),
		pq.Array(reasonStrings(record.Reasons)),
		pq.Array(reasonStrings(record.AuditReasons)),
		record.Rule,
		string(record.BestMatch),
		allocation,
		record.NotificationTemplate,
		record.DecidedAt,
	)
	if err != nil {
		return fmt.Errorf("save decision record: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByTransactionID(ctx context.Context, transactionID string) (*decision.Record, error) {
	query := `
		SELECT transaction_id, account_reference, customer_id, amount, action, reasons,
			audit_reasons, rule, best_match, allocation, notification_template, decided_at
		FROM decision_records
		WHERE transaction_id = $1
	`
	var (
		rec                   decision.Record
		action, bestMatch     string
		reasons, auditReasons []string
		allocation            []byte
	)
	err := s.db.QueryRowContext(ctx, query, transactionID).Scan(
		&rec.TransactionID,
		&rec.AccountReference,
		&rec.CustomerID,
		&rec.Amount,
		&action,
		pq.Array(&reasons),
		pq.Array(&auditReasons),
		&rec.Rule,
		&bestMatch,
		&allocation,
		&rec.NotificationTemplate,
		&rec.DecidedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find decision record: %w", err)
	}

	var rows []allocationRow
	if err := json.Unmarshal(allocation, &rows); err != nil {
		return nil, fmt.Errorf("decode allocation: %w", err)
	}
	rec.Allocation = make([]decision.AllocationLine, len(rows))
	for i, r := range rows {
		rec.Allocation[i] = decision.AllocationLine{InvoiceID: r.InvoiceID, Amount: r.Amount}
	}
	rec.Action = decision.Action(action)
	rec.BestMatch = decision.MatchKind(bestMatch)
	rec.Reasons = toReasons(reasons)
	rec.AuditReasons = toReasons(auditReasons)
	rec.DecidedAt = rec.DecidedAt.UTC()
	return &rec, nil
}

func reasonStrings(reasons []decision.Reason) []string {
	out := make([]string, len(reasons))
	for i, r := range reasons {
		out[i] = string(r)
	}
	return out
}

func toReasons(values []string) []decision.Reason {
	out := make([]decision.Reason, len(values))
	for i, v := range values {
		out[i] = decision.Reason(v)
	}
	return out
}
