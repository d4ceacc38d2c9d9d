package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"payrecon/pkg/platform/sentinel"
)

// Schema creates the invoice and payment tables. Applied by Migrate.
const Schema = `
CREATE TABLE IF NOT EXISTS ledger_invoices (
	id                  TEXT PRIMARY KEY,
	customer_account    TEXT NOT NULL,
	amount              NUMERIC(18, 4) NOT NULL,
	paid_amount         NUMERIC(18, 4) NOT NULL DEFAULT 0,
	status              TEXT NOT NULL,
	due_date            DATE NOT NULL,
	issue_date          DATE NOT NULL,
	description         TEXT NOT NULL DEFAULT '',
	payment_terms       TEXT NOT NULL DEFAULT '',
	paid_date           TIMESTAMPTZ,
	last_payment_date   TIMESTAMPTZ,
	last_payment_amount NUMERIC(18, 4) NOT NULL DEFAULT 0,
	line_items          JSONB NOT NULL DEFAULT '[]'
);
CREATE INDEX IF NOT EXISTS idx_ledger_invoices_account ON ledger_invoices (customer_account);

CREATE TABLE IF NOT EXISTS ledger_payments (
	seq                 BIGSERIAL PRIMARY KEY,
	id                  TEXT NOT NULL UNIQUE,
	invoice_id          TEXT NOT NULL REFERENCES ledger_invoices (id),
	customer_account    TEXT NOT NULL,
	amount              NUMERIC(18, 4) NOT NULL,
	method              TEXT NOT NULL,
	reference           TEXT NOT NULL DEFAULT '',
	bank_transaction_id TEXT NOT NULL DEFAULT '',
	paid_at             TIMESTAMPTZ NOT NULL,
	status              TEXT NOT NULL,
	processed_by        TEXT NOT NULL,
	outstanding_before  NUMERIC(18, 4) NOT NULL,
	outstanding_after   NUMERIC(18, 4) NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_ledger_payments_invoice ON ledger_payments (invoice_id, seq);
`

// Amounts cross the driver boundary as text so no precision is lost.
const invoiceColumns = `
	id, customer_account, amount::text, paid_amount::text, status, due_date, issue_date,
	description, payment_terms, paid_date, last_payment_date, last_payment_amount::text, line_items`

// PostgresStore persists the ledger in PostgreSQL through pgx.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore constructs a PostgreSQL-backed ledger store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Migrate creates the tables if they do not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("migrate ledger: %w", err)
	}
	return nil
}

func (s *PostgresStore) SaveInvoice(ctx context.Context, inv *Invoice) error {
	lineItems, err := json.Marshal(nonNilLineItems(inv.LineItems))
	if err != nil {
		return fmt.Errorf("encode line items: %w", err)
	}
	query := `
		INSERT INTO ledger_invoices (
			id, customer_account, amount, paid_amount, status, due_date, issue_date,
			description, payment_terms, paid_date, last_payment_date, last_payment_amount, line_items
		)
		VALUES ($1, $2, $3::text::numeric, $4::text::numeric, $5, $6, $7, $8, $9, $10, $11, $12::text::numeric, $13)
		ON CONFLICT (id) DO UPDATE SET
			customer_account = EXCLUDED.customer_account,
			amount = EXCLUDED.amount,
			paid_amount = EXCLUDED.paid_amount,
			status = EXCLUDED.status,
			due_date = EXCLUDED.due_date,
			issue_date = EXCLUDED.issue_date,
			description = EXCLUDED.description,
			payment_terms = EXCLUDED.payment_terms,
			paid_date = EXCLUDED.paid_date,
			last_payment_date = EXCLUDED.last_payment_date,
			last_payment_amount = EXCLUDED.last_payment_amount,
			line_items = EXCLUDED.line_items
	`
	_, err = s.pool.Exec(ctx, query,
		inv.ID,
		inv.CustomerAccount,
		inv.Amount.String(),
		inv.PaidAmount.String(),
		string(inv.Status),
		inv.DueDate,
		inv.IssueDate,
		inv.Description,
		inv.PaymentTerms,
		inv.PaidDate,
		inv.LastPaymentDate,
		inv.LastPaymentAmount.String(),
		lineItems,
	)
	if err != nil {
		return fmt.Errorf("save invoice: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListInvoices(ctx context.Context, filter InvoiceFilter) ([]*Invoice, error) {
	query := `SELECT ` + invoiceColumns + `
		FROM ledger_invoices
		WHERE ($1 = '' OR status = $1) AND ($2 = '' OR customer_account = $2)
		ORDER BY id`
	rows, err := s.pool.Query(ctx, query, string(filter.Status), filter.CustomerAccount)
	if err != nil {
		return nil, fmt.Errorf("query invoices: %w", err)
	}
	defer rows.Close()

	out := make([]*Invoice, 0)
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate invoices: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) FindInvoice(ctx context.Context, id string) (*Invoice, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM ledger_invoices WHERE id = $1`, id)
	return scanInvoice(row)
}

// RecordPayment runs fn under a row lock so concurrent payments against one
// invoice serialize.
func (s *PostgresStore) RecordPayment(ctx context.Context, invoiceID string, fn func(*Invoice) (*Payment, error)) (*Invoice, *Payment, error) {
	var (
		inv     *Invoice
		payment *Payment
	)
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM ledger_invoices WHERE id = $1 FOR UPDATE`, invoiceID)
		current, err := scanInvoice(row)
		if err != nil {
			return err
		}
		p, err := fn(current)
		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx, `
			UPDATE ledger_invoices
			SET paid_amount = $2::text::numeric, status = $3, paid_date = $4,
				last_payment_date = $5, last_payment_amount = $6::text::numeric
			WHERE id = $1`,
			current.ID,
			current.PaidAmount.String(),
			string(current.Status),
			current.PaidDate,
			current.LastPaymentDate,
			current.LastPaymentAmount.String(),
		)
		if err != nil {
			return fmt.Errorf("update invoice: %w", err)
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO ledger_payments (
				id, invoice_id, customer_account, amount, method, reference, bank_transaction_id,
				paid_at, status, processed_by, outstanding_before, outstanding_after
			)
			VALUES ($1, $2, $3, $4::text::numeric, $5, $6, $7, $8, $9, $10, $11::text::numeric, $12::text::numeric)`,
			p.ID,
			p.InvoiceID,
			p.CustomerAccount,
			p.Amount.String(),
			p.Method,
			p.Reference,
			p.BankTransactionID,
			p.Timestamp,
			p.Status,
			p.ProcessedBy,
			p.OutstandingBefore.String(),
			p.OutstandingAfter.String(),
		)
		if err != nil {
			return fmt.Errorf("insert payment: %w", err)
		}
		inv, payment = current, p
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return inv, payment, nil
}

func (s *PostgresStore) ListPayments(ctx context.Context, invoiceID string) ([]*Payment, error) {
	query := `
		SELECT id, invoice_id, customer_account, amount::text, method, reference, bank_transaction_id,
			paid_at, status, processed_by, outstanding_before::text, outstanding_after::text
		FROM ledger_payments
		WHERE ($1 = '' OR invoice_id = $1)
		ORDER BY seq`
	rows, err := s.pool.Query(ctx, query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("query payments: %w", err)
	}
	defer rows.Close()

	out := make([]*Payment, 0)
	for rows.Next() {
		var (
			p                     Payment
			amount, before, after string
		)
		if err := rows.Scan(
			&p.ID, &p.InvoiceID, &p.CustomerAccount, &amount, &p.Method, &p.Reference,
			&p.BankTransactionID, &p.Timestamp, &p.Status, &p.ProcessedBy, &before, &after,
		); err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		var err error
		if p.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("decode payment amount: %w", err)
		}
		if p.OutstandingBefore, err = decimal.NewFromString(before); err != nil {
			return nil, fmt.Errorf("decode outstanding before: %w", err)
		}
		if p.OutstandingAfter, err = decimal.NewFromString(after); err != nil {
			return nil, fmt.Errorf("decode outstanding after: %w", err)
		}
		p.Timestamp = p.Timestamp.UTC()
		out = append(out, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate payments: %w", err)
	}
	return out, nil
}

func scanInvoice(row pgx.Row) (*Invoice, error) {
	var (
		inv                       Invoice
		status                    string
		amount, paid, lastPayment string
		lineItems                 []byte
		paidDate, lastPaymentDate *time.Time
	)
	err := row.Scan(
		&inv.ID, &inv.CustomerAccount, &amount, &paid, &status, &inv.DueDate, &inv.IssueDate,
		&inv.Description, &inv.PaymentTerms, &paidDate, &lastPaymentDate, &lastPayment, &lineItems,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan invoice: %w", err)
	}
	if inv.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("decode invoice amount: %w", err)
	}
	if inv.PaidAmount, err = decimal.NewFromString(paid); err != nil {
		return nil, fmt.Errorf("decode paid amount: %w", err)
	}
	if inv.LastPaymentAmount, err = decimal.NewFromString(lastPayment); err != nil {
		return nil, fmt.Errorf("decode last payment amount: %w", err)
	}
	if err := json.Unmarshal(lineItems, &inv.LineItems); err != nil {
		return nil, fmt.Errorf("decode line items: %w", err)
	}
	inv.Status = Status(status)
	inv.PaidDate = utcPtr(paidDate)
	inv.LastPaymentDate = utcPtr(lastPaymentDate)
	return &inv, nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

func nonNilLineItems(items []LineItem) []LineItem {
	if items == nil {
		return []LineItem{}
	}
	return items
}
