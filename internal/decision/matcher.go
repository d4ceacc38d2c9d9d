package decision

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"payrecon/internal/decision/ports"
	"payrecon/pkg/platform/sentinel"
)

// Matcher finds and ranks the invoices a transaction may settle.
type Matcher struct {
	ledger ports.LedgerPort
	cfg    Config
}

// NewMatcher creates a matcher over the ledger port.
func NewMatcher(ledger ports.LedgerPort, cfg Config) *Matcher {
	return &Matcher{ledger: ledger, cfg: cfg}
}

// FindCandidates returns the ranked candidates for txn. An invoice reference
// that resolves to one of the customer's invoices yields exactly that
// invoice; otherwise every outstanding invoice of the account is considered.
// An empty result is valid.
func (m *Matcher) FindCandidates(ctx context.Context, customer ports.Customer, txn Transaction) ([]MatchCandidate, error) {
	if ref := strings.TrimSpace(txn.InvoiceReference); ref != "" {
		invoice, err := m.ledger.InvoiceByReference(ctx, ref)
		if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
			return nil, err
		}
		if invoice != nil && invoice.AccountReference == customer.AccountReference {
			return RankCandidates(txn, []ports.Invoice{*invoice}, m.cfg), nil
		}
	}

	invoices, err := m.ledger.OutstandingInvoices(ctx, customer.AccountReference)
	if err != nil {
		return nil, err
	}
	outstanding := make([]ports.Invoice, 0, len(invoices))
	for _, inv := range invoices {
		if inv.Status.IsOutstanding() {
			outstanding = append(outstanding, inv)
		}
	}
	return RankCandidates(txn, outstanding, m.cfg), nil
}

// RankCandidates classifies each invoice against txn and orders the result
// by ascending |delta|, then due date, then invoice id. |delta| is compared
// in whole multiples of epsilon so that near-equal deltas rank as equal
// while the order stays transitive.
func RankCandidates(txn Transaction, invoices []ports.Invoice, cfg Config) []MatchCandidate {
	candidates := make([]MatchCandidate, 0, len(invoices))
	for _, inv := range invoices {
		candidates = append(candidates, MatchCandidate{
			Invoice:           inv,
			Delta:             txn.Amount.Sub(inv.AmountDue),
			Kind:              Classify(txn.Amount, inv.AmountDue, cfg.Epsilon),
			PossibleDuplicate: isPossibleDuplicate(txn, inv.PaymentHistory, cfg),
		})
	}

	slices.SortStableFunc(candidates, func(a, b MatchCandidate) int {
		if c := cfg.deltaStep(a.AbsDelta()).Cmp(cfg.deltaStep(b.AbsDelta())); c != 0 {
			return c
		}
		if c := a.Invoice.DueDate.Compare(b.Invoice.DueDate); c != 0 {
			return c
		}
		return cmp.Compare(a.Invoice.ID, b.Invoice.ID)
	})
	return candidates
}

// Classify compares an amount with the amount due on an invoice. A delta of
// exactly epsilon is not exact and falls on the side of its sign.
func Classify(amount, due, epsilon decimal.Decimal) MatchKind {
	switch {
	case amount.Sub(due).Abs().LessThan(epsilon):
		return MatchExact
	case amount.LessThan(due):
		return MatchPartial
	default:
		return MatchOver
	}
}

func isPossibleDuplicate(txn Transaction, history []ports.Payment, cfg Config) bool {
	for _, p := range history {
		if !cfg.equal(p.Amount, txn.Amount) {
			continue
		}
		if cfg.DuplicateLookback <= 0 || txn.Timestamp.IsZero() || p.Timestamp.IsZero() {
			return true
		}
		gap := txn.Timestamp.Sub(p.Timestamp)
		if gap < 0 {
			gap = -gap
		}
		if gap <= cfg.DuplicateLookback {
			return true
		}
	}
	return false
}
