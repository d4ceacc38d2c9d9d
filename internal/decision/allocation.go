package decision

import (
	"cmp"
	"slices"

	"github.com/shopspring/decimal"
)

// Planner proposes how a transaction amount should be applied to invoices.
// Proposals are advisory; nothing is written to the ledger.
type Planner struct{}

// Propose splits txn.Amount according to policy. The lines always sum to the
// transaction amount; an empty proposal is returned for AllocateNone.
func (p Planner) Propose(txn Transaction, candidates []MatchCandidate, policy AllocationPolicy) []AllocationLine {
	if len(candidates) == 0 {
		return nil
	}
	switch policy {
	case AllocateSingle:
		return []AllocationLine{invoiceLine(candidates[0].Invoice.ID, txn.Amount)}
	case AllocateOverpayment:
		return p.overpayment(txn.Amount, candidates[0])
	case AllocateSpread:
		return p.spread(txn.Amount, candidates)
	default:
		return nil
	}
}

func (p Planner) overpayment(amount decimal.Decimal, c MatchCandidate) []AllocationLine {
	due := decimal.Max(c.Invoice.AmountDue, decimal.Zero)
	if due.GreaterThan(amount) {
		due = amount
	}
	var lines []AllocationLine
	if due.IsPositive() {
		lines = append(lines, invoiceLine(c.Invoice.ID, due))
	}
	if rest := amount.Sub(due); rest.IsPositive() {
		lines = append(lines, AllocationLine{Amount: rest})
	}
	return lines
}

// spread fills invoices greedily by ascending due date, leaving any
// remainder as unallocated credit.
func (p Planner) spread(amount decimal.Decimal, candidates []MatchCandidate) []AllocationLine {
	ordered := slices.Clone(candidates)
	slices.SortStableFunc(ordered, func(a, b MatchCandidate) int {
		if c := a.Invoice.DueDate.Compare(b.Invoice.DueDate); c != 0 {
			return c
		}
		return cmp.Compare(a.Invoice.ID, b.Invoice.ID)
	})

	var lines []AllocationLine
	remaining := amount
	for _, c := range ordered {
		if !remaining.IsPositive() {
			break
		}
		portion := decimal.Min(remaining, c.Invoice.AmountDue)
		if !portion.IsPositive() {
			continue
		}
		lines = append(lines, invoiceLine(c.Invoice.ID, portion))
		remaining = remaining.Sub(portion)
	}
	if remaining.IsPositive() {
		lines = append(lines, AllocationLine{Amount: remaining})
	}
	return lines
}

func invoiceLine(invoiceID string, amount decimal.Decimal) AllocationLine {
	id := invoiceID
	return AllocationLine{InvoiceID: &id, Amount: amount}
}
