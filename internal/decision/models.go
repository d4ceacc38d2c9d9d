package decision

import (
	"time"

	"github.com/shopspring/decimal"

	"payrecon/internal/decision/ports"
)

// Action is the disposition chosen for a transaction.
type Action string

const (
	ActionAutoProcess      Action = "auto_process"
	ActionReviewAndProcess Action = "review_and_process"
	ActionManualReview     Action = "manual_review"
	ActionHold             Action = "hold"
	ActionError            Action = "error"
)

// IsValid reports whether the action is one of the known dispositions.
func (a Action) IsValid() bool {
	switch a {
	case ActionAutoProcess, ActionReviewAndProcess, ActionManualReview, ActionHold, ActionError:
		return true
	}
	return false
}

// Reason is a machine-readable code explaining a disposition.
type Reason string

const (
	ReasonInvalidAmount           Reason = "invalid_amount"
	ReasonInvalidAccountReference Reason = "invalid_account_reference"
	ReasonUnknownCustomer         Reason = "unknown_customer"
	ReasonDependencyUnavailable   Reason = "dependency_unavailable"
	ReasonSuspendedAccount        Reason = "suspended_account"
	ReasonHighValue               Reason = "high_value"
	ReasonNoMatchingInvoice       Reason = "no_matching_invoice"
	ReasonPossibleDuplicate       Reason = "possible_duplicate"
	ReasonAmbiguousAllocation     Reason = "ambiguous_allocation"
	ReasonExactMatch              Reason = "exact_match"
	ReasonPartialPayment          Reason = "partial_payment"
	ReasonOverpayment             Reason = "overpayment"
)

// Transaction is an incoming payment awaiting a disposition.
type Transaction struct {
	ID                string
	AccountReference  string
	Amount            decimal.Decimal
	InvoiceReference  string
	Timestamp         time.Time
	Method            string
	ExternalReference string
	Description       string
}

// MatchKind classifies how a transaction amount relates to an invoice balance.
type MatchKind string

const (
	MatchExact   MatchKind = "exact"
	MatchPartial MatchKind = "partial"
	MatchOver    MatchKind = "over"
	// MatchNone marks an outcome that had no candidate invoice.
	MatchNone MatchKind = "no_match"
)

// MatchCandidate pairs an invoice with the transaction it may settle.
type MatchCandidate struct {
	Invoice           ports.Invoice
	Delta             decimal.Decimal // transaction amount minus amount due
	Kind              MatchKind
	PossibleDuplicate bool
}

// AbsDelta returns the distance between the transaction amount and the amount due.
func (c MatchCandidate) AbsDelta() decimal.Decimal {
	return c.Delta.Abs()
}

// AllocationLine proposes applying an amount to an invoice.
// A nil InvoiceID marks the remainder as unallocated credit.
type AllocationLine struct {
	InvoiceID *string
	Amount    decimal.Decimal
}

// IsCredit reports whether the line is unallocated credit.
func (l AllocationLine) IsCredit() bool {
	return l.InvoiceID == nil
}

// Evidence is everything the collaborators told us about a transaction.
type Evidence struct {
	Customer             *ports.Customer
	Candidates           []MatchCandidate
	CustomerLookupFailed bool
	InvoiceLookupFailed  bool
	Credit               *ports.CreditCheck // only fetched for high-value payments
	FetchedAt            time.Time
	Latencies            EvidenceLatencies
}

// EvidenceLatencies tracks the time spent on each collaborator call.
type EvidenceLatencies struct {
	Directory time.Duration
	Ledger    time.Duration
}

// Best returns the highest ranked candidate, if any.
func (e *Evidence) Best() (MatchCandidate, bool) {
	if e == nil || len(e.Candidates) == 0 {
		return MatchCandidate{}, false
	}
	return e.Candidates[0], true
}
