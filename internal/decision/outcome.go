package decision

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"payrecon/internal/decision/ports"
)

// Outcome is the immutable result of deciding a transaction.
// Accessors return copies so callers cannot alter a recorded decision.
type Outcome struct {
	transactionID string
	action        Action
	reasons       []Reason
	auditReasons  []Reason
	allocation    []AllocationLine
	notification  *ports.Directive
	rule          string
	bestMatch     MatchKind
	customerID    string
	decidedAt     time.Time
}

// TransactionID returns the id of the decided transaction.
func (o *Outcome) TransactionID() string { return o.transactionID }

// Action returns the disposition.
func (o *Outcome) Action() Action { return o.action }

// Rule returns the name of the rule that fixed the action.
func (o *Outcome) Rule() string { return o.rule }

// BestMatch returns the kind of the top-ranked candidate, or MatchNone.
func (o *Outcome) BestMatch() MatchKind { return o.bestMatch }

// CustomerID returns the resolved customer, empty when none was found.
func (o *Outcome) CustomerID() string { return o.customerID }

// DecidedAt returns the decision time.
func (o *Outcome) DecidedAt() time.Time { return o.decidedAt }

// Reasons returns the decisive reason codes, in rule order.
func (o *Outcome) Reasons() []Reason {
	return slices.Clone(o.reasons)
}

// AuditReasons returns the codes of later rules that also matched.
// They never influence the action.
func (o *Outcome) AuditReasons() []Reason {
	return slices.Clone(o.auditReasons)
}

// Allocation returns the proposed allocation lines.
func (o *Outcome) Allocation() []AllocationLine {
	lines := make([]AllocationLine, len(o.allocation))
	for i, line := range o.allocation {
		lines[i] = line
		if line.InvoiceID != nil {
			id := *line.InvoiceID
			lines[i].InvoiceID = &id
		}
	}
	return lines
}

// Notification returns the directive to dispatch, or nil when the outcome
// warrants none.
func (o *Outcome) Notification() *ports.Directive {
	if o.notification == nil {
		return nil
	}
	d := o.notification.Clone()
	return &d
}

// HasReason reports whether r is among the decisive reasons.
func (o *Outcome) HasReason(r Reason) bool {
	return slices.Contains(o.reasons, r)
}

// AllocatedTotal sums the allocation lines, including unallocated credit.
func (o *Outcome) AllocatedTotal() decimal.Decimal {
	total := decimal.Zero
	for _, line := range o.allocation {
		total = total.Add(line.Amount)
	}
	return total
}
