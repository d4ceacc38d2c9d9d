package notifier

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"payrecon/pkg/requestcontext"
)

// DefaultHighValueThreshold is the amount above which Evaluate recommends a
// high_value_alert.
var DefaultHighValueThreshold = decimal.NewFromInt(50000)

// EvaluationInput describes a transaction as seen by the directory and the
// ledger. A nil Customer means the account is unknown; a nil Validation
// means the ledger was not consulted.
type EvaluationInput struct {
	AccountNumber string
	Amount        decimal.Decimal
	Customer      *CustomerSnapshot
	Validation    *ValidationSnapshot
}

// CustomerSnapshot is the part of a directory customer the evaluation reads.
type CustomerSnapshot struct {
	Status string
}

// ValidationSnapshot is the part of a ledger transaction check the
// evaluation reads.
type ValidationSnapshot struct {
	Status      string
	Overpayment bool
}

// Recommendation is one notification Evaluate suggests sending.
type Recommendation struct {
	Template string
	Priority Priority
	Reason   string
}

// Evaluation lists every notification a transaction warrants.
type Evaluation struct {
	Notifications []Recommendation
	EvaluatedAt   time.Time
}

// ShouldNotify reports whether any notification was recommended.
func (e *Evaluation) ShouldNotify() bool {
	return len(e.Notifications) > 0
}

// Evaluate recommends notifications for a transaction. Every condition is
// checked independently, so one transaction can warrant several emails.
// Nothing is sent.
func (s *Service) Evaluate(ctx context.Context, in EvaluationInput) *Evaluation {
	eval := &Evaluation{Notifications: []Recommendation{}, EvaluatedAt: requestcontext.Now(ctx)}
	add := func(template string, priority Priority, reason string) {
		eval.Notifications = append(eval.Notifications, Recommendation{Template: template, Priority: priority, Reason: reason})
	}

	if in.Amount.GreaterThan(s.highValueThreshold) {
		add("high_value_alert", PriorityHigh, "Transaction amount $"+in.Amount.StringFixed(2)+" exceeds threshold")
	}
	if in.Customer != nil && strings.EqualFold(in.Customer.Status, "suspended") {
		add("suspended_customer_payment", PriorityHigh, "Payment from suspended customer account")
	}
	if in.Customer == nil {
		add("unknown_customer", PriorityUrgent, "Payment from unknown customer account")
	}
	if v := in.Validation; v != nil {
		if v.Status == "warning" || v.Status == "attention_required" {
			add("payment_mismatch", PriorityNormal, "Payment validation issues detected")
		}
		if v.Overpayment {
			add("overpayment_alert", PriorityNormal, "Customer overpayment detected")
		}
	}

	s.logger.InfoContext(ctx, "notification evaluated",
		"request_id", requestcontext.RequestID(ctx),
		"account_number", in.AccountNumber,
		"recommendations", len(eval.Notifications),
	)
	return eval
}
