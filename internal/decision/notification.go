package decision

import (
	"strings"

	"github.com/shopspring/decimal"

	"payrecon/internal/decision/ports"
)

// Notification templates known to the notifier service.
const (
	TemplatePaymentMismatch   = "payment_mismatch"
	TemplateOverpaymentAlert  = "overpayment_alert"
	TemplateUnknownCustomer   = "unknown_customer"
	TemplateHighValueAlert    = "high_value_alert"
	TemplateSuspendedCustomer = "suspended_customer_payment"
)

type route struct {
	template  string
	recipient ports.RecipientClass
	priority  ports.Priority
}

type routeKey struct {
	action Action
	reason Reason
}

var (
	mismatchRoute  = route{TemplatePaymentMismatch, ports.RecipientFinanceTeam, ports.PriorityNormal}
	suspendedRoute = route{TemplateSuspendedCustomer, ports.RecipientCustomerService, ports.PriorityHigh}
)

// notificationRoutes maps (action, first decisive reason) to a template.
// Actions missing from the table produce no notification.
var notificationRoutes = map[routeKey]route{
	{ActionReviewAndProcess, ReasonPartialPayment}:      mismatchRoute,
	{ActionReviewAndProcess, ReasonAmbiguousAllocation}: mismatchRoute,
	{ActionReviewAndProcess, ReasonOverpayment}:         {TemplateOverpaymentAlert, ports.RecipientCustomerService, ports.PriorityNormal},
	{ActionManualReview, ReasonUnknownCustomer}:         {TemplateUnknownCustomer, ports.RecipientFinanceTeam, ports.PriorityUrgent},
	{ActionManualReview, ReasonHighValue}:               {TemplateHighValueAlert, ports.RecipientManagement, ports.PriorityHigh},
	{ActionManualReview, ReasonSuspendedAccount}:        suspendedRoute,
	{ActionManualReview, ReasonNoMatchingInvoice}:       mismatchRoute,
	{ActionManualReview, ReasonPossibleDuplicate}:       mismatchRoute,
	{ActionManualReview, ReasonDependencyUnavailable}:   mismatchRoute,
	{ActionHold, ReasonSuspendedAccount}:                suspendedRoute,
}

var actionRequired = map[Action]string{
	ActionReviewAndProcess: "Review the proposed allocation before posting",
	ActionManualReview:     "Manual review required before posting",
	ActionHold:             "Payment held pending account review",
}

// Selector picks the notification for an outcome. It is a pure table lookup.
type Selector struct {
	threshold decimal.Decimal
}

// NewSelector creates a selector; the high-value threshold is echoed in alerts.
func NewSelector(cfg Config) Selector {
	return Selector{threshold: cfg.HighValueThreshold}
}

// Select returns the directive for the outcome, or nil when none is due.
func (s Selector) Select(outcome *Outcome, txn Transaction, evidence *Evidence) *ports.Directive {
	if len(outcome.reasons) == 0 {
		return nil
	}
	r, ok := notificationRoutes[routeKey{outcome.action, outcome.reasons[0]}]
	if !ok {
		return nil
	}
	return &ports.Directive{
		TemplateID:     r.template,
		RecipientClass: r.recipient,
		Priority:       r.priority,
		Payload:        s.payload(outcome, txn, evidence),
	}
}

// payload carries the union of the variables used by the notifier templates
// so any route can render.
func (s Selector) payload(outcome *Outcome, txn Transaction, evidence *Evidence) map[string]string {
	reasons := make([]string, len(outcome.reasons))
	for i, r := range outcome.reasons {
		reasons[i] = string(r)
	}

	p := map[string]string{
		"transaction_id":     txn.ID,
		"account_number":     txn.AccountReference,
		"amount":             txn.Amount.StringFixed(2),
		"payment_amount":     txn.Amount.StringFixed(2),
		"transaction_date":   formatDate(txn),
		"transaction_type":   methodOrDefault(txn.Method),
		"reference":          txn.InvoiceReference,
		"description":        txn.Description,
		"issue_description":  strings.Join(reasons, ", "),
		"action_required":    actionRequired[outcome.action],
		"threshold":          s.threshold.StringFixed(2),
		"customer_name":      "Unknown",
		"customer_email":     "",
		"customer_status":    "unknown",
		"previous_balance":   "0.00",
		"new_balance":        "0.00",
		"outstanding_amount": "0.00",
		"overpayment_amount": "0.00",
	}

	if c := evidence.Customer; c != nil {
		p["customer_name"] = c.Name
		p["customer_email"] = c.Email
		p["customer_status"] = string(c.Status)
		p["previous_balance"] = c.CurrentBalance.StringFixed(2)
		p["new_balance"] = c.CurrentBalance.Sub(txn.Amount).StringFixed(2)
	}

	if evidence.Credit != nil {
		p["available_credit"] = evidence.Credit.AvailableCredit.StringFixed(2)
	}

	outstanding := decimal.Zero
	var lines []string
	for _, c := range evidence.Candidates {
		outstanding = outstanding.Add(c.Invoice.AmountDue)
		lines = append(lines, c.Invoice.ID+": "+c.Invoice.AmountDue.StringFixed(2))
	}
	p["outstanding_amount"] = outstanding.StringFixed(2)
	p["outstanding_invoices"] = strings.Join(lines, "\n")

	for _, line := range outcome.allocation {
		if line.IsCredit() {
			p["overpayment_amount"] = line.Amount.StringFixed(2)
		}
	}
	return p
}

func formatDate(txn Transaction) string {
	if txn.Timestamp.IsZero() {
		return ""
	}
	return txn.Timestamp.UTC().Format("2006-01-02 15:04:05")
}

func methodOrDefault(method string) string {
	if method == "" {
		return "payment"
	}
	return method
}
