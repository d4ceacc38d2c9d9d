package decision

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"payrecon/internal/decision/ports"
)

func TestSelector_Routes(t *testing.T) {
	tests := []struct {
		action    Action
		reason    Reason
		template  string
		recipient ports.RecipientClass
		priority  ports.Priority
	}{
		{ActionReviewAndProcess, ReasonPartialPayment, TemplatePaymentMismatch, ports.RecipientFinanceTeam, ports.PriorityNormal},
		{ActionReviewAndProcess, ReasonAmbiguousAllocation, TemplatePaymentMismatch, ports.RecipientFinanceTeam, ports.PriorityNormal},
		{ActionReviewAndProcess, ReasonOverpayment, TemplateOverpaymentAlert, ports.RecipientCustomerService, ports.PriorityNormal},
		{ActionManualReview, ReasonUnknownCustomer, TemplateUnknownCustomer, ports.RecipientFinanceTeam, ports.PriorityUrgent},
		{ActionManualReview, ReasonHighValue, TemplateHighValueAlert, ports.RecipientManagement, ports.PriorityHigh},
		{ActionManualReview, ReasonSuspendedAccount, TemplateSuspendedCustomer, ports.RecipientCustomerService, ports.PriorityHigh},
		{ActionManualReview, ReasonNoMatchingInvoice, TemplatePaymentMismatch, ports.RecipientFinanceTeam, ports.PriorityNormal},
		{ActionManualReview, ReasonPossibleDuplicate, TemplatePaymentMismatch, ports.RecipientFinanceTeam, ports.PriorityNormal},
		{ActionManualReview, ReasonDependencyUnavailable, TemplatePaymentMismatch, ports.RecipientFinanceTeam, ports.PriorityNormal},
		{ActionHold, ReasonSuspendedAccount, TemplateSuspendedCustomer, ports.RecipientCustomerService, ports.PriorityHigh},
	}

	selector := NewSelector(DefaultConfig())
	for _, tt := range tests {
		t.Run(string(tt.action)+"/"+string(tt.reason), func(t *testing.T) {
			out := &Outcome{action: tt.action, reasons: []Reason{tt.reason}}
			d := selector.Select(out, txn("T", "ACC-1", "10", ""), &Evidence{})
			require.NotNil(t, d)
			assert.Equal(t, tt.template, d.TemplateID)
			assert.Equal(t, tt.recipient, d.RecipientClass)
			assert.Equal(t, tt.priority, d.Priority)
		})
	}
}

func TestSelector_Silent(t *testing.T) {
	selector := NewSelector(DefaultConfig())
	for _, out := range []*Outcome{
		{action: ActionAutoProcess, reasons: []Reason{ReasonExactMatch}},
		{action: ActionError, reasons: []Reason{ReasonInvalidAmount}},
		{action: ActionError, reasons: []Reason{ReasonInvalidAccountReference}},
		{action: ActionManualReview},
	} {
		assert.Nil(t, selector.Select(out, txn("T", "ACC-1", "10", ""), &Evidence{}))
	}
}

func TestSelector_Payload(t *testing.T) {
	tx := txn("TXN-9", acme.AccountReference, "60000", "")
	ev := evidenceFor(tx, acme, inv001())
	ev.Credit = &ports.CreditCheck{CustomerID: acme.ID, AvailableCredit: dec("37500")}

	out := NewEngine(DefaultConfig()).Evaluate(tx, ev, decidedAt)
	d := out.Notification()
	require.NotNil(t, d)
	assert.Equal(t, TemplateHighValueAlert, d.TemplateID)

	p := d.Payload
	assert.Equal(t, "TXN-9", p["transaction_id"])
	assert.Equal(t, "60000.00", p["amount"])
	assert.Equal(t, "Acme Corporation", p["customer_name"])
	assert.Equal(t, "active", p["customer_status"])
	assert.Equal(t, "12500.00", p["previous_balance"])
	assert.Equal(t, "-47500.00", p["new_balance"])
	assert.Equal(t, "50000.00", p["threshold"])
	assert.Equal(t, "37500.00", p["available_credit"])
	assert.Equal(t, "bank_transfer", p["transaction_type"])
	assert.Equal(t, "INV-2025-001: 12500.00", p["outstanding_invoices"])
	assert.Equal(t, "high_value", p["issue_description"])
}
