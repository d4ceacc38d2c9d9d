package notifier

import (
	"bytes"
	"slices"
	"strings"
	"text/template"

	dErrors "payrecon/pkg/domain-errors"
)

// Template is a named subject and body pair rendered from string data.
type Template struct {
	Name        string
	Description string
	subjectText string
	subject     *template.Template
	body        *template.Template
}

// Subject returns the unrendered subject line.
func (t *Template) Subject() string { return t.subjectText }

// Render fills the template. Missing keys are a validation error.
func (t *Template) Render(data map[string]string) (subject, body string, err error) {
	var sb, bb bytes.Buffer
	if err := t.subject.Execute(&sb, data); err != nil {
		return "", "", dErrors.Wrap(err, dErrors.CodeValidation, "missing template data for "+t.Name)
	}
	if err := t.body.Execute(&bb, data); err != nil {
		return "", "", dErrors.Wrap(err, dErrors.CodeValidation, "missing template data for "+t.Name)
	}
	return sb.String(), strings.TrimSpace(bb.String()) + "\n", nil
}

func mustTemplate(name, subject, body string) *Template {
	return &Template{
		Name:        name,
		Description: "Template for " + strings.ReplaceAll(name, "_", " ") + " notifications",
		subjectText: subject,
		subject:     template.Must(template.New(name + ".subject").Option("missingkey=error").Parse(subject)),
		body:        template.Must(template.New(name + ".body").Option("missingkey=error").Parse(body)),
	}
}

var builtinTemplates = map[string]*Template{
	"payment_mismatch": mustTemplate("payment_mismatch",
		"Payment Processing Alert - Transaction Mismatch", `
Dear Finance Team,

A payment transaction requires your attention:

Transaction Details:
- Transaction ID: {{.transaction_id}}
- Account Number: {{.account_number}}
- Amount: ${{.amount}}
- Date: {{.transaction_date}}
- Reference: {{.reference}}

Issue: {{.issue_description}}

Customer Information:
- Customer: {{.customer_name}}
- Email: {{.customer_email}}
- Account Status: {{.customer_status}}

Outstanding Invoices:
{{.outstanding_invoices}}

Action Required: {{.action_required}}

Please review and take appropriate action.

Best regards,
Automated Payment Processing System
`),
	"overpayment_alert": mustTemplate("overpayment_alert",
		"Overpayment Alert - Customer {{.customer_name}}", `
Dear Customer Service Team,

We have received an overpayment that requires processing:

Payment Details:
- Customer: {{.customer_name}}
- Account: {{.account_number}}
- Payment Amount: ${{.payment_amount}}
- Outstanding Balance: ${{.outstanding_amount}}
- Overpayment: ${{.overpayment_amount}}

This overpayment needs to be processed according to company policy.
Options: Refund, Credit to account, or Apply to future invoices.

Customer Contact: {{.customer_email}}

Please contact the customer to confirm their preference.

Best regards,
Payment Processing System
`),
	"unknown_customer": mustTemplate("unknown_customer",
		"Unknown Customer Payment - Investigation Required", `
Dear Finance Team,

We received a payment from an unknown customer account:

Payment Details:
- Transaction ID: {{.transaction_id}}
- Account Number: {{.account_number}}
- Amount: ${{.amount}}
- Date: {{.transaction_date}}
- Description: {{.description}}

No matching customer found in CRM system.

Action Required:
1. Research customer identity
2. Determine if this is a new customer
3. Process payment appropriately or return if necessary

Holding payment pending investigation.

Best regards,
Payment Processing System
`),
	"high_value_alert": mustTemplate("high_value_alert",
		"High Value Transaction Alert - ${{.amount}}", `
Dear Management Team,

A high-value transaction has been processed:

Transaction Details:
- Customer: {{.customer_name}}
- Account: {{.account_number}}
- Amount: ${{.amount}}
- Type: {{.transaction_type}}
- Date: {{.transaction_date}}

Customer Status: {{.customer_status}}
Previous Balance: ${{.previous_balance}}
New Balance: ${{.new_balance}}

This transaction exceeds the ${{.threshold}} threshold and has been flagged for review.

Please verify this transaction is legitimate.

Best regards,
Payment Monitoring System
`),
	"suspended_customer_payment": mustTemplate("suspended_customer_payment",
		"Payment from Suspended Customer - {{.customer_name}}", `
Dear Customer Service Team,

We received a payment from a suspended customer account:

Customer: {{.customer_name}}
Account: {{.account_number}}
Amount: ${{.amount}}
Suspension Reason: Account review required

The payment has been held pending account review.

Action Required:
1. Review customer account status
2. Determine if suspension should be lifted
3. Process or return payment accordingly

Customer Contact: {{.customer_email}}

Best regards,
Payment Processing System
`),
}

// LookupTemplate returns a built-in template by name.
func LookupTemplate(name string) (*Template, bool) {
	t, ok := builtinTemplates[name]
	return t, ok
}

// Templates lists the built-in templates ordered by name.
func Templates() []*Template {
	out := make([]*Template, 0, len(builtinTemplates))
	for _, t := range builtinTemplates {
		out = append(out, t)
	}
	slices.SortFunc(out, func(a, b *Template) int { return strings.Compare(a.Name, b.Name) })
	return out
}
