package ports

import "context"

// NotifierPort dispatches notification directives to the email service.
type NotifierPort interface {
	Dispatch(ctx context.Context, directive Directive) (*DispatchReceipt, error)
}

// RecipientClass names a group of recipients rather than an address.
// The notifier maps classes to mailboxes.
type RecipientClass string

const (
	RecipientFinanceTeam     RecipientClass = "finance_team"
	RecipientCustomerService RecipientClass = "customer_service"
	RecipientManagement      RecipientClass = "management"
)

// Priority orders notifications in the recipient's inbox.
type Priority string

const (
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Directive asks the notifier to render a template for a recipient class.
type Directive struct {
	TemplateID     string
	RecipientClass RecipientClass
	Priority       Priority
	Payload        map[string]string
}

// Clone returns a copy whose payload can be modified independently.
func (d Directive) Clone() Directive {
	payload := make(map[string]string, len(d.Payload))
	for k, v := range d.Payload {
		payload[k] = v
	}
	d.Payload = payload
	return d
}

// DispatchReceipt acknowledges a queued notification.
type DispatchReceipt struct {
	MessageID  string
	Recipients []string
}
