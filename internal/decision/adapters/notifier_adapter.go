package adapters

import (
	"context"

	"payrecon/internal/decision/ports"
	"payrecon/internal/notifier"
)

// NotifierAdapter implements ports.NotifierPort over the in-process email service.
type NotifierAdapter struct {
	service *notifier.Service
}

// NewNotifierAdapter creates a new in-process notifier adapter.
func NewNotifierAdapter(service *notifier.Service) ports.NotifierPort {
	return &NotifierAdapter{service: service}
}

func (a *NotifierAdapter) Dispatch(ctx context.Context, d ports.Directive) (*ports.DispatchReceipt, error) {
	email, err := a.service.SendTemplate(ctx, notifier.TemplateRequest{
		Template:       d.TemplateID,
		RecipientClass: string(d.RecipientClass),
		Priority:       notifier.Priority(d.Priority),
		Data:           d.Payload,
	})
	if err != nil {
		return nil, err
	}
	return &ports.DispatchReceipt{MessageID: email.ID, Recipients: email.To}, nil
}
