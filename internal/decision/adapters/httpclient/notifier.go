package httpclient

import (
	"context"

	"payrecon/internal/decision/ports"
	notifierhandler "payrecon/internal/notifier/handler"
)

// NotifierClient implements ports.NotifierPort over the email API.
type NotifierClient struct {
	client *Client
}

// NewNotifierClient creates an email client.
func NewNotifierClient(client *Client) *NotifierClient {
	return &NotifierClient{client: client}
}

func (n *NotifierClient) Dispatch(ctx context.Context, d ports.Directive) (*ports.DispatchReceipt, error) {
	body := notifierhandler.SendTemplateRequest{
		Template:       d.TemplateID,
		RecipientClass: string(d.RecipientClass),
		Priority:       string(d.Priority),
		Data:           d.Payload,
	}
	var resp notifierhandler.SendResponse
	if err := n.client.post(ctx, "/send-template-email", body, &resp); err != nil {
		return nil, err
	}
	return &ports.DispatchReceipt{MessageID: resp.EmailID, Recipients: resp.Recipients}, nil
}

var _ ports.NotifierPort = (*NotifierClient)(nil)
