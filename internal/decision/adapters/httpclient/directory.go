package httpclient

import (
	"context"
	"net/url"

	"github.com/shopspring/decimal"

	"payrecon/internal/decision/ports"
	dirhandler "payrecon/internal/directory/handler"
)

// DirectoryClient implements ports.DirectoryPort over the CRM API.
type DirectoryClient struct {
	client *Client
}

// NewDirectoryClient creates a CRM client.
func NewDirectoryClient(client *Client) *DirectoryClient {
	return &DirectoryClient{client: client}
}

// GetByAccountReference returns nil without error when the CRM answers 404.
func (d *DirectoryClient) GetByAccountReference(ctx context.Context, ref string) (*ports.Customer, error) {
	var resp dirhandler.CustomerResponse
	if err := d.client.get(ctx, "/customers/by-account/"+url.PathEscape(ref), &resp); err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &ports.Customer{
		ID:               resp.ID,
		Name:             resp.Name,
		Email:            resp.Email,
		AccountReference: resp.AccountNumber,
		Status:           ports.CustomerStatus(resp.Status),
		CreditLimit:      resp.CreditLimit,
		CurrentBalance:   resp.CurrentBalance,
	}, nil
}

func (d *DirectoryClient) CreditCheck(ctx context.Context, customerID string, amount decimal.Decimal) (*ports.CreditCheck, error) {
	var resp dirhandler.CreditCheckResponse
	path := "/customers/" + url.PathEscape(customerID) + "/credit-check?amount=" + url.QueryEscape(amount.String())
	if err := d.client.get(ctx, path, &resp); err != nil {
		return nil, err
	}
	return &ports.CreditCheck{
		CustomerID:      resp.CustomerID,
		AvailableCredit: resp.AvailableCredit,
		Approved:        resp.Approved,
	}, nil
}

var _ ports.DirectoryPort = (*DirectoryClient)(nil)
