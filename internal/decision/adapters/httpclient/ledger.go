package httpclient

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"payrecon/internal/decision/ports"
	ledgerhandler "payrecon/internal/ledger/handler"
	"payrecon/pkg/platform/sentinel"
)

// LedgerClient implements ports.LedgerPort over the ERP API.
type LedgerClient struct {
	client *Client
}

// NewLedgerClient creates an ERP client.
func NewLedgerClient(client *Client) *LedgerClient {
	return &LedgerClient{client: client}
}

func (l *LedgerClient) OutstandingInvoices(ctx context.Context, accountReference string) ([]ports.Invoice, error) {
	var resp ledgerhandler.AccountInvoicesResponse
	if err := l.client.get(ctx, "/invoices/by-account/"+url.PathEscape(accountReference)+"/outstanding", &resp); err != nil {
		return nil, err
	}
	out := make([]ports.Invoice, 0, len(resp.Invoices))
	for _, inv := range resp.Invoices {
		converted, err := toPortInvoice(inv)
		if err != nil {
			return nil, err
		}
		out = append(out, converted)
	}
	return out, nil
}

// InvoiceByReference passes sentinel.ErrNotFound through for unknown invoices.
func (l *LedgerClient) InvoiceByReference(ctx context.Context, ref string) (*ports.Invoice, error) {
	var resp ledgerhandler.InvoiceResponse
	if err := l.client.get(ctx, "/invoices/"+url.PathEscape(ref), &resp); err != nil {
		return nil, err
	}
	inv, err := toPortInvoice(resp)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func toPortInvoice(r ledgerhandler.InvoiceResponse) (ports.Invoice, error) {
	due, err := parseDate(r.DueDate)
	if err != nil {
		return ports.Invoice{}, fmt.Errorf("invoice %s due date: %w", r.ID, err)
	}
	issued, err := parseDate(r.IssueDate)
	if err != nil {
		return ports.Invoice{}, fmt.Errorf("invoice %s issue date: %w", r.ID, err)
	}
	history := make([]ports.Payment, 0, len(r.Payments))
	for _, p := range r.Payments {
		history = append(history, ports.Payment{
			ID:                p.ID,
			InvoiceID:         p.InvoiceID,
			Amount:            p.Amount,
			Method:            p.Method,
			Reference:         p.Reference,
			ExternalReference: p.BankTransactionID,
			Timestamp:         p.Timestamp,
		})
	}
	return ports.Invoice{
		ID:               r.ID,
		AccountReference: r.CustomerAccount,
		Amount:           r.Amount,
		AmountDue:        r.OutstandingAmount,
		Status:           ports.InvoiceStatus(r.Status),
		DueDate:          due,
		IssueDate:        issued,
		Description:      r.Description,
		PaymentHistory:   history,
	}, nil
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %w", sentinel.ErrUnavailable, err)
	}
	return t, nil
}

var _ ports.LedgerPort = (*LedgerClient)(nil)
