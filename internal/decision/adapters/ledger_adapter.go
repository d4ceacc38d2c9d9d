package adapters

import (
	"context"

	"payrecon/internal/decision/ports"
	"payrecon/internal/ledger"
	dErrors "payrecon/pkg/domain-errors"
	"payrecon/pkg/platform/sentinel"
)

// LedgerAdapter implements ports.LedgerPort over the in-process ERP service.
type LedgerAdapter struct {
	service *ledger.Service
}

// NewLedgerAdapter creates a new in-process ledger adapter.
func NewLedgerAdapter(service *ledger.Service) ports.LedgerPort {
	return &LedgerAdapter{service: service}
}

func (a *LedgerAdapter) OutstandingInvoices(ctx context.Context, accountReference string) ([]ports.Invoice, error) {
	invoices, err := a.service.Outstanding(ctx, accountReference)
	if err != nil {
		return nil, unavailable("ledger", err)
	}
	out := make([]ports.Invoice, 0, len(invoices))
	for _, inv := range invoices {
		out = append(out, toPortInvoice(inv))
	}
	return out, nil
}

// InvoiceByReference returns sentinel.ErrNotFound for unknown invoices.
func (a *LedgerAdapter) InvoiceByReference(ctx context.Context, ref string) (*ports.Invoice, error) {
	inv, err := a.service.GetInvoice(ctx, ref)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			return nil, sentinel.ErrNotFound
		}
		return nil, unavailable("ledger", err)
	}
	out := toPortInvoice(inv)
	return &out, nil
}

func toPortInvoice(inv *ledger.Invoice) ports.Invoice {
	history := make([]ports.Payment, 0, len(inv.Payments))
	for _, p := range inv.Payments {
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
		ID:               inv.ID,
		AccountReference: inv.CustomerAccount,
		Amount:           inv.Amount,
		AmountDue:        inv.Outstanding(),
		Status:           ports.InvoiceStatus(inv.Status),
		DueDate:          inv.DueDate,
		IssueDate:        inv.IssueDate,
		Description:      inv.Description,
		PaymentHistory:   history,
	}
}
