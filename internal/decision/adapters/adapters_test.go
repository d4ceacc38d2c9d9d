package adapters

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"payrecon/internal/decision/ports"
	"payrecon/internal/directory"
	"payrecon/internal/ledger"
	"payrecon/internal/notifier"
	"payrecon/pkg/platform/sentinel"
)

func TestDirectoryAdapter(t *testing.T) {
	ctx := context.Background()
	svc, err := directory.NewService(directory.NewInMemoryStore())
	require.NoError(t, err)
	require.NoError(t, svc.Seed(ctx, []*directory.Customer{
		{ID: "cust_003", Name: "Global Manufacturing Inc", AccountNumber: "ACC-123456789",
			Status: directory.StatusSuspended, CreditLimit: decimal.NewFromInt(75000), CurrentBalance: decimal.NewFromInt(45000)},
	}))
	port := NewDirectoryAdapter(svc)

	c, err := port.GetByAccountReference(ctx, "ACC-123456789")
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, ports.CustomerSuspended, c.Status)
	assert.False(t, c.IsActive())

	c, err = port.GetByAccountReference(ctx, "ACC-000")
	require.NoError(t, err)
	assert.Nil(t, c)

	cc, err := port.CreditCheck(ctx, "cust_003", decimal.NewFromInt(1000))
	require.NoError(t, err)
	assert.False(t, cc.Approved, "suspended customers are never approved")

	_, err = port.CreditCheck(ctx, "cust_404", decimal.NewFromInt(1))
	assert.ErrorIs(t, err, sentinel.ErrNotFound)

	_, err = port.GetByAccountReference(ctx, " ")
	assert.ErrorIs(t, err, sentinel.ErrUnavailable)
}

func TestLedgerAdapter(t *testing.T) {
	ctx := context.Background()
	svc, err := ledger.NewService(ledger.NewInMemoryStore())
	require.NoError(t, err)
	require.NoError(t, svc.Seed(ctx, []*ledger.Invoice{
		{ID: "INV-A", CustomerAccount: "ACC-1", Amount: decimal.NewFromInt(100), Status: ledger.StatusPending, DueDate: time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "INV-B", CustomerAccount: "ACC-1", Amount: decimal.NewFromInt(50), PaidAmount: decimal.NewFromInt(50), Status: ledger.StatusPaid},
	}))
	_, err = svc.RecordPayment(ctx, "INV-A", ledger.PaymentRequest{Amount: decimal.NewFromInt(40), Reference: "TXN-9"})
	require.NoError(t, err)
	port := NewLedgerAdapter(svc)

	invoices, err := port.OutstandingInvoices(ctx, "ACC-1")
	require.NoError(t, err)
	require.Len(t, invoices, 1)
	assert.Equal(t, "INV-A", invoices[0].ID)
	assert.True(t, invoices[0].AmountDue.Equal(decimal.NewFromInt(60)))
	require.Len(t, invoices[0].PaymentHistory, 1)
	assert.Equal(t, "TXN-9", invoices[0].PaymentHistory[0].Reference)

	_, err = port.InvoiceByReference(ctx, "INV-Z")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)

	inv, err := port.InvoiceByReference(ctx, "INV-B")
	require.NoError(t, err)
	assert.Equal(t, ports.InvoicePaid, inv.Status)
	assert.True(t, inv.AmountDue.IsZero())
}

func TestNotifierAdapter(t *testing.T) {
	svc, err := notifier.NewService(notifier.NewInMemoryOutbox())
	require.NoError(t, err)
	port := NewNotifierAdapter(svc)

	receipt, err := port.Dispatch(context.Background(), ports.Directive{
		TemplateID:     "unknown_customer",
		RecipientClass: ports.RecipientFinanceTeam,
		Priority:       ports.PriorityUrgent,
		Payload: map[string]string{
			"transaction_id": "TXN-003", "account_number": "ACC-999888777", "amount": "5000.00",
			"transaction_date": "2025-07-01 09:30:00", "description": "",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"finance@company.com"}, receipt.Recipients)

	emails, _, err := svc.List(context.Background(), notifier.Filter{Priority: notifier.PriorityUrgent})
	require.NoError(t, err)
	require.Len(t, emails, 1)
	assert.Equal(t, receipt.MessageID, emails[0].ID)
}
