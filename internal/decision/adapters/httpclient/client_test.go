package httpclient

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"payrecon/internal/decision/ports"
	"payrecon/internal/directory"
	dirhandler "payrecon/internal/directory/handler"
	"payrecon/internal/ledger"
	ledgerhandler "payrecon/internal/ledger/handler"
	"payrecon/internal/notifier"
	notifierhandler "payrecon/internal/notifier/handler"
	"payrecon/pkg/platform/circuit"
	"payrecon/pkg/platform/sentinel"
)

func quiet() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func newCollaborators(t *testing.T) *httptest.Server {
	t.Helper()
	ctx := context.Background()

	dirSvc, err := directory.NewService(directory.NewInMemoryStore())
	require.NoError(t, err)
	require.NoError(t, dirSvc.Seed(ctx, []*directory.Customer{
		{ID: "cust_001", Name: "Acme Corporation", Email: "contact@acme.com", AccountNumber: "ACC-789123456",
			Status: directory.StatusActive, CreditLimit: decimal.NewFromInt(50000), CurrentBalance: decimal.NewFromInt(12500)},
	}))

	ledgerSvc, err := ledger.NewService(ledger.NewInMemoryStore())
	require.NoError(t, err)
	require.NoError(t, ledgerSvc.Seed(ctx, []*ledger.Invoice{
		{ID: "INV-2025-001", CustomerAccount: "ACC-789123456", Amount: decimal.NewFromInt(12500), Status: ledger.StatusPending,
			DueDate: time.Date(2025, 7, 15, 0, 0, 0, 0, time.UTC), IssueDate: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)},
	}))
	_, err = ledgerSvc.RecordPayment(ctx, "INV-2025-001", ledger.PaymentRequest{Amount: decimal.NewFromInt(500), BankTransactionID: "BT-1"})
	require.NoError(t, err)

	notifierSvc, err := notifier.NewService(notifier.NewInMemoryOutbox())
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Route("/crm/api", dirhandler.New(dirSvc, quiet()).Register)
	r.Route("/erp/api", ledgerhandler.New(ledgerSvc, quiet()).Register)
	r.Route("/email/api", notifierhandler.New(notifierSvc, quiet()).Register)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestDirectoryClient(t *testing.T) {
	srv := newCollaborators(t)
	dir := NewDirectoryClient(NewClient("directory", srv.URL+"/crm/api"))
	ctx := context.Background()

	t.Run("known account", func(t *testing.T) {
		c, err := dir.GetByAccountReference(ctx, "ACC-789123456")
		require.NoError(t, err)
		require.NotNil(t, c)
		assert.Equal(t, "cust_001", c.ID)
		assert.Equal(t, ports.CustomerActive, c.Status)
		assert.True(t, c.CurrentBalance.Equal(decimal.NewFromInt(12500)))
	})

	t.Run("unknown account is nil without error", func(t *testing.T) {
		c, err := dir.GetByAccountReference(ctx, "ACC-999888777")
		require.NoError(t, err)
		assert.Nil(t, c)
	})

	t.Run("credit check", func(t *testing.T) {
		cc, err := dir.CreditCheck(ctx, "cust_001", decimal.NewFromInt(75000))
		require.NoError(t, err)
		assert.False(t, cc.Approved)
		assert.True(t, cc.AvailableCredit.Equal(decimal.NewFromInt(37500)))
	})
}

func TestLedgerClient(t *testing.T) {
	srv := newCollaborators(t)
	led := NewLedgerClient(NewClient("ledger", srv.URL+"/erp/api"))
	ctx := context.Background()

	t.Run("outstanding invoices carry amount due and history", func(t *testing.T) {
		invoices, err := led.OutstandingInvoices(ctx, "ACC-789123456")
		require.NoError(t, err)
		require.Len(t, invoices, 1)
		inv := invoices[0]
		assert.True(t, inv.AmountDue.Equal(decimal.NewFromInt(12000)))
		assert.Equal(t, ports.InvoicePartiallyPaid, inv.Status)
		assert.Equal(t, "2025-07-15", inv.DueDate.Format(time.DateOnly))
		require.Len(t, inv.PaymentHistory, 1)
		assert.Equal(t, "BT-1", inv.PaymentHistory[0].ExternalReference)
	})

	t.Run("unknown invoice is ErrNotFound", func(t *testing.T) {
		_, err := led.InvoiceByReference(ctx, "INV-0000")
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})
}

func TestNotifierClient(t *testing.T) {
	srv := newCollaborators(t)
	n := NewNotifierClient(NewClient("notifier", srv.URL+"/email/api"))

	receipt, err := n.Dispatch(context.Background(), ports.Directive{
		TemplateID:     "suspended_customer_payment",
		RecipientClass: ports.RecipientCustomerService,
		Priority:       ports.PriorityHigh,
		Payload: map[string]string{
			"customer_name": "Global Manufacturing Inc", "account_number": "ACC-123456789",
			"amount": "10000.00", "customer_email": "accounts@globalmanuf.com",
		},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, receipt.MessageID)
	assert.Equal(t, []string{"customer.service@company.com"}, receipt.Recipients)

	_, err = n.Dispatch(context.Background(), ports.Directive{TemplateID: "nope"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, sentinel.ErrUnavailable)
}

func TestClientFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)

	breaker := circuit.New("directory", circuit.WithFailureThreshold(2), circuit.WithCooldown(time.Hour))
	dir := NewDirectoryClient(NewClient("directory", srv.URL, WithBreaker(breaker), WithLogger(quiet())))
	ctx := context.Background()

	_, err := dir.GetByAccountReference(ctx, "ACC-1")
	assert.ErrorIs(t, err, sentinel.ErrUnavailable)
	_, err = dir.GetByAccountReference(ctx, "ACC-1")
	assert.ErrorIs(t, err, sentinel.ErrUnavailable)
	assert.True(t, breaker.IsOpen())

	_, err = dir.GetByAccountReference(ctx, "ACC-1")
	assert.ErrorIs(t, err, sentinel.ErrUnavailable)
	assert.Equal(t, int32(2), calls.Load(), "open breaker must not reach the server")
}

func TestClientTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	t.Cleanup(srv.Close)

	led := NewLedgerClient(NewClient("ledger", srv.URL))
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := led.OutstandingInvoices(ctx, "ACC-1")
	assert.ErrorIs(t, err, sentinel.ErrUnavailable)
}
