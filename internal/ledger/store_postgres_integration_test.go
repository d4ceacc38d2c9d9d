//go:build integration

package ledger_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"payrecon/internal/ledger"
	dErrors "payrecon/pkg/domain-errors"
	"payrecon/pkg/platform/sentinel"
	"payrecon/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *ledger.PostgresStore
	service  *ledger.Service
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.store = ledger.NewPostgresStore(s.postgres.Pool)
	s.Require().NoError(s.store.Migrate(context.Background()))
	svc, err := ledger.NewService(s.store)
	s.Require().NoError(err)
	s.service = svc
}

func (s *PostgresStoreSuite) SetupTest() {
	ctx := context.Background()
	s.Require().NoError(s.postgres.TruncateTables(ctx, "ledger_payments", "ledger_invoices"))
	s.Require().NoError(s.service.Seed(ctx, []*ledger.Invoice{
		{
			ID: "INV-2025-003", CustomerAccount: "ACC-123456789", Amount: decimal.RequireFromString("45000.00"),
			Status: ledger.StatusPending, DueDate: time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC),
			IssueDate: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), Description: "Hardware procurement",
			LineItems: []ledger.LineItem{{Product: "Server rack", Quantity: 3, UnitPrice: decimal.RequireFromString("15000")}},
		},
	}))
}

func (s *PostgresStoreSuite) TestInvoiceRoundTrip() {
	inv, err := s.store.FindInvoice(context.Background(), "INV-2025-003")
	s.Require().NoError(err)
	s.True(inv.Amount.Equal(decimal.RequireFromString("45000")))
	s.Equal(ledger.StatusPending, inv.Status)
	s.Equal("2025-06-30", inv.DueDate.Format(time.DateOnly))
	s.Require().Len(inv.LineItems, 1)
	s.Equal("Server rack", inv.LineItems[0].Product)
}

func (s *PostgresStoreSuite) TestFindMissing() {
	_, err := s.store.FindInvoice(context.Background(), "INV-0000")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestRecordPayment() {
	ctx := context.Background()
	receipt, err := s.service.RecordPayment(ctx, "INV-2025-003", ledger.PaymentRequest{Amount: decimal.RequireFromString("10000.25")})
	s.Require().NoError(err)
	s.Equal(ledger.StatusPartiallyPaid, receipt.Invoice.Status)

	inv, err := s.service.GetInvoice(ctx, "INV-2025-003")
	s.Require().NoError(err)
	s.True(inv.PaidAmount.Equal(decimal.RequireFromString("10000.25")))
	s.Require().Len(inv.Payments, 1)
	s.True(inv.Payments[0].OutstandingAfter.Equal(decimal.RequireFromString("34999.75")))
}

func (s *PostgresStoreSuite) TestOverpaymentRollsBack() {
	ctx := context.Background()
	_, err := s.service.RecordPayment(ctx, "INV-2025-003", ledger.PaymentRequest{Amount: decimal.RequireFromString("50000")})
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))

	payments, err := s.store.ListPayments(ctx, "INV-2025-003")
	s.Require().NoError(err)
	s.Empty(payments)
}
