//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"payrecon/internal/decision"
	"payrecon/internal/decision/store"
	"payrecon/pkg/platform/sentinel"
	"payrecon/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
	s.Require().NoError(s.store.Migrate(context.Background()))
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "decision_records"))
}

func (s *PostgresStoreSuite) TestRoundTrip() {
	ctx := context.Background()
	inv := "INV-2025-001"
	rec := decision.Record{
		TransactionID:    "TXN-005",
		AccountReference: "ACC-789123456",
		CustomerID:       "cust_001",
		Amount:           decimal.RequireFromString("25000.50"),
		Action:           decision.ActionHold,
		Reasons:          []decision.Reason{decision.ReasonSuspendedAccount},
		AuditReasons:     []decision.Reason{decision.ReasonHighValue, decision.ReasonOverpayment},
		Rule:             "suspended_account",
		BestMatch:        decision.MatchOver,
		Allocation: []decision.AllocationLine{
			{InvoiceID: &inv, Amount: decimal.RequireFromString("12500")},
			{Amount: decimal.RequireFromString("12500.50")},
		},
		NotificationTemplate: decision.TemplateSuspendedCustomer,
		DecidedAt:            time.Date(2025, 7, 1, 9, 30, 0, 0, time.UTC),
	}

	s.Require().NoError(s.store.Save(ctx, rec))
	got, err := s.store.FindByTransactionID(ctx, "TXN-005")
	s.Require().NoError(err)

	s.True(got.Amount.Equal(rec.Amount))
	s.Equal(rec.Reasons, got.Reasons)
	s.Equal(rec.AuditReasons, got.AuditReasons)
	s.Equal(rec.DecidedAt, got.DecidedAt)
	s.Require().Len(got.Allocation, 2)
	s.Equal("INV-2025-001", *got.Allocation[0].InvoiceID)
	s.Nil(got.Allocation[1].InvoiceID)
	s.True(got.Allocation[1].Amount.Equal(decimal.RequireFromString("12500.50")))
}

func (s *PostgresStoreSuite) TestUpsertAndMissing() {
	ctx := context.Background()
	rec := decision.Record{
		TransactionID:    "TXN-1",
		AccountReference: "ACC-1",
		Amount:           decimal.NewFromInt(10),
		Action:           decision.ActionManualReview,
		Reasons:          []decision.Reason{decision.ReasonUnknownCustomer},
		Rule:             "unknown_customer",
		DecidedAt:        time.Now().UTC().Truncate(time.Microsecond),
	}
	s.Require().NoError(s.store.Save(ctx, rec))
	rec.Action = decision.ActionError
	s.Require().NoError(s.store.Save(ctx, rec))

	got, err := s.store.FindByTransactionID(ctx, "TXN-1")
	s.Require().NoError(err)
	s.Equal(decision.ActionError, got.Action)
	s.Empty(got.AuditReasons)

	_, err = s.store.FindByTransactionID(ctx, "TXN-404")
	s.ErrorIs(err, sentinel.ErrNotFound)
}
