package store

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"payrecon/internal/decision"
	"payrecon/pkg/platform/sentinel"
)

func sampleRecord(id string) decision.Record {
	inv := "INV-2025-001"
	return decision.Record{
		TransactionID:    id,
		AccountReference: "ACC-789123456",
		CustomerID:       "cust_001",
		Amount:           decimal.RequireFromString("25000"),
		Action:           decision.ActionReviewAndProcess,
		Reasons:          []decision.Reason{decision.ReasonOverpayment},
		Rule:             "overpayment",
		BestMatch:        decision.MatchOver,
		Allocation: []decision.AllocationLine{
			{InvoiceID: &inv, Amount: decimal.RequireFromString("12500")},
			{Amount: decimal.RequireFromString("12500")},
		},
		NotificationTemplate: decision.TemplateOverpaymentAlert,
		DecidedAt:            time.Date(2025, 7, 1, 9, 30, 0, 0, time.UTC),
	}
}

func TestInMemoryStore(t *testing.T) {
	ctx := context.Background()

	t.Run("save then find", func(t *testing.T) {
		s := NewInMemory()
		require.NoError(t, s.Save(ctx, sampleRecord("TXN-1")))

		got, err := s.FindByTransactionID(ctx, "TXN-1")
		require.NoError(t, err)
		assert.Equal(t, decision.ActionReviewAndProcess, got.Action)
		assert.Len(t, got.Allocation, 2)
	})

	t.Run("missing record", func(t *testing.T) {
		_, err := NewInMemory().FindByTransactionID(ctx, "nope")
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("re-deciding replaces the record", func(t *testing.T) {
		s := NewInMemory()
		require.NoError(t, s.Save(ctx, sampleRecord("TXN-1")))
		again := sampleRecord("TXN-1")
		again.Action = decision.ActionHold
		require.NoError(t, s.Save(ctx, again))

		got, err := s.FindByTransactionID(ctx, "TXN-1")
		require.NoError(t, err)
		assert.Equal(t, decision.ActionHold, got.Action)
		assert.Equal(t, 1, s.Count())
	})

	t.Run("returned records do not alias stored state", func(t *testing.T) {
		s := NewInMemory()
		require.NoError(t, s.Save(ctx, sampleRecord("TXN-1")))

		got, err := s.FindByTransactionID(ctx, "TXN-1")
		require.NoError(t, err)
		got.Reasons[0] = decision.ReasonExactMatch
		*got.Allocation[0].InvoiceID = "changed"

		again, err := s.FindByTransactionID(ctx, "TXN-1")
		require.NoError(t, err)
		assert.Equal(t, decision.ReasonOverpayment, again.Reasons[0])
		assert.Equal(t, "INV-2025-001", *again.Allocation[0].InvoiceID)
	})
}
