package kafka

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"payrecon/internal/decision"
	"payrecon/internal/decision/store"
	"payrecon/internal/platform/kafka/consumer"
)

func sampleRecord() decision.Record {
	inv := "INV-2025-001"
	return decision.Record{
		TransactionID:    "TXN-005",
		AccountReference: "ACC-789123456",
		CustomerID:       "cust_001",
		Amount:           decimal.RequireFromString("15000.00"),
		Action:           decision.ActionReviewAndProcess,
		Reasons:          []decision.Reason{decision.ReasonOverpayment},
		AuditReasons:     []decision.Reason{},
		Rule:             "overpayment",
		BestMatch:        decision.MatchOver,
		Allocation: []decision.AllocationLine{
			{InvoiceID: &inv, Amount: decimal.RequireFromString("12500.00")},
			{Amount: decimal.RequireFromString("2500.00")},
		},
		NotificationTemplate: "overpayment_alert",
		DecidedAt:            time.Date(2025, 7, 1, 9, 30, 0, 0, time.UTC),
	}
}

func TestEventCodec(t *testing.T) {
	raw, err := encodeRecord(sampleRecord())
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"amount":"15000"`)

	got, err := decodeRecord(raw)
	require.NoError(t, err)
	assert.Equal(t, "TXN-005", got.TransactionID)
	assert.Equal(t, decision.ActionReviewAndProcess, got.Action)
	require.Len(t, got.Allocation, 2)
	assert.True(t, got.Allocation[1].IsCredit())
	assert.True(t, got.Allocation[1].Amount.Equal(decimal.NewFromInt(2500)))

	_, err = decodeRecord([]byte(`{"version": 99}`))
	assert.Error(t, err)

	_, err = decodeRecord([]byte(fmt.Sprintf(`{"version": %d, "transaction_id": "TXN-X", "action": "approve"}`, EventVersion)))
	assert.ErrorContains(t, err, "unknown action")
}

func TestMaterializer(t *testing.T) {
	st := store.NewInMemory()
	m := NewMaterializer(st, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx := context.Background()

	raw, err := encodeRecord(sampleRecord())
	require.NoError(t, err)
	require.NoError(t, m.Handle(ctx, &consumer.Message{Topic: "payrecon.decisions", Key: []byte("TXN-005"), Value: raw}))
	require.NoError(t, m.Handle(ctx, &consumer.Message{Topic: "payrecon.decisions", Key: []byte("TXN-005"), Value: raw}))

	rec, err := st.FindByTransactionID(ctx, "TXN-005")
	require.NoError(t, err)
	assert.Equal(t, "overpayment", rec.Rule)
	assert.Equal(t, 1, st.Count())

	assert.NoError(t, m.Handle(ctx, &consumer.Message{Value: []byte("not json")}), "poison events are skipped")
}
