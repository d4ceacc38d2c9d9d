package decision

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"payrecon/internal/decision/ports"
	"payrecon/pkg/platform/sentinel"
)

type stubLedger struct {
	invoices       []ports.Invoice
	outstandingErr error
	referenceErr   error
	outstandingFor []string
}

func (l *stubLedger) OutstandingInvoices(_ context.Context, accountReference string) ([]ports.Invoice, error) {
	l.outstandingFor = append(l.outstandingFor, accountReference)
	if l.outstandingErr != nil {
		return nil, l.outstandingErr
	}
	var out []ports.Invoice
	for _, inv := range l.invoices {
		if inv.AccountReference == accountReference {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (l *stubLedger) InvoiceByReference(_ context.Context, reference string) (*ports.Invoice, error) {
	if l.referenceErr != nil {
		return nil, l.referenceErr
	}
	for _, inv := range l.invoices {
		if inv.ID == reference {
			return &inv, nil
		}
	}
	return nil, nil
}

func TestClassify(t *testing.T) {
	eps := dec("0.01")
	tests := []struct {
		amount, due string
		want        MatchKind
	}{
		{"100", "100", MatchExact},
		{"100.009", "100", MatchExact},
		{"99.991", "100", MatchExact},
		{"99.99", "100", MatchPartial},
		{"50", "100", MatchPartial},
		{"100.01", "100", MatchOver},
		{"150", "100", MatchOver},
		{"10", "0", MatchOver},
	}
	for _, tt := range tests {
		t.Run(tt.amount+"_vs_"+tt.due, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(dec(tt.amount), dec(tt.due), eps))
		})
	}
}

func TestRankCandidates(t *testing.T) {
	cfg := DefaultConfig()
	invoices := []ports.Invoice{
		invoice("INV-C", "ACC-1", "900", "2025-03-01", ports.InvoicePending),
		invoice("INV-B", "ACC-1", "1100", "2025-02-01", ports.InvoicePending),
		invoice("INV-A", "ACC-1", "1100.005", "2025-02-01", ports.InvoicePending),
		invoice("INV-D", "ACC-1", "1000", "2025-09-01", ports.InvoicePending),
	}

	got := RankCandidates(txn("T", "ACC-1", "1000", ""), invoices, cfg)
	require.Len(t, got, 4)

	ids := make([]string, len(got))
	for i, c := range got {
		ids[i] = c.Invoice.ID
	}
	// exact first; then |delta| 100 ties broken by due date, then id
	assert.Equal(t, []string{"INV-D", "INV-A", "INV-B", "INV-C"}, ids)
	assert.Equal(t, MatchExact, got[0].Kind)
	assert.Equal(t, MatchPartial, got[1].Kind)
	assert.Equal(t, MatchOver, got[3].Kind)
	assert.True(t, got[3].Delta.Equal(dec("100")))
}

func TestRankCandidatesSubCentDeltasOrderTotally(t *testing.T) {
	cfg := DefaultConfig()
	x := invoice("INV-X", "ACC-1", "1000.004", "2025-03-01", ports.InvoicePending)
	y := invoice("INV-Y", "ACC-1", "1000.009", "2025-02-01", ports.InvoicePending)
	z := invoice("INV-Z", "ACC-1", "1000.013", "2025-01-01", ports.InvoicePending)
	orders := [][]ports.Invoice{
		{x, y, z}, {x, z, y}, {y, x, z}, {y, z, x}, {z, x, y}, {z, y, x},
	}

	for _, invoices := range orders {
		got := RankCandidates(txn("T", "ACC-1", "1000", ""), invoices, cfg)
		ids := make([]string, len(got))
		for i, c := range got {
			ids[i] = c.Invoice.ID
		}
		// X and Y share the first cent step and fall back to due date; Z is a step further
		assert.Equal(t, []string{"INV-Y", "INV-X", "INV-Z"}, ids)
	}
}

func TestDuplicateLookback(t *testing.T) {
	paidAt := decidedAt.Add(-72 * time.Hour)
	inv := inv001()
	inv.PaymentHistory = []ports.Payment{{ID: "PAY-1", Amount: dec("12500"), Timestamp: paidAt}}
	t1 := txn("T", acme.AccountReference, "12500", "")

	t.Run("no window flags any matching amount", func(t *testing.T) {
		got := RankCandidates(t1, []ports.Invoice{inv}, DefaultConfig())
		assert.True(t, got[0].PossibleDuplicate)
	})

	t.Run("payment outside the window is not a duplicate", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.DuplicateLookback = 24 * time.Hour
		got := RankCandidates(t1, []ports.Invoice{inv}, cfg)
		assert.False(t, got[0].PossibleDuplicate)
	})

	t.Run("payment inside the window is a duplicate", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.DuplicateLookback = 7 * 24 * time.Hour
		got := RankCandidates(t1, []ports.Invoice{inv}, cfg)
		assert.True(t, got[0].PossibleDuplicate)
	})

	t.Run("different amount is never a duplicate", func(t *testing.T) {
		got := RankCandidates(txn("T", acme.AccountReference, "12499", ""), []ports.Invoice{inv}, DefaultConfig())
		assert.False(t, got[0].PossibleDuplicate)
	})
}

func TestMatcher_FindCandidates(t *testing.T) {
	ctx := context.Background()
	paid := invoice("INV-PAID", acme.AccountReference, "0", "2025-01-01", ports.InvoicePaid)
	other := invoice("INV-OTHER", "ACC-OTHER", "12500", "2025-01-01", ports.InvoicePending)
	second := invoice("INV-2025-010", acme.AccountReference, "500", "2025-08-01", ports.InvoicePending)

	newMatcher := func(l *stubLedger) *Matcher { return NewMatcher(l, DefaultConfig()) }

	t.Run("resolved invoice reference yields exactly that invoice", func(t *testing.T) {
		ledger := &stubLedger{invoices: []ports.Invoice{inv001(), second}}
		got, err := newMatcher(ledger).FindCandidates(ctx, acme, txn("T", acme.AccountReference, "500", "INV-2025-001"))
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "INV-2025-001", got[0].Invoice.ID)
		assert.Equal(t, MatchPartial, got[0].Kind)
		assert.Empty(t, ledger.outstandingFor)
	})

	t.Run("unknown reference falls back to outstanding invoices", func(t *testing.T) {
		ledger := &stubLedger{invoices: []ports.Invoice{inv001(), second, paid}}
		got, err := newMatcher(ledger).FindCandidates(ctx, acme, txn("T", acme.AccountReference, "500", "OVERPAY_TEST"))
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "INV-2025-010", got[0].Invoice.ID)
		assert.Equal(t, []string{acme.AccountReference}, ledger.outstandingFor)
	})

	t.Run("reference to another account's invoice is ignored", func(t *testing.T) {
		ledger := &stubLedger{invoices: []ports.Invoice{other, inv001()}}
		got, err := newMatcher(ledger).FindCandidates(ctx, acme, txn("T", acme.AccountReference, "12500", "INV-OTHER"))
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "INV-2025-001", got[0].Invoice.ID)
	})

	t.Run("no outstanding invoices is an empty result", func(t *testing.T) {
		got, err := newMatcher(&stubLedger{}).FindCandidates(ctx, acme, txn("T", acme.AccountReference, "1", ""))
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("ledger failures propagate", func(t *testing.T) {
		_, err := newMatcher(&stubLedger{outstandingErr: sentinel.ErrUnavailable}).FindCandidates(ctx, acme, txn("T", acme.AccountReference, "1", ""))
		assert.ErrorIs(t, err, sentinel.ErrUnavailable)

		_, err = newMatcher(&stubLedger{referenceErr: errors.New("boom")}).FindCandidates(ctx, acme, txn("T", acme.AccountReference, "1", "INV-2025-001"))
		assert.Error(t, err)
	})

	t.Run("reference lookup not found is not a failure", func(t *testing.T) {
		ledger := &stubLedger{referenceErr: sentinel.ErrNotFound, invoices: []ports.Invoice{inv001()}}
		got, err := newMatcher(ledger).FindCandidates(ctx, acme, txn("T", acme.AccountReference, "1", "INV-404"))
		require.NoError(t, err)
		assert.Len(t, got, 1)
		assert.Equal(t, []string{acme.AccountReference}, ledger.outstandingFor)
	})
}
