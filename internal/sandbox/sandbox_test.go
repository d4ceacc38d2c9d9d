package sandbox

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"payrecon/internal/decision"
	"payrecon/internal/fixtures"
	"payrecon/internal/notifier"
)

func TestScenarioCatalogue(t *testing.T) {
	ctx := context.Background()
	world, err := New(ctx)
	require.NoError(t, err)

	scenarios, err := fixtures.LoadScenarios()
	require.NoError(t, err)

	results, err := world.RunScenarios(ctx, scenarios)
	require.NoError(t, err)
	require.Len(t, results, len(scenarios))

	for _, r := range results {
		t.Run(r.Scenario.Name, func(t *testing.T) {
			assert.True(t, r.Passed(), "mismatches: %v", r.Mismatches)
		})
	}
	assert.Equal(t, len(scenarios), world.Decisions.Count())
}

func TestNotificationsReachOutbox(t *testing.T) {
	ctx := context.Background()
	world, err := New(ctx)
	require.NoError(t, err)

	sc, err := fixtures.FindScenario("unknown_customer")
	require.NoError(t, err)
	txn, err := sc.Transaction.ToTransaction()
	require.NoError(t, err)

	outcome := world.Engine.Decide(ctx, txn)
	require.Equal(t, decision.ActionManualReview, outcome.Action())

	emails, unread, err := world.Notifier.List(ctx, notifier.Filter{})
	require.NoError(t, err)
	require.Len(t, emails, 1)
	assert.Equal(t, 1, unread)
	assert.Equal(t, "unknown_customer", emails[0].Template)
	assert.Equal(t, notifier.PriorityUrgent, emails[0].Priority)
	assert.Contains(t, emails[0].Body, "ACC-999888777")
}

func TestExactMatchSendsNothing(t *testing.T) {
	ctx := context.Background()
	world, err := New(ctx)
	require.NoError(t, err)

	sc, err := fixtures.FindScenario("perfect_match")
	require.NoError(t, err)
	txn, err := sc.Transaction.ToTransaction()
	require.NoError(t, err)

	outcome := world.Engine.Decide(ctx, txn)
	require.Equal(t, decision.ActionAutoProcess, outcome.Action())

	emails, _, err := world.Notifier.List(ctx, notifier.Filter{})
	require.NoError(t, err)
	assert.Empty(t, emails)

	rec, err := world.Engine.Lookup(ctx, "TXN-PERFECT-001")
	require.NoError(t, err)
	assert.Equal(t, decision.ActionAutoProcess, rec.Action)
}

func TestWithSeed(t *testing.T) {
	seed, err := fixtures.ParseSeed([]byte(`
customers:
  - id: cust_9
    name: Solo Ltd
    email: ap@solo.example
    account_number: ACC-9
    status: active
    credit_limit: "1000"
    current_balance: "0"
    created_date: "2025-01-01"
invoices:
  - id: INV-9
    customer_account: ACC-9
    amount: "100.00"
    due_date: "2025-02-01"
    issue_date: "2025-01-01"
`))
	require.NoError(t, err)

	ctx := context.Background()
	world, err := New(ctx, WithSeed(seed))
	require.NoError(t, err)

	invoices, err := world.Ledger.Outstanding(ctx, "ACC-9")
	require.NoError(t, err)
	require.Len(t, invoices, 1)
	assert.Equal(t, "INV-9", invoices[0].ID)
}
