// Package sandbox assembles an in-process reconciliation world: the mock CRM,
// ERP and email services seeded from fixtures, wired into a decision engine
// through the in-process adapters.
package sandbox

import (
	"context"
	"fmt"
	"log/slog"

	"payrecon/internal/decision"
	"payrecon/internal/decision/adapters"
	"payrecon/internal/decision/store"
	"payrecon/internal/directory"
	"payrecon/internal/fixtures"
	"payrecon/internal/ledger"
	"payrecon/internal/notifier"
)

// World holds every service of a sandbox so callers can inspect side effects.
type World struct {
	Directory *directory.Service
	Ledger    *ledger.Service
	Notifier  *notifier.Service
	Outbox    *notifier.InMemoryOutbox
	Decisions *store.InMemoryStore
	Engine    *decision.Service
}

type options struct {
	logger   *slog.Logger
	seed     *fixtures.Seed
	decision []decision.Option
}

// Option configures a sandbox.
type Option func(*options)

// WithLogger sets the logger shared by every service.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithSeed replaces the embedded seed.
func WithSeed(seed *fixtures.Seed) Option {
	return func(o *options) {
		o.seed = seed
	}
}

// WithDecisionOptions passes extra options to the decision engine.
func WithDecisionOptions(opts ...decision.Option) Option {
	return func(o *options) {
		o.decision = append(o.decision, opts...)
	}
}

// New builds and seeds a world.
func New(ctx context.Context, opts ...Option) (*World, error) {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.seed == nil {
		seed, err := fixtures.LoadSeed()
		if err != nil {
			return nil, err
		}
		o.seed = seed
	}

	customers, err := o.seed.DirectoryCustomers()
	if err != nil {
		return nil, err
	}
	invoices, err := o.seed.LedgerInvoices()
	if err != nil {
		return nil, err
	}

	dirSvc, err := directory.NewService(directory.NewInMemoryStore(), directory.WithLogger(o.logger))
	if err != nil {
		return nil, fmt.Errorf("directory: %w", err)
	}
	if err := dirSvc.Seed(ctx, customers); err != nil {
		return nil, fmt.Errorf("seed directory: %w", err)
	}

	ledgerSvc, err := ledger.NewService(ledger.NewInMemoryStore(), ledger.WithLogger(o.logger))
	if err != nil {
		return nil, fmt.Errorf("ledger: %w", err)
	}
	if err := ledgerSvc.Seed(ctx, invoices); err != nil {
		return nil, fmt.Errorf("seed ledger: %w", err)
	}

	outbox := notifier.NewInMemoryOutbox()
	notifierSvc, err := notifier.NewService(outbox, notifier.WithLogger(o.logger))
	if err != nil {
		return nil, fmt.Errorf("notifier: %w", err)
	}

	decisions := store.NewInMemory()
	engineOpts := append([]decision.Option{
		decision.WithLogger(o.logger),
		decision.WithNotifier(adapters.NewNotifierAdapter(notifierSvc)),
		decision.WithStore(decisions),
	}, o.decision...)
	engine, err := decision.New(
		adapters.NewDirectoryAdapter(dirSvc),
		adapters.NewLedgerAdapter(ledgerSvc),
		engineOpts...,
	)
	if err != nil {
		return nil, fmt.Errorf("decision engine: %w", err)
	}

	return &World{
		Directory: dirSvc,
		Ledger:    ledgerSvc,
		Notifier:  notifierSvc,
		Outbox:    outbox,
		Decisions: decisions,
		Engine:    engine,
	}, nil
}

// Result is the outcome of running one scenario.
type Result struct {
	Scenario   fixtures.Scenario
	Outcome    *decision.Outcome
	Mismatches []string
}

// Passed reports whether the outcome met every expectation.
func (r Result) Passed() bool {
	return len(r.Mismatches) == 0
}

// RunScenarios decides every scenario against the world, in catalogue order.
// Decisions do not change collaborator state, so scenarios are independent.
func (w *World) RunScenarios(ctx context.Context, scenarios []fixtures.Scenario) ([]Result, error) {
	results := make([]Result, 0, len(scenarios))
	for _, sc := range scenarios {
		txn, err := sc.Transaction.ToTransaction()
		if err != nil {
			return nil, fmt.Errorf("scenario %s: %w", sc.Name, err)
		}
		outcome := w.Engine.Decide(ctx, txn)
		results = append(results, Result{
			Scenario:   sc,
			Outcome:    outcome,
			Mismatches: sc.Expected.Mismatches(outcome),
		})
	}
	return results, nil
}
