package decision

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"payrecon/internal/decision/metrics"
	"payrecon/internal/decision/ports"
	dErrors "payrecon/pkg/domain-errors"
	"payrecon/pkg/platform/sentinel"
	"payrecon/pkg/requestcontext"
)

const tracerName = "payrecon/internal/decision"

// Service orchestrates a decision: it gathers evidence from the directory and
// the ledger, runs the rule engine, and performs best-effort side effects.
type Service struct {
	resolver  *Resolver
	matcher   *Matcher
	engine    *Engine
	directory ports.DirectoryPort
	notifier  ports.NotifierPort
	store     Store
	publisher OutcomePublisher
	cfg       Config
	logger    *slog.Logger
	metrics   *metrics.Metrics
	tracer    trace.Tracer
}

// Option configures the decision service.
type Option func(*Service)

// WithLogger sets the logger for the service.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithMetrics sets the metrics collector for the service.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithConfig replaces the default engine configuration.
func WithConfig(cfg Config) Option {
	return func(s *Service) {
		s.cfg = cfg
	}
}

// WithNotifier enables dispatch of notification directives.
func WithNotifier(n ports.NotifierPort) Option {
	return func(s *Service) {
		s.notifier = n
	}
}

// WithStore enables persistence of decision records.
func WithStore(store Store) Option {
	return func(s *Service) {
		s.store = store
	}
}

// WithPublisher enables publication of decision records.
func WithPublisher(p OutcomePublisher) Option {
	return func(s *Service) {
		s.publisher = p
	}
}

// New creates a decision service. The directory and ledger ports are required.
func New(directory ports.DirectoryPort, ledger ports.LedgerPort, opts ...Option) (*Service, error) {
	if directory == nil {
		return nil, errors.New("directory port is required")
	}
	if ledger == nil {
		return nil, errors.New("ledger port is required")
	}

	svc := &Service{
		directory: directory,
		cfg:       DefaultConfig(),
		logger:    slog.Default(),
		tracer:    otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(svc)
	}
	if err := svc.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid decision config: %w", err)
	}

	svc.resolver = NewResolver(directory)
	svc.matcher = NewMatcher(ledger, svc.cfg)
	svc.engine = NewEngine(svc.cfg)
	return svc, nil
}

// Config returns the engine configuration in effect.
func (s *Service) Config() Config {
	return s.cfg
}

// Decide returns the disposition for txn. It never fails: invalid input and
// collaborator failures are expressed as outcomes.
func (s *Service) Decide(ctx context.Context, txn Transaction) *Outcome {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "decision.Decide", trace.WithAttributes(
		attribute.String("transaction.id", txn.ID),
		attribute.String("transaction.account_reference", txn.AccountReference),
	))
	defer span.End()

	evidence := &Evidence{}
	if IsValidTransaction(txn) {
		evidence = s.gatherEvidence(ctx, txn)
	}

	outcome := s.engine.Evaluate(txn, evidence, requestcontext.Now(ctx))
	span.SetAttributes(
		attribute.String("decision.action", string(outcome.Action())),
		attribute.String("decision.rule", outcome.Rule()),
	)

	s.recordOutcome(ctx, txn, outcome)
	s.dispatchNotification(ctx, txn, outcome)

	s.metrics.IncrementOutcome(string(outcome.Action()), firstReason(outcome))
	s.metrics.ObserveDecideLatency(time.Since(start))

	s.logger.InfoContext(ctx, "transaction decided",
		"request_id", requestcontext.RequestID(ctx),
		"transaction_id", txn.ID,
		"account_reference", txn.AccountReference,
		"action", outcome.Action(),
		"reasons", outcome.Reasons(),
		"audit_reasons", outcome.AuditReasons(),
		"rule", outcome.Rule(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return outcome
}

// gatherEvidence resolves the customer and, when one is found, the candidate
// invoices. Each call is bounded by the collaborator timeout; failures are
// recorded on the evidence rather than returned.
func (s *Service) gatherEvidence(ctx context.Context, txn Transaction) *Evidence {
	evidence := &Evidence{FetchedAt: time.Now()}

	customer, resolution, err := s.resolve(ctx, txn.AccountReference, evidence)
	if err != nil {
		evidence.CustomerLookupFailed = true
		s.logCollaboratorFailure(ctx, "directory", txn, err)
		return evidence
	}
	if resolution == ResolutionNotFound {
		return evidence
	}
	evidence.Customer = customer

	candidates, err := s.match(ctx, *customer, txn, evidence)
	if err != nil {
		evidence.InvoiceLookupFailed = true
		s.logCollaboratorFailure(ctx, "ledger", txn, err)
		return evidence
	}
	evidence.Candidates = candidates

	if txn.Amount.GreaterThan(s.cfg.HighValueThreshold) {
		evidence.Credit = s.creditCheck(ctx, *customer, txn)
	}
	return evidence
}

// creditCheck is informational: it feeds high-value alerts and never affects
// the disposition, so failures are only logged.
func (s *Service) creditCheck(ctx context.Context, customer ports.Customer, txn Transaction) *ports.CreditCheck {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.CollaboratorTimeout)
	defer cancel()

	start := time.Now()
	check, err := s.directory.CreditCheck(ctx, customer.ID, txn.Amount)
	s.metrics.ObserveCollaboratorLatency("credit_check", time.Since(start))
	if err != nil {
		s.logger.DebugContext(ctx, "credit check failed",
			"transaction_id", txn.ID,
			"customer_id", customer.ID,
			"error", err,
		)
		return nil
	}
	return check
}

func (s *Service) resolve(ctx context.Context, ref string, evidence *Evidence) (*ports.Customer, Resolution, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.CollaboratorTimeout)
	defer cancel()
	ctx, span := s.tracer.Start(ctx, "decision.Resolve")
	defer span.End()

	start := time.Now()
	customer, resolution, err := s.resolver.Resolve(ctx, ref)
	evidence.Latencies.Directory = time.Since(start)
	s.metrics.ObserveCollaboratorLatency("directory", evidence.Latencies.Directory)
	if err == nil && ctx.Err() != nil {
		err = ctx.Err()
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "directory lookup failed")
	}
	return customer, resolution, err
}

func (s *Service) match(ctx context.Context, customer ports.Customer, txn Transaction, evidence *Evidence) ([]MatchCandidate, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.CollaboratorTimeout)
	defer cancel()
	ctx, span := s.tracer.Start(ctx, "decision.FindCandidates")
	defer span.End()

	start := time.Now()
	candidates, err := s.matcher.FindCandidates(ctx, customer, txn)
	evidence.Latencies.Ledger = time.Since(start)
	s.metrics.ObserveCollaboratorLatency("ledger", evidence.Latencies.Ledger)
	if err == nil && ctx.Err() != nil {
		err = ctx.Err()
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "ledger lookup failed")
		return nil, err
	}
	span.SetAttributes(attribute.Int("decision.candidates", len(candidates)))
	return candidates, nil
}

// recordOutcome saves and publishes the decision. Failures are logged only.
func (s *Service) recordOutcome(ctx context.Context, txn Transaction, outcome *Outcome) {
	if s.store == nil && s.publisher == nil {
		return
	}
	rec := NewRecord(txn, outcome)

	if s.store != nil {
		if err := s.store.Save(ctx, rec); err != nil {
			s.metrics.IncrementSideEffectFailure("store")
			s.logger.WarnContext(ctx, "failed to save decision record",
				"transaction_id", txn.ID,
				"error", err,
			)
		}
	}
	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, rec); err != nil {
			s.metrics.IncrementSideEffectFailure("publish")
			s.logger.WarnContext(ctx, "failed to publish decision record",
				"transaction_id", txn.ID,
				"error", err,
			)
		}
	}
}

// dispatchNotification sends the outcome's directive, if any. A failed
// dispatch never changes the outcome.
func (s *Service) dispatchNotification(ctx context.Context, txn Transaction, outcome *Outcome) {
	directive := outcome.Notification()
	if directive == nil || s.notifier == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, s.cfg.CollaboratorTimeout)
	defer cancel()

	start := time.Now()
	receipt, err := s.notifier.Dispatch(ctx, *directive)
	if err == nil && receipt == nil {
		err = errors.New("notifier returned no receipt")
	}
	s.metrics.ObserveCollaboratorLatency("notifier", time.Since(start))
	if err != nil {
		s.metrics.IncrementSideEffectFailure("notify")
		s.logger.WarnContext(ctx, "notification dispatch failed",
			"transaction_id", txn.ID,
			"template", directive.TemplateID,
			"error", err,
		)
		return
	}
	s.logger.DebugContext(ctx, "notification dispatched",
		"transaction_id", txn.ID,
		"template", directive.TemplateID,
		"message_id", receipt.MessageID,
	)
}

// Lookup returns the stored record for a transaction.
func (s *Service) Lookup(ctx context.Context, transactionID string) (*Record, error) {
	if s.store == nil {
		return nil, dErrors.New(dErrors.CodeUnavailable, "decision records are not kept")
	}
	rec, err := s.store.FindByTransactionID(ctx, transactionID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "decision not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load decision")
	}
	return rec, nil
}

func (s *Service) logCollaboratorFailure(ctx context.Context, source string, txn Transaction, err error) {
	s.logger.WarnContext(ctx, "collaborator lookup failed",
		"source", source,
		"transaction_id", txn.ID,
		"error", err,
	)
}

func firstReason(o *Outcome) string {
	reasons := o.Reasons()
	if len(reasons) == 0 {
		return ""
	}
	return string(reasons[0])
}
