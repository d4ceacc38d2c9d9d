package decision

import (
	"slices"
	"strings"
	"time"
)

// AllocationPolicy tells the planner how to split a transaction.
type AllocationPolicy string

const (
	AllocateNone        AllocationPolicy = "none"
	AllocateSingle      AllocationPolicy = "single"
	AllocateOverpayment AllocationPolicy = "overpayment"
	AllocateSpread      AllocationPolicy = "spread"
)

// RuleInput is everything a rule predicate may look at.
type RuleInput struct {
	Transaction Transaction
	Evidence    *Evidence
	Config      Config
}

// best returns the top candidate, if any.
func (in RuleInput) best() (MatchCandidate, bool) {
	return in.Evidence.Best()
}

// tied returns the candidates whose |delta| is within epsilon of the best one.
func (in RuleInput) tied() []MatchCandidate {
	best, ok := in.best()
	if !ok {
		return nil
	}
	var out []MatchCandidate
	for _, c := range in.Evidence.Candidates {
		if in.Config.equal(c.AbsDelta(), best.AbsDelta()) {
			out = append(out, c)
		}
	}
	return out
}

// Rule is one row of the disposition table.
// Terminal rules end evaluation: later rules are not consulted for audit
// reasons because the evidence they need was never gathered.
type Rule struct {
	Name     string
	Action   Action
	Reasons  []Reason
	Policy   AllocationPolicy
	Terminal bool
	Applies  func(in RuleInput) bool
}

// Verdict is the result of running the rule table.
type Verdict struct {
	Rule         string
	Action       Action
	Reasons      []Reason
	AuditReasons []Reason
	Policy       AllocationPolicy
}

// DefaultRules returns the disposition table in precedence order.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name: "invalid_amount", Action: ActionError, Reasons: []Reason{ReasonInvalidAmount}, Terminal: true,
			Applies: func(in RuleInput) bool { return !in.Transaction.Amount.IsPositive() },
		},
		{
			Name: "invalid_account_reference", Action: ActionError, Reasons: []Reason{ReasonInvalidAccountReference}, Terminal: true,
			Applies: func(in RuleInput) bool { return strings.TrimSpace(in.Transaction.AccountReference) == "" },
		},
		{
			Name: "directory_unavailable", Action: ActionManualReview, Reasons: []Reason{ReasonDependencyUnavailable}, Terminal: true,
			Applies: func(in RuleInput) bool { return in.Evidence.CustomerLookupFailed },
		},
		{
			Name: "unknown_customer", Action: ActionManualReview, Reasons: []Reason{ReasonUnknownCustomer}, Terminal: true,
			Applies: func(in RuleInput) bool { return in.Evidence.Customer == nil },
		},
		{
			Name: "ledger_unavailable", Action: ActionManualReview, Reasons: []Reason{ReasonDependencyUnavailable}, Terminal: true,
			Applies: func(in RuleInput) bool { return in.Evidence.InvoiceLookupFailed },
		},
		{
			Name: "suspended_duplicate", Action: ActionManualReview, Reasons: []Reason{ReasonSuspendedAccount, ReasonPossibleDuplicate},
			Applies: func(in RuleInput) bool {
				best, ok := in.best()
				return !in.Evidence.Customer.IsActive() && ok && best.PossibleDuplicate
			},
		},
		{
			Name: "suspended_account", Action: ActionHold, Reasons: []Reason{ReasonSuspendedAccount},
			Applies: func(in RuleInput) bool { return !in.Evidence.Customer.IsActive() },
		},
		{
			Name: "high_value", Action: ActionManualReview, Reasons: []Reason{ReasonHighValue},
			Applies: func(in RuleInput) bool {
				amount := in.Transaction.Amount
				if !amount.GreaterThan(in.Config.HighValueThreshold) {
					return false
				}
				limit := in.Config.HighValueAutoApproveLimit
				if !limit.Valid {
					return true
				}
				best, ok := in.best()
				approved := ok && best.Kind == MatchExact && !best.PossibleDuplicate && amount.LessThanOrEqual(limit.Decimal)
				return !approved
			},
		},
		{
			Name: "no_matching_invoice", Action: ActionManualReview, Reasons: []Reason{ReasonNoMatchingInvoice},
			Applies: func(in RuleInput) bool { return len(in.Evidence.Candidates) == 0 },
		},
		{
			Name: "possible_duplicate", Action: ActionManualReview, Reasons: []Reason{ReasonPossibleDuplicate},
			Applies: func(in RuleInput) bool {
				best, ok := in.best()
				return ok && best.PossibleDuplicate
			},
		},
		{
			Name: "ambiguous_allocation", Action: ActionReviewAndProcess, Reasons: []Reason{ReasonAmbiguousAllocation}, Policy: AllocateSpread,
			Applies: func(in RuleInput) bool { return len(in.tied()) >= 2 },
		},
		{
			Name: "exact_match", Action: ActionAutoProcess, Reasons: []Reason{ReasonExactMatch}, Policy: AllocateSingle,
			Applies: func(in RuleInput) bool { return in.bestKind() == MatchExact },
		},
		{
			Name: "partial_payment", Action: ActionReviewAndProcess, Reasons: []Reason{ReasonPartialPayment}, Policy: AllocateSingle,
			Applies: func(in RuleInput) bool { return in.bestKind() == MatchPartial },
		},
		{
			Name: "overpayment", Action: ActionReviewAndProcess, Reasons: []Reason{ReasonOverpayment}, Policy: AllocateOverpayment,
			Applies: func(in RuleInput) bool { return in.bestKind() == MatchOver },
		},
	}
}

func (in RuleInput) bestKind() MatchKind {
	best, ok := in.best()
	if !ok {
		return MatchNone
	}
	return best.Kind
}

// Engine turns a transaction and its evidence into an outcome.
// It performs no I/O; the same input always yields the same outcome.
type Engine struct {
	cfg      Config
	rules    []Rule
	planner  Planner
	selector Selector
}

// NewEngine creates an engine running the default rule table.
func NewEngine(cfg Config) *Engine {
	return &Engine{
		cfg:      cfg,
		rules:    DefaultRules(),
		planner:  Planner{},
		selector: NewSelector(cfg),
	}
}

// Rules returns the rule names in precedence order.
func (e *Engine) Rules() []string {
	names := make([]string, len(e.rules))
	for i, r := range e.rules {
		names[i] = r.Name
	}
	return names
}

// Apply runs the rule table top-down. The first matching rule fixes the
// action and reasons; every later matching rule only contributes audit
// reasons.
func (e *Engine) Apply(in RuleInput) Verdict {
	if in.Evidence == nil {
		in.Evidence = &Evidence{}
	}
	var verdict Verdict
	matched := false
	for _, rule := range e.rules {
		if matched && rule.Terminal {
			continue
		}
		if !rule.Applies(in) {
			continue
		}
		if !matched {
			matched = true
			verdict = Verdict{
				Rule:    rule.Name,
				Action:  rule.Action,
				Reasons: slices.Clone(rule.Reasons),
				Policy:  rule.Policy,
			}
			if rule.Policy == "" {
				verdict.Policy = AllocateNone
			}
			if rule.Terminal {
				break
			}
			continue
		}
		for _, r := range rule.Reasons {
			if !slices.Contains(verdict.Reasons, r) && !slices.Contains(verdict.AuditReasons, r) {
				verdict.AuditReasons = append(verdict.AuditReasons, r)
			}
		}
	}
	if !matched {
		// Every kind of best candidate is covered above; reaching here means
		// the table was edited without a fallback.
		verdict = Verdict{
			Rule:    "fallback",
			Action:  ActionManualReview,
			Reasons: []Reason{ReasonNoMatchingInvoice},
			Policy:  AllocateNone,
		}
	}
	return verdict
}

// Evaluate decides a transaction from the gathered evidence.
func (e *Engine) Evaluate(txn Transaction, evidence *Evidence, decidedAt time.Time) *Outcome {
	if evidence == nil {
		evidence = &Evidence{}
	}
	in := RuleInput{Transaction: txn, Evidence: evidence, Config: e.cfg}
	verdict := e.Apply(in)

	outcome := &Outcome{
		transactionID: txn.ID,
		action:        verdict.Action,
		reasons:       verdict.Reasons,
		auditReasons:  verdict.AuditReasons,
		rule:          verdict.Rule,
		bestMatch:     in.bestKind(),
		decidedAt:     decidedAt,
	}
	if evidence.Customer != nil {
		outcome.customerID = evidence.Customer.ID
	}

	candidates := evidence.Candidates
	if verdict.Policy == AllocateSpread {
		candidates = in.tied()
	}
	outcome.allocation = e.planner.Propose(txn, candidates, verdict.Policy)
	outcome.notification = e.selector.Select(outcome, txn, evidence)
	return outcome
}

// IsValidTransaction reports whether txn passes input validation, i.e. whether
// the collaborators should be consulted at all.
func IsValidTransaction(txn Transaction) bool {
	return txn.Amount.IsPositive() && strings.TrimSpace(txn.AccountReference) != ""
}
