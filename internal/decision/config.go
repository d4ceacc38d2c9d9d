package decision

import (
	"time"

	"github.com/shopspring/decimal"

	dErrors "payrecon/pkg/domain-errors"
)

const (
	defaultCollaboratorTimeout = 2 * time.Second
	defaultBatchConcurrency    = 8
)

var (
	defaultEpsilon            = decimal.RequireFromString("0.01")
	defaultHighValueThreshold = decimal.NewFromInt(50000)
)

// Config holds the tunables of the decision engine.
type Config struct {
	// Epsilon is the tolerance for monetary equality.
	Epsilon decimal.Decimal
	// HighValueThreshold routes larger payments to manual review.
	HighValueThreshold decimal.Decimal
	// HighValueAutoApproveLimit lets exact, non-duplicate high-value payments
	// up to this amount skip the high-value rule. Unset disables the override.
	HighValueAutoApproveLimit decimal.NullDecimal
	// DuplicateLookback bounds how far apart a prior payment may be to count
	// as a duplicate. Zero means no bound.
	DuplicateLookback time.Duration
	// CollaboratorTimeout bounds each directory and ledger call.
	CollaboratorTimeout time.Duration
	// BatchConcurrency bounds the number of transactions decided in parallel.
	BatchConcurrency int
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		Epsilon:             defaultEpsilon,
		HighValueThreshold:  defaultHighValueThreshold,
		CollaboratorTimeout: defaultCollaboratorTimeout,
		BatchConcurrency:    defaultBatchConcurrency,
	}
}

// Validate rejects configurations the rules cannot work with.
func (c Config) Validate() error {
	if !c.Epsilon.IsPositive() {
		return dErrors.New(dErrors.CodeValidation, "epsilon must be positive")
	}
	if !c.HighValueThreshold.IsPositive() {
		return dErrors.New(dErrors.CodeValidation, "high value threshold must be positive")
	}
	if c.HighValueAutoApproveLimit.Valid && c.HighValueAutoApproveLimit.Decimal.LessThan(c.HighValueThreshold) {
		return dErrors.New(dErrors.CodeValidation, "high value auto-approve limit must not be below the threshold")
	}
	if c.DuplicateLookback < 0 {
		return dErrors.New(dErrors.CodeValidation, "duplicate lookback must not be negative")
	}
	if c.CollaboratorTimeout <= 0 {
		return dErrors.New(dErrors.CodeValidation, "collaborator timeout must be positive")
	}
	if c.BatchConcurrency < 1 {
		return dErrors.New(dErrors.CodeValidation, "batch concurrency must be at least 1")
	}
	return nil
}

// equal compares two amounts within epsilon.
func (c Config) equal(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThan(c.Epsilon)
}

// deltaStep quantises a non-negative delta to whole epsilons.
func (c Config) deltaStep(d decimal.Decimal) decimal.Decimal {
	if !c.Epsilon.IsPositive() {
		return d
	}
	return d.Div(c.Epsilon).Floor()
}
