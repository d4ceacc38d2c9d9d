package decision

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// DecideBatch decides each transaction independently, at most
// BatchConcurrency at a time. Outcomes are returned in input order.
func (s *Service) DecideBatch(ctx context.Context, txns []Transaction) []*Outcome {
	outcomes := make([]*Outcome, len(txns))
	if len(txns) == 0 {
		return outcomes
	}

	var g errgroup.Group
	g.SetLimit(s.cfg.BatchConcurrency)
	for i, txn := range txns {
		g.Go(func() error {
			outcomes[i] = s.Decide(ctx, txn)
			return nil
		})
	}
	_ = g.Wait()

	s.logger.InfoContext(ctx, "batch decided", "transactions", len(txns))
	return outcomes
}
