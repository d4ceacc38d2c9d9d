package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"payrecon/internal/fixtures"
)

func scenariosCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scenarios [name...]",
		Short: "Run the reconciliation scenario catalogue",
		Long: `Run the built-in scenarios against the seeded world and compare each
disposition with its expected outcome. Exits non-zero when any scenario fails.

Examples:
  reconcile scenarios
  reconcile scenarios overpayment suspended_customer`,
		RunE: runScenarios,
	}
	return cmd
}

func runScenarios(cmd *cobra.Command, args []string) error {
	scenarios, err := selectScenarios(args)
	if err != nil {
		return err
	}
	world, err := newWorld(cmd)
	if err != nil {
		return err
	}
	results, err := world.RunScenarios(cmd.Context(), scenarios)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SCENARIO\tTRANSACTION\tACTION\tREASONS\tRESULT")
	failed := 0
	for _, r := range results {
		status := "PASS"
		if !r.Passed() {
			status = "FAIL"
			failed++
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			r.Scenario.Name,
			r.Outcome.TransactionID(),
			r.Outcome.Action(),
			joinReasons(r.Outcome.Reasons()),
			status,
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	for _, r := range results {
		for _, m := range r.Mismatches {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", r.Scenario.Name, m)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d scenarios failed", failed, len(results))
	}
	return nil
}

func selectScenarios(names []string) ([]fixtures.Scenario, error) {
	if len(names) == 0 {
		return fixtures.LoadScenarios()
	}
	out := make([]fixtures.Scenario, 0, len(names))
	for _, name := range names {
		sc, err := fixtures.FindScenario(name)
		if err != nil {
			return nil, err
		}
		out = append(out, sc)
	}
	return out, nil
}
