package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"payrecon/internal/decision"
	dechandler "payrecon/internal/decision/handler"
)

func decideCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decide",
		Short: "Decide a single transaction",
		Long: `Decide a single transaction and print the disposition.

Examples:
  reconcile decide --account ACC-789123456 --amount 12500 --reference INV-2025-001
  reconcile decide --account ACC-123456789 --amount 10000 --json`,
		RunE: runDecide,
	}

	cmd.Flags().String("id", "", "transaction id (generated when empty)")
	cmd.Flags().String("account", "", "account reference of the payer")
	cmd.Flags().String("amount", "", "payment amount")
	cmd.Flags().String("reference", "", "invoice reference quoted by the payer")
	cmd.Flags().String("method", "", "payment method")
	cmd.Flags().String("description", "", "free-text description")
	cmd.Flags().Bool("json", false, "print the decision as JSON")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func runDecide(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	id, _ := flags.GetString("id")
	account, _ := flags.GetString("account")
	rawAmount, _ := flags.GetString("amount")
	reference, _ := flags.GetString("reference")
	method, _ := flags.GetString("method")
	description, _ := flags.GetString("description")
	asJSON, _ := flags.GetBool("json")

	amount, err := decimal.NewFromString(rawAmount)
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", rawAmount, err)
	}
	if id == "" {
		id = "TXN-" + uuid.NewString()
	}

	world, err := newWorld(cmd)
	if err != nil {
		return err
	}
	outcome := world.Engine.Decide(cmd.Context(), decision.Transaction{
		ID:               id,
		AccountReference: account,
		Amount:           amount,
		InvoiceReference: reference,
		Timestamp:        time.Now().UTC(),
		Method:           method,
		Description:      description,
	})

	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(dechandler.FromOutcome(outcome))
	}

	fmt.Fprintf(out, "Transaction: %s\n", outcome.TransactionID())
	fmt.Fprintf(out, "Action:      %s\n", outcome.Action())
	fmt.Fprintf(out, "Reasons:     %s\n", joinReasons(outcome.Reasons()))
	if audit := outcome.AuditReasons(); len(audit) > 0 {
		fmt.Fprintf(out, "Audit:       %s\n", joinReasons(audit))
	}
	for _, line := range outcome.Allocation() {
		target := "unapplied credit"
		if line.InvoiceID != nil {
			target = *line.InvoiceID
		}
		fmt.Fprintf(out, "Allocate:    %s -> %s\n", line.Amount.StringFixed(2), target)
	}
	if n := outcome.Notification(); n != nil {
		fmt.Fprintf(out, "Notify:      %s (%s, %s)\n", n.TemplateID, n.RecipientClass, n.Priority)
	}
	return nil
}

func joinReasons(reasons []decision.Reason) string {
	if len(reasons) == 0 {
		return "-"
	}
	parts := make([]string, len(reasons))
	for i, r := range reasons {
		parts[i] = string(r)
	}
	return strings.Join(parts, ", ")
}
