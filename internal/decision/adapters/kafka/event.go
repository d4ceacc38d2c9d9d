// Package kafka publishes decision records to a Kafka topic and materializes
// them back into a decision store on the consuming side.
package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"payrecon/internal/decision"
)

// EventVersion is bumped on incompatible payload changes.
const EventVersion = 1

type allocationLine struct {
	InvoiceID *string         `json:"invoice_id"`
	Amount    decimal.Decimal `json:"amount"`
}

// recordEvent is the JSON payload on the decisions topic.
type recordEvent struct {
	Version              int              `json:"version"`
	TransactionID        string           `json:"transaction_id"`
	AccountReference     string           `json:"account_reference"`
	CustomerID           string           `json:"customer_id,omitempty"`
	Amount               decimal.Decimal  `json:"amount"`
	Action               string           `json:"action"`
	Reasons              []string         `json:"reasons"`
	AuditReasons         []string         `json:"audit_reasons"`
	Rule                 string           `json:"rule"`
	BestMatch            string           `json:"best_match,omitempty"`
	Allocation           []allocationLine `json:"allocation"`
	NotificationTemplate string           `json:"notification_template,omitempty"`
	DecidedAt            time.Time        `json:"decided_at"`
}

func encodeRecord(rec decision.Record) ([]byte, error) {
	ev := recordEvent{
		Version:              EventVersion,
		TransactionID:        rec.TransactionID,
		AccountReference:     rec.AccountReference,
		CustomerID:           rec.CustomerID,
		Amount:               rec.Amount,
		Action:               string(rec.Action),
		Reasons:              reasonStrings(rec.Reasons),
		AuditReasons:         reasonStrings(rec.AuditReasons),
		Rule:                 rec.Rule,
		BestMatch:            string(rec.BestMatch),
		Allocation:           make([]allocationLine, len(rec.Allocation)),
		NotificationTemplate: rec.NotificationTemplate,
		DecidedAt:            rec.DecidedAt.UTC(),
	}
	for i, l := range rec.Allocation {
		ev.Allocation[i] = allocationLine{InvoiceID: l.InvoiceID, Amount: l.Amount}
	}
	return json.Marshal(ev)
}

func decodeRecord(raw []byte) (decision.Record, error) {
	var ev recordEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		return decision.Record{}, fmt.Errorf("decode decision event: %w", err)
	}
	if ev.Version != EventVersion {
		return decision.Record{}, fmt.Errorf("unsupported decision event version %d", ev.Version)
	}
	if !decision.Action(ev.Action).IsValid() {
		return decision.Record{}, fmt.Errorf("decision event %q has unknown action %q", ev.TransactionID, ev.Action)
	}
	rec := decision.Record{
		TransactionID:        ev.TransactionID,
		AccountReference:     ev.AccountReference,
		CustomerID:           ev.CustomerID,
		Amount:               ev.Amount,
		Action:               decision.Action(ev.Action),
		Reasons:              toReasons(ev.Reasons),
		AuditReasons:         toReasons(ev.AuditReasons),
		Rule:                 ev.Rule,
		BestMatch:            decision.MatchKind(ev.BestMatch),
		Allocation:           make([]decision.AllocationLine, len(ev.Allocation)),
		NotificationTemplate: ev.NotificationTemplate,
		DecidedAt:            ev.DecidedAt,
	}
	for i, l := range ev.Allocation {
		rec.Allocation[i] = decision.AllocationLine{InvoiceID: l.InvoiceID, Amount: l.Amount}
	}
	return rec, nil
}

func reasonStrings(reasons []decision.Reason) []string {
	out := make([]string, len(reasons))
	for i, r := range reasons {
		out[i] = string(r)
	}
	return out
}

func toReasons(values []string) []decision.Reason {
	out := make([]decision.Reason, len(values))
	for i, v := range values {
		out[i] = decision.Reason(v)
	}
	return out
}
