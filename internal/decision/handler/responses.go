package handler

import (
	"time"

	"github.com/shopspring/decimal"

	"payrecon/internal/decision"
)

// AllocationLineResponse is one allocation line; invoice_id is null for an
// unapplied credit.
type AllocationLineResponse struct {
	InvoiceID *string         `json:"invoice_id"`
	Amount    decimal.Decimal `json:"amount"`
}

// NotificationResponse is the directive the engine emitted.
type NotificationResponse struct {
	TemplateID     string            `json:"template_id"`
	RecipientClass string            `json:"recipient_class"`
	Priority       string            `json:"priority"`
	Payload        map[string]string `json:"payload"`
}

// DecisionResponse is the wire form of an outcome.
type DecisionResponse struct {
	TransactionID string                   `json:"transaction_id"`
	Action        string                   `json:"action"`
	Reasons       []string                 `json:"reasons"`
	AuditReasons  []string                 `json:"audit_reasons"`
	Rule          string                   `json:"rule"`
	BestMatch     string                   `json:"best_match,omitempty"`
	CustomerID    string                   `json:"customer_id,omitempty"`
	Allocation    []AllocationLineResponse `json:"allocation"`
	Notification  *NotificationResponse    `json:"notification"`
	DecidedAt     time.Time                `json:"decided_at"`
}

// FromOutcome maps an outcome to its response.
func FromOutcome(o *decision.Outcome) DecisionResponse {
	resp := DecisionResponse{
		TransactionID: o.TransactionID(),
		Action:        string(o.Action()),
		Reasons:       reasonStrings(o.Reasons()),
		AuditReasons:  reasonStrings(o.AuditReasons()),
		Rule:          o.Rule(),
		BestMatch:     string(o.BestMatch()),
		CustomerID:    o.CustomerID(),
		Allocation:    allocationLines(o.Allocation()),
		DecidedAt:     o.DecidedAt(),
	}
	if n := o.Notification(); n != nil {
		resp.Notification = &NotificationResponse{
			TemplateID:     n.TemplateID,
			RecipientClass: string(n.RecipientClass),
			Priority:       string(n.Priority),
			Payload:        n.Payload,
		}
	}
	return resp
}

// BatchResponse is returned by POST /reconcile/decide/batch.
type BatchResponse struct {
	Decisions []DecisionResponse `json:"decisions"`
	Total     int                `json:"total"`
	Summary   map[string]int     `json:"summary"`
}

// FromOutcomes maps a batch, preserving input order, and counts actions.
func FromOutcomes(outcomes []*decision.Outcome) BatchResponse {
	resp := BatchResponse{
		Decisions: make([]DecisionResponse, 0, len(outcomes)),
		Total:     len(outcomes),
		Summary:   make(map[string]int),
	}
	for _, o := range outcomes {
		resp.Decisions = append(resp.Decisions, FromOutcome(o))
		resp.Summary[string(o.Action())]++
	}
	return resp
}

// RecordResponse is the stored form of a past decision.
type RecordResponse struct {
	TransactionID        string                   `json:"transaction_id"`
	AccountReference     string                   `json:"account_reference"`
	CustomerID           string                   `json:"customer_id,omitempty"`
	Amount               decimal.Decimal          `json:"amount"`
	Action               string                   `json:"action"`
	Reasons              []string                 `json:"reasons"`
	AuditReasons         []string                 `json:"audit_reasons"`
	Rule                 string                   `json:"rule"`
	BestMatch            string                   `json:"best_match,omitempty"`
	Allocation           []AllocationLineResponse `json:"allocation"`
	NotificationTemplate string                   `json:"notification_template,omitempty"`
	DecidedAt            time.Time                `json:"decided_at"`
}

// FromRecord maps a stored record to its response.
func FromRecord(r *decision.Record) RecordResponse {
	return RecordResponse{
		TransactionID:        r.TransactionID,
		AccountReference:     r.AccountReference,
		CustomerID:           r.CustomerID,
		Amount:               r.Amount,
		Action:               string(r.Action),
		Reasons:              reasonStrings(r.Reasons),
		AuditReasons:         reasonStrings(r.AuditReasons),
		Rule:                 r.Rule,
		BestMatch:            string(r.BestMatch),
		Allocation:           allocationLines(r.Allocation),
		NotificationTemplate: r.NotificationTemplate,
		DecidedAt:            r.DecidedAt,
	}
}

func reasonStrings(reasons []decision.Reason) []string {
	out := make([]string, len(reasons))
	for i, r := range reasons {
		out[i] = string(r)
	}
	return out
}

func allocationLines(lines []decision.AllocationLine) []AllocationLineResponse {
	out := make([]AllocationLineResponse, len(lines))
	for i, l := range lines {
		out[i] = AllocationLineResponse{InvoiceID: l.InvoiceID, Amount: l.Amount}
	}
	return out
}
