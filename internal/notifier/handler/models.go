package handler

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"payrecon/internal/notifier"
	dErrors "payrecon/pkg/domain-errors"
)

// recipients accepts either a single address or a list on the wire.
type recipients []string

func (r *recipients) UnmarshalJSON(data []byte) error {
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		if one != "" {
			*r = recipients{one}
		}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return dErrors.New(dErrors.CodeBadRequest, "recipients must be a string or a list of strings")
	}
	*r = many
	return nil
}

// SendEmailRequest is the body of POST /send-email.
type SendEmailRequest struct {
	To       recipients        `json:"to"`
	Cc       recipients        `json:"cc"`
	Subject  string            `json:"subject"`
	Body     string            `json:"body"`
	Priority string            `json:"priority"`
	Category string            `json:"category"`
	Metadata map[string]string `json:"metadata"`
}

// Validate checks the priority early; address rules live in the domain.
func (r *SendEmailRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	_, err := notifier.ParsePriority(r.Priority)
	return err
}

func (r *SendEmailRequest) toSendRequest() notifier.SendRequest {
	p, _ := notifier.ParsePriority(r.Priority)
	return notifier.SendRequest{
		To:       r.To,
		Cc:       r.Cc,
		Subject:  r.Subject,
		Body:     r.Body,
		Priority: p,
		Category: r.Category,
		Metadata: r.Metadata,
	}
}

// SendTemplateRequest is the body of POST /send-template-email.
type SendTemplateRequest struct {
	Template       string            `json:"template"`
	To             recipients        `json:"to"`
	Cc             recipients        `json:"cc"`
	RecipientClass string            `json:"recipient_class"`
	Priority       string            `json:"priority"`
	Data           map[string]string `json:"data"`
}

// Validate requires a template name.
func (r *SendTemplateRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if r.Template == "" {
		return dErrors.New(dErrors.CodeValidation, "template is required")
	}
	_, err := notifier.ParsePriority(r.Priority)
	return err
}

func (r *SendTemplateRequest) toTemplateRequest() notifier.TemplateRequest {
	p, _ := notifier.ParsePriority(r.Priority)
	return notifier.TemplateRequest{
		Template:       r.Template,
		To:             r.To,
		Cc:             r.Cc,
		RecipientClass: r.RecipientClass,
		Priority:       p,
		Data:           r.Data,
	}
}

// SendResponse acknowledges a stored email.
type SendResponse struct {
	Message    string    `json:"message"`
	EmailID    string    `json:"email_id"`
	Template   string    `json:"template,omitempty"`
	Recipients []string  `json:"recipients"`
	Timestamp  time.Time `json:"timestamp"`
}

// EmailListResponse is returned by GET /emails.
type EmailListResponse struct {
	Emails      []*notifier.Email `json:"emails"`
	Total       int               `json:"total"`
	UnreadCount int               `json:"unread_count"`
}

// TemplateInfo describes a built-in template.
type TemplateInfo struct {
	Subject     string `json:"subject"`
	Description string `json:"description"`
}

// StatisticsResponse is returned by GET /statistics.
type StatisticsResponse struct {
	TotalEmails  int            `json:"total_emails"`
	UnreadEmails int            `json:"unread_emails"`
	Categories   map[string]int `json:"categories"`
	Priorities   map[string]int `json:"priorities"`
	Timestamp    time.Time      `json:"timestamp"`
}

// EvaluateRequest is the body of POST /evaluate-notification. An absent or
// empty customer object means the account is unknown.
type EvaluateRequest struct {
	Transaction struct {
		AccountNumber string          `json:"account_number"`
		Amount        decimal.Decimal `json:"amount"`
	} `json:"transaction"`
	Customer         map[string]any `json:"customer"`
	ValidationResult *struct {
		ValidationStatus string `json:"validation_status"`
		Overpayment      bool   `json:"overpayment"`
	} `json:"validation_result"`
}

// Validate rejects negative amounts.
func (r *EvaluateRequest) Validate() error {
	if r.Transaction.Amount.IsNegative() {
		return dErrors.New(dErrors.CodeValidation, "transaction amount must not be negative")
	}
	return nil
}

func (r *EvaluateRequest) toInput() notifier.EvaluationInput {
	in := notifier.EvaluationInput{
		AccountNumber: r.Transaction.AccountNumber,
		Amount:        r.Transaction.Amount,
	}
	if len(r.Customer) > 0 {
		status, _ := r.Customer["status"].(string)
		in.Customer = &notifier.CustomerSnapshot{Status: status}
	}
	if v := r.ValidationResult; v != nil {
		in.Validation = &notifier.ValidationSnapshot{Status: v.ValidationStatus, Overpayment: v.Overpayment}
	}
	return in
}

// RecommendationResponse is one suggested notification.
type RecommendationResponse struct {
	Template string `json:"template"`
	Priority string `json:"priority"`
	Reason   string `json:"reason"`
}

// EvaluateResponse is returned by POST /evaluate-notification.
type EvaluateResponse struct {
	ShouldNotify        bool                     `json:"should_notify"`
	Notifications       []RecommendationResponse `json:"notifications"`
	EvaluationTimestamp time.Time                `json:"evaluation_timestamp"`
}

func toEvaluateResponse(e *notifier.Evaluation) EvaluateResponse {
	out := make([]RecommendationResponse, 0, len(e.Notifications))
	for _, n := range e.Notifications {
		out = append(out, RecommendationResponse{Template: n.Template, Priority: string(n.Priority), Reason: n.Reason})
	}
	return EvaluateResponse{ShouldNotify: e.ShouldNotify(), Notifications: out, EvaluationTimestamp: e.EvaluatedAt}
}
