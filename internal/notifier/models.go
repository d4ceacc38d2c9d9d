package notifier

import (
	"strings"
	"time"

	dErrors "payrecon/pkg/domain-errors"
)

// Priority orders emails in an inbox.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// ParsePriority validates a priority, defaulting blank input to normal.
func ParsePriority(s string) (Priority, error) {
	switch p := Priority(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PriorityNormal, nil
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
		return p, nil
	}
	return "", dErrors.New(dErrors.CodeValidation, "priority must be one of low, normal, high, urgent")
}

const (
	categoryGeneral = "general"
	statusSent      = "sent"
)

// Email is a message held in the mock outbox.
type Email struct {
	ID        string            `json:"id"`
	To        []string          `json:"to"`
	Cc        []string          `json:"cc"`
	Subject   string            `json:"subject"`
	Body      string            `json:"body"`
	Priority  Priority          `json:"priority"`
	Category  string            `json:"category"`
	Template  string            `json:"template_used,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
	Status    string            `json:"status"`
	Read      bool              `json:"read"`
	ReadAt    *time.Time        `json:"read_timestamp,omitempty"`
	Metadata  map[string]string `json:"metadata"`
}

// SendRequest is a free-form email.
type SendRequest struct {
	To       []string
	Cc       []string
	Subject  string
	Body     string
	Priority Priority
	Category string
	Metadata map[string]string
}

// TemplateRequest renders a named template. When To is empty the recipient
// class decides the mailboxes.
type TemplateRequest struct {
	Template       string
	To             []string
	Cc             []string
	RecipientClass string
	Priority       Priority
	Data           map[string]string
}

// Filter narrows outbox listings.
type Filter struct {
	Category   string
	Priority   Priority
	UnreadOnly bool
}

// Matches reports whether e passes the filter.
func (f Filter) Matches(e *Email) bool {
	if f.Category != "" && e.Category != f.Category {
		return false
	}
	if f.Priority != "" && e.Priority != f.Priority {
		return false
	}
	if f.UnreadOnly && e.Read {
		return false
	}
	return true
}

// Statistics summarises the outbox.
type Statistics struct {
	Total      int
	Unread     int
	Categories map[string]int
	Priorities map[string]int
}

func cloneEmail(e *Email) *Email {
	cp := *e
	cp.To = append([]string(nil), e.To...)
	cp.Cc = append([]string(nil), e.Cc...)
	if e.Metadata != nil {
		cp.Metadata = make(map[string]string, len(e.Metadata))
		for k, v := range e.Metadata {
			cp.Metadata[k] = v
		}
	}
	if e.ReadAt != nil {
		at := *e.ReadAt
		cp.ReadAt = &at
	}
	return &cp
}
