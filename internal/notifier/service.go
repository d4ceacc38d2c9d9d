package notifier

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	dErrors "payrecon/pkg/domain-errors"
	"payrecon/pkg/email"
	"payrecon/pkg/platform/sentinel"
	"payrecon/pkg/requestcontext"
)

const defaultRecipient = "finance@company.com"

// DefaultRecipients maps recipient classes to mailboxes.
func DefaultRecipients() map[string][]string {
	return map[string][]string{
		"finance_team":     {"finance@company.com"},
		"customer_service": {"customer.service@company.com"},
		"management":       {"management@company.com"},
	}
}

// Service is the mock email system: template rendering and an inspectable outbox.
type Service struct {
	outbox             Outbox
	recipients         map[string][]string
	logger             *slog.Logger
	highValueThreshold decimal.Decimal
}

// Option configures the notifier service.
type Option func(*Service)

// WithLogger sets the logger for the service.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithRecipients overrides the mailboxes of the given recipient classes.
func WithRecipients(recipients map[string][]string) Option {
	return func(s *Service) {
		for class, addrs := range recipients {
			if len(addrs) > 0 {
				s.recipients[class] = addrs
			}
		}
	}
}

// WithHighValueThreshold sets the amount above which Evaluate recommends a
// high-value alert. Non-positive values are ignored.
func WithHighValueThreshold(threshold decimal.Decimal) Option {
	return func(s *Service) {
		if threshold.IsPositive() {
			s.highValueThreshold = threshold
		}
	}
}

// NewService creates a notifier service.
func NewService(outbox Outbox, opts ...Option) (*Service, error) {
	if outbox == nil {
		return nil, errors.New("outbox is required")
	}
	svc := &Service{
		outbox:             outbox,
		recipients:         DefaultRecipients(),
		logger:             slog.Default(),
		highValueThreshold: DefaultHighValueThreshold,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Recipients resolves a recipient class. Unknown classes go to finance.
func (s *Service) Recipients(class string) []string {
	if addrs, ok := s.recipients[class]; ok {
		return append([]string(nil), addrs...)
	}
	return []string{defaultRecipient}
}

// Send stores a free-form email.
func (s *Service) Send(ctx context.Context, req SendRequest) (*Email, error) {
	priority, err := ParsePriority(string(req.Priority))
	if err != nil {
		return nil, err
	}
	to, cc, err := addresses(req.To, req.Cc, []string{defaultRecipient})
	if err != nil {
		return nil, err
	}
	subject := req.Subject
	if strings.TrimSpace(subject) == "" {
		subject = "Payment Processing Notification"
	}
	category := req.Category
	if category == "" {
		category = categoryGeneral
	}
	return s.store(ctx, &Email{
		To:       to,
		Cc:       cc,
		Subject:  subject,
		Body:     req.Body,
		Priority: priority,
		Category: category,
		Metadata: req.Metadata,
	})
}

// SendTemplate renders a built-in template and stores the result.
func (s *Service) SendTemplate(ctx context.Context, req TemplateRequest) (*Email, error) {
	tmpl, ok := LookupTemplate(req.Template)
	if !ok {
		return nil, dErrors.New(dErrors.CodeValidation, "template '"+req.Template+"' not found")
	}
	priority, err := ParsePriority(string(req.Priority))
	if err != nil {
		return nil, err
	}
	subject, body, err := tmpl.Render(req.Data)
	if err != nil {
		return nil, err
	}
	to, cc, err := addresses(req.To, req.Cc, s.Recipients(req.RecipientClass))
	if err != nil {
		return nil, err
	}

	metadata := make(map[string]string, len(req.Data)+1)
	for k, v := range req.Data {
		metadata[k] = v
	}
	metadata["recipient_name"] = email.DisplayName(to[0])

	return s.store(ctx, &Email{
		To:       to,
		Cc:       cc,
		Subject:  subject,
		Body:     body,
		Priority: priority,
		Category: tmpl.Name,
		Template: tmpl.Name,
		Metadata: metadata,
	})
}

// List returns emails newest first with the overall unread count.
func (s *Service) List(ctx context.Context, filter Filter) ([]*Email, int, error) {
	all, err := s.outbox.List(ctx)
	if err != nil {
		return nil, 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list emails")
	}
	out := make([]*Email, 0, len(all))
	unread := 0
	for _, e := range all {
		if !e.Read {
			unread++
		}
		if filter.Matches(e) {
			out = append(out, e)
		}
	}
	return out, unread, nil
}

// Get returns one email.
func (s *Service) Get(ctx context.Context, id string) (*Email, error) {
	e, err := s.outbox.Find(ctx, id)
	if err != nil {
		return nil, translate(err, "failed to load email")
	}
	return e, nil
}

// MarkRead flags an email as read.
func (s *Service) MarkRead(ctx context.Context, id string) (*Email, error) {
	e, err := s.outbox.MarkRead(ctx, id, requestcontext.Now(ctx))
	if err != nil {
		return nil, translate(err, "failed to mark email read")
	}
	return e, nil
}

// Statistics counts emails by category and priority.
func (s *Service) Statistics(ctx context.Context) (*Statistics, error) {
	all, err := s.outbox.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list emails")
	}
	stats := &Statistics{
		Total:      len(all),
		Categories: make(map[string]int),
		Priorities: make(map[string]int),
	}
	for _, e := range all {
		if !e.Read {
			stats.Unread++
		}
		stats.Categories[e.Category]++
		stats.Priorities[string(e.Priority)]++
	}
	return stats, nil
}

func (s *Service) store(ctx context.Context, e *Email) (*Email, error) {
	e.ID = uuid.NewString()
	e.Timestamp = requestcontext.Now(ctx)
	e.Status = statusSent
	if e.Metadata == nil {
		e.Metadata = map[string]string{}
	}
	if err := s.outbox.Append(ctx, e); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store email")
	}
	s.logger.InfoContext(ctx, "email sent",
		"request_id", requestcontext.RequestID(ctx),
		"email_id", e.ID,
		"category", e.Category,
		"priority", e.Priority,
		"recipients", len(e.To),
	)
	return e, nil
}

func addresses(to, cc, fallback []string) ([]string, []string, error) {
	if len(to) == 0 {
		to = fallback
	}
	normTo, bad := email.NormalizeAll(to)
	if len(bad) > 0 || len(normTo) == 0 {
		return nil, nil, dErrors.New(dErrors.CodeValidation, "invalid recipient address")
	}
	normCc, bad := email.NormalizeAll(cc)
	if len(bad) > 0 {
		return nil, nil, dErrors.New(dErrors.CodeValidation, "invalid cc address")
	}
	return normTo, normCc, nil
}

func translate(err error, internal string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "email not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, internal)
}
