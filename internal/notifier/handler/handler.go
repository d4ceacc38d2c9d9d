package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"payrecon/internal/notifier"
	"payrecon/pkg/platform/httputil"
	"payrecon/pkg/requestcontext"
)

// Service defines the notifier operations the handler needs.
type Service interface {
	Send(ctx context.Context, req notifier.SendRequest) (*notifier.Email, error)
	SendTemplate(ctx context.Context, req notifier.TemplateRequest) (*notifier.Email, error)
	List(ctx context.Context, filter notifier.Filter) ([]*notifier.Email, int, error)
	Get(ctx context.Context, id string) (*notifier.Email, error)
	MarkRead(ctx context.Context, id string) (*notifier.Email, error)
	Statistics(ctx context.Context) (*notifier.Statistics, error)
	Evaluate(ctx context.Context, in notifier.EvaluationInput) *notifier.Evaluation
}

// Handler exposes the mock email system over HTTP.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a notifier handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the email endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/health", h.handleHealth)
	r.Post("/send-email", h.handleSend)
	r.Post("/send-template-email", h.handleSendTemplate)
	r.Get("/emails", h.handleList)
	r.Get("/emails/{id}", h.handleGet)
	r.Post("/emails/{id}/mark-read", h.handleMarkRead)
	r.Get("/templates", h.handleTemplates)
	r.Get("/statistics", h.handleStatistics)
	r.Post("/evaluate-notification", h.handleEvaluate)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"service":   "Email Notification System",
		"timestamp": requestcontext.Now(r.Context()),
	})
}

func (h *Handler) handleSend(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[SendEmailRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	e, err := h.service.Send(ctx, req.toSendRequest())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, SendResponse{
		Message:    "Email sent successfully",
		EmailID:    e.ID,
		Recipients: e.To,
		Timestamp:  e.Timestamp,
	})
}

func (h *Handler) handleSendTemplate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	req, ok := httputil.DecodeAndPrepare[SendTemplateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	e, err := h.service.SendTemplate(ctx, req.toTemplateRequest())
	if err != nil {
		h.logger.WarnContext(ctx, "template email rejected",
			"request_id", requestID,
			"template", req.Template,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, SendResponse{
		Message:    "Template email sent successfully",
		EmailID:    e.ID,
		Template:   e.Template,
		Recipients: e.To,
		Timestamp:  e.Timestamp,
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := notifier.Filter{
		Category:   q.Get("category"),
		UnreadOnly: q.Get("unread") == "true",
	}
	if raw := q.Get("priority"); raw != "" {
		p, err := notifier.ParsePriority(raw)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		filter.Priority = p
	}
	emails, unread, err := h.service.List(r.Context(), filter)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, EmailListResponse{Emails: emails, Total: len(emails), UnreadCount: unread})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	e, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, e)
}

func (h *Handler) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	e, err := h.service.MarkRead(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"message": "Email marked as read", "email_id": e.ID})
}

func (h *Handler) handleTemplates(w http.ResponseWriter, _ *http.Request) {
	out := make(map[string]TemplateInfo)
	for _, t := range notifier.Templates() {
		out[t.Name] = TemplateInfo{Subject: t.Subject(), Description: t.Description}
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"templates": out})
}

func (h *Handler) handleStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Statistics(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, StatisticsResponse{
		TotalEmails:  stats.Total,
		UnreadEmails: stats.Unread,
		Categories:   stats.Categories,
		Priorities:   stats.Priorities,
		Timestamp:    requestcontext.Now(r.Context()),
	})
}

func (h *Handler) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[EvaluateRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	eval := h.service.Evaluate(ctx, req.toInput())
	httputil.WriteJSON(w, http.StatusOK, toEvaluateResponse(eval))
}
