package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"payrecon/internal/decision"
	"payrecon/pkg/platform/httputil"
	"payrecon/pkg/requestcontext"
)

// Service defines the decision operations the handler needs.
type Service interface {
	Decide(ctx context.Context, txn decision.Transaction) *decision.Outcome
	DecideBatch(ctx context.Context, txns []decision.Transaction) []*decision.Outcome
	Lookup(ctx context.Context, transactionID string) (*decision.Record, error)
}

// Handler wires reconciliation endpoints to the decision service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a decision handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts decision endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/reconcile/decide", h.HandleDecide)
	r.Post("/reconcile/decide/batch", h.HandleDecideBatch)
	r.Get("/reconcile/decisions/{transaction_id}", h.HandleLookup)
}

// HandleDecide handles POST /reconcile/decide. Every well-formed transaction
// gets a 200 with a disposition, including error dispositions.
func (h *Handler) HandleDecide(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[DecideRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	outcome := h.service.Decide(ctx, req.Transaction(requestcontext.Now(ctx)))

	h.logger.InfoContext(ctx, "decide request served",
		"request_id", requestID,
		"transaction_id", outcome.TransactionID(),
		"action", outcome.Action(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, FromOutcome(outcome))
}

// HandleDecideBatch handles POST /reconcile/decide/batch.
func (h *Handler) HandleDecideBatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[DecideBatchRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	now := requestcontext.Now(ctx)
	txns := make([]decision.Transaction, len(req.Transactions))
	for i := range req.Transactions {
		txns[i] = req.Transactions[i].Transaction(now)
	}
	outcomes := h.service.DecideBatch(ctx, txns)

	h.logger.InfoContext(ctx, "batch decided",
		"request_id", requestID,
		"transactions", len(txns),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, FromOutcomes(outcomes))
}

// HandleLookup handles GET /reconcile/decisions/{transaction_id}.
func (h *Handler) HandleLookup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	transactionID := chi.URLParam(r, "transaction_id")

	record, err := h.service.Lookup(ctx, transactionID)
	if err != nil {
		h.logger.WarnContext(ctx, "decision lookup failed",
			"request_id", requestcontext.RequestID(ctx),
			"transaction_id", transactionID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromRecord(record))
}
