package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"payrecon/internal/directory"
	dErrors "payrecon/pkg/domain-errors"
	"payrecon/pkg/platform/httputil"
	"payrecon/pkg/requestcontext"
)

// Service defines the directory operations the handler needs.
type Service interface {
	List(ctx context.Context, filter directory.Filter) ([]*directory.Customer, error)
	Get(ctx context.Context, id string) (*directory.Customer, error)
	GetByAccountNumber(ctx context.Context, accountNumber string) (*directory.Customer, error)
	CreditCheck(ctx context.Context, id string, amount decimal.Decimal) (*directory.CreditCheckResult, error)
	UpdateBalance(ctx context.Context, id string, update directory.BalanceUpdate) (*directory.Transaction, *directory.Customer, error)
	Transactions(ctx context.Context, customerID string) ([]*directory.Transaction, error)
}

// Handler exposes the mock CRM over HTTP.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a directory handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the CRM endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/health", h.handleHealth)
	r.Get("/customers", h.handleList)
	r.Get("/customers/by-account/{account}", h.handleByAccount)
	r.Get("/customers/{id}", h.handleGet)
	r.Get("/customers/{id}/credit-check", h.handleCreditCheck)
	r.Post("/customers/{id}/update-balance", h.handleUpdateBalance)
	r.Get("/transactions", h.handleTransactions)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"service":   "CRM System",
		"timestamp": requestcontext.Now(r.Context()),
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	filter := directory.Filter{Search: r.URL.Query().Get("search")}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status, err := directory.ParseStatus(raw)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		filter.Status = status
	}

	customers, err := h.service.List(ctx, filter)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list customers", "request_id", requestcontext.RequestID(ctx), "error", err)
		httputil.WriteError(w, err)
		return
	}
	resp := CustomerListResponse{
		Customers: make([]CustomerResponse, 0, len(customers)),
		Total:     len(customers),
		Timestamp: requestcontext.Now(ctx),
	}
	for _, c := range customers {
		resp.Customers = append(resp.Customers, toCustomerResponse(c))
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	customer, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toCustomerResponse(customer))
}

func (h *Handler) handleByAccount(w http.ResponseWriter, r *http.Request) {
	customer, err := h.service.GetByAccountNumber(r.Context(), chi.URLParam(r, "account"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toCustomerResponse(customer))
}

func (h *Handler) handleCreditCheck(w http.ResponseWriter, r *http.Request) {
	amount := decimal.Zero
	if raw := r.URL.Query().Get("amount"); raw != "" {
		parsed, err := decimal.NewFromString(raw)
		if err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "amount must be a number"))
			return
		}
		amount = parsed
	}

	result, err := h.service.CreditCheck(r.Context(), chi.URLParam(r, "id"), amount)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, CreditCheckResponse{
		CustomerID:      result.CustomerID,
		CreditLimit:     result.CreditLimit,
		CurrentBalance:  result.CurrentBalance,
		AvailableCredit: result.AvailableCredit,
		RequestedAmount: result.RequestedAmount,
		Approved:        result.Approved,
		Status:          string(result.Status),
	})
}

func (h *Handler) handleUpdateBalance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[UpdateBalanceRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	update := req.toUpdate()

	txn, customer, err := h.service.UpdateBalance(ctx, chi.URLParam(r, "id"), update)
	if err != nil {
		h.logger.WarnContext(ctx, "balance update rejected",
			"request_id", requestID,
			"customer_id", chi.URLParam(r, "id"),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "balance update applied",
		"request_id", requestID,
		"customer_id", customer.ID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, UpdateBalanceResponse{
		Transaction:   toTransactionResponse(txn),
		Customer:      toCustomerResponse(customer),
		BalanceChange: update.Delta(),
	})
}

func (h *Handler) handleTransactions(w http.ResponseWriter, r *http.Request) {
	txns, err := h.service.Transactions(r.Context(), r.URL.Query().Get("customer_id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	resp := make([]TransactionResponse, 0, len(txns))
	for _, t := range txns {
		resp = append(resp, toTransactionResponse(t))
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"transactions": resp})
}
