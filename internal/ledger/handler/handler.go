package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"payrecon/internal/ledger"
	"payrecon/pkg/platform/httputil"
	"payrecon/pkg/requestcontext"
)

// Service defines the ledger operations the handler needs.
type Service interface {
	ListInvoices(ctx context.Context, filter ledger.InvoiceFilter) ([]*ledger.Invoice, error)
	GetInvoice(ctx context.Context, id string) (*ledger.Invoice, error)
	InvoicesByAccount(ctx context.Context, account string) ([]*ledger.Invoice, error)
	Outstanding(ctx context.Context, account string) ([]*ledger.Invoice, error)
	RecordPayment(ctx context.Context, invoiceID string, req ledger.PaymentRequest) (*ledger.PaymentReceipt, error)
	Payments(ctx context.Context, invoiceID string) ([]*ledger.Payment, error)
	ValidateTransaction(ctx context.Context, check ledger.TransactionCheck) (*ledger.TransactionValidation, error)
	CashFlow(ctx context.Context) (*ledger.CashFlowAnalysis, error)
}

// Handler exposes the mock ERP over HTTP.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a ledger handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the ERP endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/health", h.handleHealth)
	r.Get("/invoices", h.handleList)
	r.Get("/invoices/by-account/{account}", h.handleByAccount)
	r.Get("/invoices/by-account/{account}/outstanding", h.handleOutstanding)
	r.Get("/invoices/{id}", h.handleGet)
	r.Post("/invoices/{id}/payment", h.handleRecordPayment)
	r.Get("/payments", h.handlePayments)
	r.Get("/cash-flow/analysis", h.handleCashFlow)
	r.Post("/financial/validate-transaction", h.handleValidateTransaction)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"service":   "ERP System",
		"timestamp": requestcontext.Now(r.Context()),
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	filter := ledger.InvoiceFilter{CustomerAccount: r.URL.Query().Get("customer_account")}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status, err := ledger.ParseStatus(raw)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		filter.Status = status
	}

	invoices, err := h.service.ListInvoices(ctx, filter)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list invoices", "request_id", requestcontext.RequestID(ctx), "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, InvoiceListResponse{
		Invoices:  toInvoiceResponses(invoices),
		Total:     len(invoices),
		Timestamp: requestcontext.Now(ctx),
	})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	inv, err := h.service.GetInvoice(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toInvoiceResponse(inv))
}

func (h *Handler) handleByAccount(w http.ResponseWriter, r *http.Request) {
	account := chi.URLParam(r, "account")
	invoices, err := h.service.InvoicesByAccount(r.Context(), account)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, accountResponse(account, invoices))
}

func (h *Handler) handleOutstanding(w http.ResponseWriter, r *http.Request) {
	account := chi.URLParam(r, "account")
	invoices, err := h.service.Outstanding(r.Context(), account)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, accountResponse(account, invoices))
}

func (h *Handler) handleRecordPayment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	invoiceID := chi.URLParam(r, "id")

	req, ok := httputil.DecodeAndPrepare[RecordPaymentRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	receipt, err := h.service.RecordPayment(ctx, invoiceID, req.toPaymentRequest())
	if err != nil {
		h.logger.WarnContext(ctx, "payment rejected",
			"request_id", requestID,
			"invoice_id", invoiceID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, RecordPaymentResponse{
		Payment:          toPaymentResponse(receipt.Payment),
		Invoice:          toInvoiceResponse(receipt.Invoice),
		Message:          "Payment recorded successfully",
		RemainingBalance: receipt.RemainingBalance,
	})
}

func (h *Handler) handlePayments(w http.ResponseWriter, r *http.Request) {
	payments, err := h.service.Payments(r.Context(), r.URL.Query().Get("invoice_id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	resp := make([]PaymentResponse, 0, len(payments))
	for _, p := range payments {
		resp = append(resp, toPaymentResponse(p))
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"payments": resp})
}

func (h *Handler) handleCashFlow(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	analysis, err := h.service.CashFlow(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "cash flow analysis failed", "request_id", requestcontext.RequestID(ctx), "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toCashFlowResponse(analysis))
}

func (h *Handler) handleValidateTransaction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[ValidateTransactionRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	result, err := h.service.ValidateTransaction(ctx, req.toCheck())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toValidationResponse(result))
}

func accountResponse(account string, invoices []*ledger.Invoice) AccountInvoicesResponse {
	total := decimal.Zero
	for _, inv := range invoices {
		total = total.Add(inv.Outstanding())
	}
	return AccountInvoicesResponse{
		Invoices:         toInvoiceResponses(invoices),
		Total:            len(invoices),
		AccountNumber:    account,
		TotalOutstanding: total,
	}
}
