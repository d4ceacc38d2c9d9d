package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"payrecon/internal/notifier"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	svc, err := notifier.NewService(notifier.NewInMemoryOutbox())
	require.NoError(t, err)
	r := chi.NewRouter()
	New(svc, slog.New(slog.NewTextHandler(io.Discard, nil))).Register(r)
	return r
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(method, path, reader))
	return w
}

func TestEmailEndpoints(t *testing.T) {
	h := newTestRouter(t)

	var sent SendResponse
	t.Run("send template with single recipient string", func(t *testing.T) {
		w := do(t, h, http.MethodPost, "/send-template-email", `{
			"template": "unknown_customer",
			"to": "finance@company.com",
			"priority": "urgent",
			"data": {"transaction_id": "TXN-003", "account_number": "ACC-999888777", "amount": "5000.00",
			         "transaction_date": "2025-07-01", "description": "wire"}
		}`)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sent))
		assert.Equal(t, "unknown_customer", sent.Template)
		assert.Equal(t, []string{"finance@company.com"}, sent.Recipients)
	})

	t.Run("missing template data is 400", func(t *testing.T) {
		w := do(t, h, http.MethodPost, "/send-template-email", `{"template": "overpayment_alert", "data": {}}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown priority is 400", func(t *testing.T) {
		w := do(t, h, http.MethodPost, "/send-email", `{"priority": "whenever"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("send free-form to a list", func(t *testing.T) {
		w := do(t, h, http.MethodPost, "/send-email", `{"to": ["a@company.com", "b@company.com"], "body": "hi"}`)
		require.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("list filtered by category", func(t *testing.T) {
		w := do(t, h, http.MethodGet, "/emails?category=unknown_customer", "")
		require.Equal(t, http.StatusOK, w.Code)
		var resp EmailListResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 1, resp.Total)
		assert.Equal(t, 2, resp.UnreadCount)
	})

	t.Run("mark read then statistics", func(t *testing.T) {
		w := do(t, h, http.MethodPost, "/emails/"+sent.EmailID+"/mark-read", "")
		require.Equal(t, http.StatusOK, w.Code)

		w = do(t, h, http.MethodGet, "/statistics", "")
		require.Equal(t, http.StatusOK, w.Code)
		var stats StatisticsResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
		assert.Equal(t, 2, stats.TotalEmails)
		assert.Equal(t, 1, stats.UnreadEmails)
		assert.Equal(t, 1, stats.Priorities["urgent"])
	})

	t.Run("missing email is 404", func(t *testing.T) {
		w := do(t, h, http.MethodGet, "/emails/nope", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("templates", func(t *testing.T) {
		w := do(t, h, http.MethodGet, "/templates", "")
		require.Equal(t, http.StatusOK, w.Code)
		var resp struct {
			Templates map[string]TemplateInfo `json:"templates"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Len(t, resp.Templates, 5)
		assert.Equal(t, "Overpayment Alert - Customer {{.customer_name}}", resp.Templates["overpayment_alert"].Subject)
	})
}

func TestEvaluateEndpoint(t *testing.T) {
	h := newTestRouter(t)

	evaluate := func(t *testing.T, body string) EvaluateResponse {
		t.Helper()
		w := do(t, h, http.MethodPost, "/evaluate-notification", body)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var resp EvaluateResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		return resp
	}

	t.Run("empty customer object is an unknown customer", func(t *testing.T) {
		resp := evaluate(t, `{"transaction": {"account_number": "ACC-999888777", "amount": 5000}, "customer": {}}`)
		assert.True(t, resp.ShouldNotify)
		require.Len(t, resp.Notifications, 1)
		assert.Equal(t, RecommendationResponse{
			Template: "unknown_customer",
			Priority: "urgent",
			Reason:   "Payment from unknown customer account",
		}, resp.Notifications[0])
	})

	t.Run("validation result drives mismatch and overpayment alerts", func(t *testing.T) {
		resp := evaluate(t, `{
			"transaction": {"account_number": "ACC-789123456", "amount": "15000.00"},
			"customer": {"status": "active", "credit_limit": 50000},
			"validation_result": {"validation_status": "warning", "overpayment": true}
		}`)
		require.Len(t, resp.Notifications, 2)
		assert.Equal(t, "payment_mismatch", resp.Notifications[0].Template)
		assert.Equal(t, "overpayment_alert", resp.Notifications[1].Template)
	})

	t.Run("clean transaction", func(t *testing.T) {
		resp := evaluate(t, `{"transaction": {"amount": 100}, "customer": {"status": "active"}}`)
		assert.False(t, resp.ShouldNotify)
		assert.Empty(t, resp.Notifications)
	})

	t.Run("negative amount is 400", func(t *testing.T) {
		w := do(t, h, http.MethodPost, "/evaluate-notification", `{"transaction": {"amount": -1}}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
