package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dechandler "payrecon/internal/decision/handler"
	dirhandler "payrecon/internal/directory/handler"
	ledgerhandler "payrecon/internal/ledger/handler"
	notifierhandler "payrecon/internal/notifier/handler"
	"payrecon/internal/platform/metrics"
	"payrecon/internal/sandbox"
	"payrecon/pkg/platform/middleware/request"
)

func newTestRouter(t *testing.T, checks map[string]HealthCheck) (http.Handler, *prometheus.Registry) {
	t.Helper()
	world, err := sandbox.New(context.Background())
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := prometheus.NewRegistry()
	return NewRouter(Deps{
		Logger:       logger,
		Metrics:      metrics.NewWithRegisterer(reg),
		Gatherer:     reg,
		Decision:     dechandler.New(world.Engine, logger),
		Directory:    dirhandler.New(world.Directory, logger),
		Ledger:       ledgerhandler.New(world.Ledger, logger),
		Notifier:     notifierhandler.New(world.Notifier, logger),
		HealthChecks: checks,
	}), reg
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestRouterMountsServices(t *testing.T) {
	h, _ := newTestRouter(t, nil)

	tests := []struct {
		name string
		path string
	}{
		{"crm customer", "/crm/api/customers/cust_001"},
		{"erp invoice", "/erp/api/invoices/INV-2025-001"},
		{"email templates", "/email/api/templates"},
		{"crm health", "/crm/api/health"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, http.MethodGet, tt.path, "")
			assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
			assert.NotEmpty(t, w.Header().Get(request.HeaderRequestID))
		})
	}

	w := do(t, h, http.MethodGet, "/nowhere", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouterDecideAndMetrics(t *testing.T) {
	h, reg := newTestRouter(t, nil)

	w := do(t, h, http.MethodPost, "/reconcile/decide", `{
		"transaction_id": "TXN-R-1",
		"account_number": "ACC-789123456",
		"amount": "12500.00",
		"reference": "INV-2025-001"
	}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `payrecon_http_requests_total{method="POST",route="/reconcile/decide",status="200"} 1`)

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestRouterRejectsNonJSONBody(t *testing.T) {
	h, _ := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/reconcile/decide", strings.NewReader("amount=1"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
}

func TestHealth(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		h, _ := newTestRouter(t, map[string]HealthCheck{
			"postgres": func(context.Context) error { return nil },
		})
		w := do(t, h, http.MethodGet, "/health", "")
		require.Equal(t, http.StatusOK, w.Code)

		var resp healthResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "healthy", resp.Status)
		assert.Equal(t, "ok", resp.Checks["postgres"])
	})

	t.Run("degraded", func(t *testing.T) {
		h, _ := newTestRouter(t, map[string]HealthCheck{
			"postgres": func(context.Context) error { return nil },
			"redis":    func(context.Context) error { return errors.New("connection refused") },
		})
		w := do(t, h, http.MethodGet, "/health", "")
		require.Equal(t, http.StatusServiceUnavailable, w.Code)

		var resp healthResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "degraded", resp.Status)
		assert.Equal(t, "connection refused", resp.Checks["redis"])
	})
}
