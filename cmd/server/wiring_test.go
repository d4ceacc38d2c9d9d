package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpapi "payrecon/internal/http"
	"payrecon/internal/platform/config"
)

func TestBuildInMemory(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	a, err := build(context.Background(), cfg, log)
	require.NoError(t, err)
	t.Cleanup(a.close)

	assert.Nil(t, a.pg)
	assert.Nil(t, a.redis)
	assert.Nil(t, a.consumer)

	router := httpapi.NewRouter(a.routerDeps(log))

	req := httptest.NewRequest(http.MethodPost, "/reconcile/decide", strings.NewReader(
		`{"transaction_id":"TXN-SRV-1","account_number":"ACC-456789123","amount":"5000.00","reference":"INV-2025-002"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"action":"review_and_process"`)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/email/api/emails", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "payment_mismatch")

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/reconcile/decisions/TXN-SRV-1", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
