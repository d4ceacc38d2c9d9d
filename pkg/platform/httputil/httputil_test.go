package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "payrecon/pkg/domain-errors"
)

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var body ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return body
}

func TestStatusFor(t *testing.T) {
	cases := map[dErrors.Code]int{
		dErrors.CodeBadRequest:         http.StatusBadRequest,
		dErrors.CodeValidation:         http.StatusBadRequest,
		dErrors.CodeNotFound:           http.StatusNotFound,
		dErrors.CodeConflict:           http.StatusConflict,
		dErrors.CodeInvariantViolation: http.StatusConflict,
		dErrors.CodeUnavailable:        http.StatusServiceUnavailable,
		dErrors.CodeTimeout:            http.StatusGatewayTimeout,
		dErrors.CodeInternal:           http.StatusInternalServerError,
		dErrors.Code("unmapped"):       http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, StatusFor(code), string(code))
	}
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantDesc   string
	}{
		{
			name:       "conflict carries its message",
			err:        dErrors.New(dErrors.CodeConflict, "payment amount exceeds outstanding balance of 500.00"),
			wantStatus: http.StatusConflict,
			wantCode:   "conflict",
			wantDesc:   "payment amount exceeds outstanding balance of 500.00",
		},
		{
			name:       "wrapped not found uses the outer code",
			err:        fmt.Errorf("lookup: %w", dErrors.New(dErrors.CodeNotFound, "invoice not found")),
			wantStatus: http.StatusNotFound,
			wantCode:   "not_found",
			wantDesc:   "invoice not found",
		},
		{
			name:       "internal error hides its description",
			err:        dErrors.Wrap(errors.New("pq: connection refused"), dErrors.CodeInternal, "failed to list invoices"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "internal_error",
		},
		{
			name:       "uncoded error is internal",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "internal_error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			WriteError(w, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			body := decodeError(t, w)
			assert.Equal(t, tt.wantCode, body.Error)
			assert.Equal(t, tt.wantDesc, body.ErrorDescription)
		})
	}
}

type paymentRequest struct {
	Account string      `json:"account_number"`
	Amount  json.Number `json:"amount"`
}

func (r *paymentRequest) Validate() error {
	r.Account = strings.TrimSpace(r.Account)
	if r.Account == "" {
		return dErrors.New(dErrors.CodeValidation, "account_number is required")
	}
	return nil
}

func TestDecodeAndPrepare(t *testing.T) {
	post := func(body string) (*httptest.ResponseRecorder, *paymentRequest, bool) {
		r := httptest.NewRequest(http.MethodPost, "/reconcile/decide", strings.NewReader(body))
		w := httptest.NewRecorder()
		req, ok := DecodeAndPrepare[paymentRequest](w, r, nil, r.Context(), "req-1")
		return w, req, ok
	}

	t.Run("numbers keep their exact text and validation normalises", func(t *testing.T) {
		_, req, ok := post(`{"account_number":"  ACC-001 ","amount":15000.10}`)
		require.True(t, ok)
		assert.Equal(t, "ACC-001", req.Account)
		assert.Equal(t, "15000.10", req.Amount.String())
	})

	tests := []struct {
		name     string
		body     string
		wantCode string
		wantDesc string
	}{
		{"empty body", "", "bad_request", "request body is required"},
		{"malformed json", `{"account_number":`, "bad_request", "invalid JSON body"},
		{"validation failure", `{"amount":"10"}`, "validation_error", "account_number is required"},
		{"oversize body", `{"account_number":"` + strings.Repeat("x", maxBodyBytes) + `"}`, "bad_request", "invalid JSON body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, req, ok := post(tt.body)
			require.False(t, ok)
			assert.Nil(t, req)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			body := decodeError(t, w)
			assert.Equal(t, tt.wantCode, body.Error)
			assert.Equal(t, tt.wantDesc, body.ErrorDescription)
		})
	}
}
