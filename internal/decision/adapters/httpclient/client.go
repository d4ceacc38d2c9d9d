// Package httpclient implements the decision ports against the REST APIs of
// the CRM, ERP and email services.
//
// Every call runs under the caller's context and a per-collaborator circuit
// breaker. Failures surface as sentinel errors:
//   - 404 becomes sentinel.ErrNotFound
//   - transport errors, 5xx responses and an open breaker become sentinel.ErrUnavailable
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"payrecon/pkg/platform/circuit"
	"payrecon/pkg/platform/sentinel"
	"payrecon/pkg/requestcontext"
)

const maxErrorBody = 4 << 10

// Client is a JSON client for one collaborator.
type Client struct {
	name    string
	baseURL string
	http    *http.Client
	breaker *circuit.Breaker
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.http = c
	}
}

// WithBreaker replaces the default breaker.
func WithBreaker(b *circuit.Breaker) Option {
	return func(cl *Client) {
		cl.breaker = b
	}
}

// WithLogger sets the logger used for breaker transitions.
func WithLogger(logger *slog.Logger) Option {
	return func(cl *Client) {
		cl.logger = logger
	}
}

// NewClient creates a client rooted at baseURL, e.g. "http://localhost:8080/crm/api".
func NewClient(name, baseURL string, opts ...Option) *Client {
	c := &Client{
		name:    name,
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
		breaker: circuit.New(name),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Breaker exposes the client's breaker for health reporting.
func (c *Client) Breaker() *circuit.Breaker {
	return c.breaker
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%s: encode request: %w", c.name, err)
	}
	return c.do(ctx, http.MethodPost, path, raw, out)
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, out any) error {
	if !c.breaker.Allow() {
		return fmt.Errorf("%s: circuit open: %w", c.name, sentinel.ErrUnavailable)
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", c.name, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if id := requestcontext.RequestID(ctx); id != "" {
		req.Header.Set("X-Request-ID", id)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.failure(ctx)
		return fmt.Errorf("%s: %w: %w", c.name, sentinel.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		c.success(ctx)
		return fmt.Errorf("%s %s: %w", c.name, path, sentinel.ErrNotFound)
	case resp.StatusCode >= http.StatusInternalServerError:
		c.failure(ctx)
		return fmt.Errorf("%s: status %d: %w", c.name, resp.StatusCode, sentinel.ErrUnavailable)
	case resp.StatusCode >= http.StatusBadRequest:
		c.success(ctx)
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("%s: status %d: %s", c.name, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			c.failure(ctx)
			return fmt.Errorf("%s: decode response: %w: %w", c.name, sentinel.ErrUnavailable, err)
		}
	}
	c.success(ctx)
	return nil
}

func (c *Client) failure(ctx context.Context) {
	if _, change := c.breaker.RecordFailure(); change.Opened {
		c.logger.WarnContext(ctx, "collaborator circuit opened", "collaborator", c.name)
	}
}

func (c *Client) success(ctx context.Context) {
	if _, change := c.breaker.RecordSuccess(); change.Closed {
		c.logger.InfoContext(ctx, "collaborator circuit closed", "collaborator", c.name)
	}
}

// IsNotFound reports whether err is a 404 from a collaborator.
func IsNotFound(err error) bool {
	return errors.Is(err, sentinel.ErrNotFound)
}
