// Package httpapi composes the top-level router: the reconciliation API, the
// mock collaborator services under their own prefixes, health and metrics.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"payrecon/internal/platform/metrics"
	"payrecon/internal/platform/middleware"
	"payrecon/pkg/platform/httputil"
	"payrecon/pkg/platform/middleware/request"
	"payrecon/pkg/platform/middleware/requesttime"
)

// Mount prefixes of the mock collaborator services.
const (
	DirectoryPrefix = "/crm/api"
	LedgerPrefix    = "/erp/api"
	NotifierPrefix  = "/email/api"
)

const (
	defaultRequestTimeout = 30 * time.Second
	healthCheckTimeout    = 2 * time.Second
)

// Registrar mounts a handler's routes.
type Registrar interface {
	Register(r chi.Router)
}

// HealthCheck reports whether a dependency is reachable.
type HealthCheck func(ctx context.Context) error

// Deps carries everything the router mounts. Nil collaborator handlers are
// skipped, which is how a decision-only deployment runs.
type Deps struct {
	Logger         *slog.Logger
	Metrics        *metrics.Metrics
	Gatherer       prometheus.Gatherer
	Decision       Registrar
	Directory      Registrar
	Ledger         Registrar
	Notifier       Registrar
	HealthChecks   map[string]HealthCheck
	RequestTimeout time.Duration
}

// NewRouter wires all public endpoints.
func NewRouter(deps Deps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := deps.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	r := chi.NewRouter()
	r.Use(middleware.Recovery(logger))
	r.Use(request.RequestID)
	r.Use(requesttime.Middleware)
	r.Use(middleware.Logger(logger))
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Middleware)
	}

	r.Get("/health", healthHandler(deps.HealthChecks))
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Group(func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)
		r.Use(chimw.Timeout(timeout))
		if deps.Decision != nil {
			deps.Decision.Register(r)
		}
	})

	mount := func(prefix string, h Registrar) {
		if h == nil {
			return
		}
		r.Route(prefix, func(r chi.Router) {
			r.Use(middleware.ContentTypeJSON)
			r.Use(chimw.Timeout(timeout))
			h.Register(r)
		})
	}
	mount(DirectoryPrefix, deps.Directory)
	mount(LedgerPrefix, deps.Ledger)
	mount(NotifierPrefix, deps.Notifier)

	return r
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
	Time   time.Time         `json:"timestamp"`
}

func healthHandler(checks map[string]HealthCheck) http.HandlerFunc {
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	slices.Sort(names)

	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()

		resp := healthResponse{Status: "healthy", Time: time.Now().UTC()}
		status := http.StatusOK
		if len(names) > 0 {
			resp.Checks = make(map[string]string, len(names))
		}
		for _, name := range names {
			if err := checks[name](ctx); err != nil {
				resp.Checks[name] = err.Error()
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = "ok"
		}
		httputil.WriteJSON(w, status, resp)
	}
}
