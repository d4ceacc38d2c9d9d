package testutil

import (
	"net/http"
	"time"

	"payrecon/pkg/requestcontext"
)

// WithRequestID sets the correlation ID the request middleware would assign.
func WithRequestID(req *http.Request, requestID string) *http.Request {
	return req.WithContext(requestcontext.WithRequestID(req.Context(), requestID))
}

// WithRequestTime pins "now" for the request, as the request-time middleware
// would, so decided_at and payment timestamps are deterministic.
func WithRequestTime(req *http.Request, at time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), at))
}
