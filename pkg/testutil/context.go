package testutil

import (
	"net/http"
	"time"

	"productverification/pkg/requestcontext"
)

// WithRequestID adds a request ID to the request context, as the request
// middleware chain would.
func WithRequestID(req *http.Request, requestID string) *http.Request {
	return req.WithContext(requestcontext.WithRequestID(req.Context(), requestID))
}

// WithRequestTime pins the request-scoped clock so handlers and use cases
// produce deterministic timestamps.
func WithRequestTime(req *http.Request, now time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), now))
}
