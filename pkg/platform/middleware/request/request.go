// Package request copies chi's request id into requestcontext so services
// can log it without importing chi.
package request

import (
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"

	"productverification/pkg/requestcontext"
)

// ContextRequestID must run after chimw.RequestID.
func ContextRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if reqID := chimw.GetReqID(ctx); reqID != "" {
			ctx = requestcontext.WithRequestID(ctx, reqID)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
