package main

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"productverification/internal/platform/config"
	"productverification/internal/product/handler"
	"productverification/pkg/platform/httputil"
	"productverification/pkg/platform/middleware/request"
	"productverification/pkg/platform/middleware/requesttime"
)

const healthCheckTimeout = 2 * time.Second

type healthResponse struct {
	Status   string            `json:"status"`
	Backends map[string]string `json:"backends,omitempty"`
}

func newRouter(a *app, cfg config.Server, log *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(request.ContextRequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(cfg.RequestTimeout))
	r.Use(requesttime.Middleware)

	handler.New(a.products, log).Register(r)

	r.Get("/healthz", a.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))
	return r
}

func (a *app) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	resp := healthResponse{Status: "ok", Backends: map[string]string{}}
	for name, check := range a.checks {
		if err := check(ctx); err != nil {
			resp.Status = "degraded"
			resp.Backends[name] = err.Error()
			continue
		}
		resp.Backends[name] = "ok"
	}
	status := http.StatusOK
	if resp.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	httputil.WriteJSON(w, status, resp)
}
