package httpserver

import (
	"log/slog"
	"net/http"
	"time"
)

// writeSlack keeps the server write deadline past the per-request timeout so
// a timed-out handler can still write its error response.
const writeSlack = 5 * time.Second

// New builds an HTTP server whose connection errors go to logger.
func New(addr string, handler http.Handler, requestTimeout time.Duration, logger *slog.Logger) *http.Server {
	if requestTimeout <= 0 {
		requestTimeout = 30 * time.Second
	}
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      requestTimeout + writeSlack,
		IdleTimeout:       60 * time.Second,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
	}
}
