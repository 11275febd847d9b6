package httpx

import (
	"log/slog"
	"net/http"

	"github.com/bisu2000/CodeTwine-Real-time-code-editor/internal/app"
	"github.com/bisu2000/CodeTwine-Real-time-code-editor/internal/ws"
	"github.com/bisu2000/CodeTwine-Real-time-code-editor/pkg/metrics"
)

// NewRouter wires up all HTTP routes, middleware, and handlers
func NewRouter(cfg app.Config, logger *slog.Logger, hub *ws.Hub) http.Handler {
	mw := NewMiddleware(cfg)

	mux := http.NewServeMux()

	// Health / readiness / metrics
	mux.Handle("/healthz", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(200) }))
	mux.Handle("/readyz", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(200) }))
	mux.Handle("/metrics", metrics.Handler())

	// WebSocket endpoint
	mux.Handle("/ws", http.HandlerFunc(hub.ServeWS))

	// Everything else is the frontend bundle, with SPA fallback
	mux.Handle("/", NewSPA(cfg.StaticDir, logger))

	return mw.Wrap(mux) // CORS + rate limit applied globally
}
