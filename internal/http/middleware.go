package httpx

import (
	"net/http"
	"time"

	"github.com/rs/cors"

	"github.com/bisu2000/CodeTwine-Real-time-code-editor/internal/app"
	"github.com/bisu2000/CodeTwine-Real-time-code-editor/pkg/ratelimit"
)

type Middleware struct {
	cors   *cors.Cors
	rlimit *ratelimit.Limiter
}

// NewMiddleware builds the shared middleware stack from config
func NewMiddleware(cfg app.Config) *Middleware {
	return &Middleware{
		cors: cors.New(cors.Options{
			AllowedOrigins: cfg.CORSAllow,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"*"},
		}),
		rlimit: ratelimit.New(120, time.Minute),
	}
}

// Wrap applies CORS + rate limiting to a handler. The websocket path is
// exempt from the rate limit: one long-lived connection per client, not
// one request per action.
func (m *Middleware) Wrap(h http.Handler) http.Handler {
	limited := m.rlimit.Middleware(h)
	return m.cors.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/ws" {
			h.ServeHTTP(w, r)
			return
		}
		limited.ServeHTTP(w, r)
	}))
}
