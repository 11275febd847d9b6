package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// ConnectionsActive tracks live websocket connections.
	ConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ws_connections_active",
		Help: "Currently open websocket connections.",
	})

	// EventsTotal counts inbound client events by event name.
	EventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ws_events_total",
		Help: "Inbound websocket events by event name.",
	}, []string{"event"})

	// BroadcastsTotal counts frames fanned out to room members.
	BroadcastsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ws_broadcast_deliveries_total",
		Help: "Frames delivered to room members.",
	})

	// ExecTotal counts execution calls by outcome (ok, error, cached).
	ExecTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "exec_requests_total",
		Help: "Remote execution requests by outcome.",
	}, []string{"outcome"})
)

// Handler exposes Prometheus metrics at /metrics
func Handler() http.Handler {
	return promhttp.Handler()
}
