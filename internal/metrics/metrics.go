// Package metrics exposes Prometheus collectors for the universe server.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry wraps every Prometheus collector the server updates.
type Registry struct {
	ActiveConnections   prometheus.Gauge
	HandshakeFailures   prometheus.Counter
	DispatchedOpcodes   *prometheus.CounterVec
	TabUpdatesSent      prometheus.Counter
	StoreErrors         prometheus.Counter
	ConnectionsRejected prometheus.Counter
}

// NewRegistry creates every collector and registers it against reg. Pass
// prometheus.DefaultRegisterer in production; tests pass a fresh
// prometheus.NewRegistry() so repeated calls don't collide.
func NewRegistry(reg prometheus.Registerer) *Registry {
	factory := promauto.With(reg)
	return &Registry{
		ActiveConnections: factory.NewGauge(prometheus.GaugeOpts{
			Name: "universe_connections_active",
			Help: "Number of currently registered connections.",
		}),
		HandshakeFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "universe_handshake_failures_total",
			Help: "Total number of connections that failed the RSA/RC4 handshake.",
		}),
		DispatchedOpcodes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "universe_dispatched_opcodes_total",
			Help: "Total number of packets dispatched, labeled by opcode.",
		}, []string{"opcode"}),
		TabUpdatesSent: factory.NewCounter(prometheus.CounterOpts{
			Name: "universe_tab_updates_sent_total",
			Help: "Total number of user/world tab delta packets sent to connections.",
		}),
		StoreErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "universe_store_errors_total",
			Help: "Total number of store operations that returned an error other than ErrNotFound.",
		}),
		ConnectionsRejected: factory.NewCounter(prometheus.CounterOpts{
			Name: "universe_connections_rejected_total",
			Help: "Total number of TCP accepts rejected by the per-IP rate limiter or connection cap.",
		}),
	}
}

// ObserveOpcode increments the dispatched-opcode counter for opcode.
func (r *Registry) ObserveOpcode(opcode uint16) {
	r.DispatchedOpcodes.WithLabelValues(strconv.Itoa(int(opcode))).Inc()
}

// Handler returns an HTTP handler exposing the metrics in the
// Prometheus text exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.Handler()
}
