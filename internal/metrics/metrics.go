// Package metrics exposes Prometheus instrumentation for the relay and API.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// SessionsOnline tracks currently-online relay sessions.
	SessionsOnline = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "relay_sessions_online",
		Help: "Number of relay sessions currently online.",
	})

	// MessagesRelayed counts chat messages delivered to a recipient.
	MessagesRelayed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "relay_messages_relayed_total",
		Help: "Chat messages delivered to their resolved recipient.",
	})

	// MessagesDropped counts chat messages dropped because the recipient
	// was offline or unknown.
	MessagesDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "relay_messages_dropped_total",
		Help: "Chat messages dropped because no recipient was available.",
	})

	// AdminUnavailableReplies counts canned replies sent to customers when
	// no administrator was online.
	AdminUnavailableReplies = promauto.NewCounter(prometheus.CounterOpts{
		Name: "relay_admin_unavailable_replies_total",
		Help: "Canned replies sent to customers while no admin was online.",
	})
)

// Handler returns the HTTP handler serving the metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
