package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	ConnectionsAccepted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "square_connections_accepted_total",
			Help: "Total number of client connections accepted by the listener",
		},
		[]string{"mode"},
	)

	ActiveHandlers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "square_active_handlers",
			Help: "Number of connection handlers currently running",
		},
	)

	HandlerFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "square_handler_failures_total",
			Help: "Connection handlers that ended with an I/O failure or panic",
		},
		[]string{"reason"},
	)

	// Replies is labeled by outcome: "ok" or "err".
	Replies = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "square_replies_total",
			Help: "Replies written to clients, by outcome",
		},
		[]string{"outcome"},
	)
)

var registerOnce sync.Once

// Register adds the square collectors to the default registry. Safe to call
// more than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(ConnectionsAccepted, ActiveHandlers, HandlerFailures, Replies)
	})
}
