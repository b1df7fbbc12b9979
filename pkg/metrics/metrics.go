package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	eventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_events_total",
			Help: "Total number of inbound bot events",
		},
		[]string{"kind", "outcome"},
	)

	backendCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_backend_calls_total",
			Help: "Total number of gift-certificate API calls",
		},
		[]string{"op", "status"},
	)

	certificatesCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bot_certificates_created_total",
			Help: "Total number of certificates created through the bot",
		},
	)
)

// Event records one processed inbound event. Outcome is "ok", "denied",
// "error" or "panic".
func Event(kind, outcome string) {
	eventsTotal.WithLabelValues(kind, outcome).Inc()
}

// BackendCall records one round trip to the gift-certificate API
func BackendCall(op, status string) {
	backendCallsTotal.WithLabelValues(op, status).Inc()
}

// CertificateCreated records one successful creation
func CertificateCreated() {
	certificatesCreatedTotal.Inc()
}
