package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ParticipantsRegistered = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "conference_participants_registered_total",
		Help: "Participant accounts created.",
	})
	RegistrationsFinalized = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "conference_registrations_finalized_total",
		Help: "Registrations completed through the wizard.",
	})
	PasswordResetRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "conference_password_reset_requests_total",
		Help: "Password reset requests by outcome.",
	}, []string{"outcome"})
)

var registry = prometheus.NewRegistry()

func init() {
	registry.MustRegister(
		collectors.NewGoCollector(),
		ParticipantsRegistered,
		RegistrationsFinalized,
		PasswordResetRequests,
	)
}

// Handler exposes the registered metrics in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
