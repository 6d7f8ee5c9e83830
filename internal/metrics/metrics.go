// Package metrics exposes the service's Prometheus collectors.
package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ReadingsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sensorwatch",
		Name:      "readings_total",
		Help:      "Feed readings accepted, by source.",
	}, []string{"source"})

	AlertsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sensorwatch",
		Name:      "alerts_total",
		Help:      "Alert ingestion outcomes.",
	}, []string{"outcome"})

	LoginsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sensorwatch",
		Name:      "logins_total",
		Help:      "Sign-in attempts by result.",
	}, []string{"result"})

	GuardDecisionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sensorwatch",
		Name:      "guard_decisions_total",
		Help:      "Page guard decisions.",
	}, []string{"decision"})
)

const (
	OutcomeCreated      = "created"
	OutcomeDeduplicated = "deduplicated"
	OutcomeFailed       = "failed"
)

// Handler serves the default registry in the Prometheus text format.
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
