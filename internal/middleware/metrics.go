package middleware

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis command failures by command name.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "atheneum_redis_errors_total",
		Help: "Total number of Redis errors by command",
	}, []string{"command"})

	// ReviewTransitions counts review workflow transitions by action and outcome.
	ReviewTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "atheneum_review_transitions_total",
		Help: "Total review workflow transitions by action and outcome",
	}, []string{"action", "outcome"})

	// FeedbackDeliveries counts moderation feedback messages pushed to authors.
	FeedbackDeliveries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "atheneum_feedback_deliveries_total",
		Help: "Total moderation feedback notifications delivered over websocket",
	})

	// ActiveWebSockets is the gauge of open feedback websocket connections.
	ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "atheneum_websocket_connections",
		Help: "Number of active feedback websocket connections",
	})
)

// InitMetrics creates the Prometheus HTTP middleware for the given service name.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	return fiberprometheus.New(serviceName)
}

// MetricsMiddleware wraps the fiberprometheus middleware as a fiber.Handler.
func MetricsMiddleware(prom *fiberprometheus.FiberPrometheus) fiber.Handler {
	return prom.Middleware
}
