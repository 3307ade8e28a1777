package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	BotUpdatesHandled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_updates_handled_total",
			Help: "Bot updates handled, by conversation state and outcome",
		},
		[]string{"state", "outcome"},
	)

	BotPollErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bot_poll_errors_total",
			Help: "Failed getUpdates calls",
		},
	)

	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "domain_events_published_total",
			Help: "Domain events published, by routing key and status",
		},
		[]string{"routing_key", "status"},
	)

	GoalsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "goals_created_total",
			Help: "Goals created, by source",
		},
		[]string{"source"}, // source: api, bot
	)
)

func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

func IncrementBotUpdate(state, outcome string) {
	BotUpdatesHandled.WithLabelValues(state, outcome).Inc()
}

func IncrementEventPublished(routingKey, status string) {
	EventsPublished.WithLabelValues(routingKey, status).Inc()
}

func IncrementGoalsCreated(source string) {
	GoalsCreated.WithLabelValues(source).Inc()
}
