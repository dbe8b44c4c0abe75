// Package metrics holds the Prometheus collectors exported by the discussion
// service on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTPRequestDuration records request latency by method, chi route pattern and status.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "discussion_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	// LikeToggles counts ledger toggles by target kind and outcome (liked/unliked).
	LikeToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "discussion_like_toggles_total",
		Help: "Total number of like toggles",
	}, []string{"kind", "outcome"})

	// NodesCreated counts created posts, comments and replies.
	NodesCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "discussion_nodes_created_total",
		Help: "Total number of content nodes created",
	}, []string{"kind"})

	// EventsDropped counts events the publisher could not deliver.
	EventsDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "discussion_events_dropped_total",
		Help: "Total number of domain events that were not published",
	}, []string{"subject", "reason"})
)

// ObserveToggle records one toggle outcome.
func ObserveToggle(kind string, liked bool) {
	outcome := "unliked"
	if liked {
		outcome = "liked"
	}
	LikeToggles.WithLabelValues(kind, outcome).Inc()
}

func Handler() http.Handler {
	return promhttp.Handler()
}

// RedisErrors counts failed Redis commands; redis.Nil is not a failure.
var RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "discussion_redis_errors_total",
	Help: "Total number of failed Redis commands",
}, []string{"command"})
