// Package metrics holds the Prometheus collectors shared by the gateway, the
// sales service and the inventory service. All of them are registered on the
// default registry and exposed through Handler.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "order_inventory"

var (
	GatewayRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "gateway",
		Name:      "requests_total",
		Help:      "Gateway requests by target service and outcome.",
	}, []string{"service", "outcome"})

	UpstreamDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "gateway",
		Name:      "upstream_duration_seconds",
		Help:      "Latency of forwarded upstream calls.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"service", "method"})

	OutboxPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "outbox",
		Name:      "published_total",
		Help:      "Outbox messages handed to a sink.",
	}, []string{"sink"})

	OutboxFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "outbox",
		Name:      "failures_total",
		Help:      "Outbox publish failures by sink.",
	}, []string{"sink"})

	ReconcilerDeliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "reconciler",
		Name:      "deliveries_total",
		Help:      "Order events consumed by outcome (acked, requeued, dead_lettered).",
	}, []string{"outcome"})

	ReconcilerSkippedItems = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "reconciler",
		Name:      "skipped_items_total",
		Help:      "Line items referencing a product that does not exist.",
	})
)

const (
	OutcomeForwarded    = "forwarded"
	OutcomeUnauthorized = "unauthorized"
	OutcomeForbidden    = "forbidden"
	OutcomeNotFound     = "not_found"
	OutcomeBadRequest   = "bad_request"
	OutcomeUpstreamErr  = "upstream_error"

	OutcomeAcked        = "acked"
	OutcomeRequeued     = "requeued"
	OutcomeDeadLettered = "dead_lettered"
)

func Handler() http.Handler {
	return promhttp.Handler()
}
