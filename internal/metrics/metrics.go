package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cardioalert_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cardioalert_http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	OrdersCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cardioalert_orders_created_total",
			Help: "Payment orders created, by processor mode.",
		},
		[]string{"mode"},
	)

	PaymentVerifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cardioalert_payment_verifications_total",
			Help: "Payment verification attempts, by result.",
		},
		[]string{"result"},
	)

	Dispatches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cardioalert_dispatches_total",
			Help: "Dispatch attempts, by result.",
		},
		[]string{"result"},
	)

	Notifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cardioalert_notifications_total",
			Help: "Per-hospital notification sends, by outcome.",
		},
		[]string{"outcome"},
	)

	DispatchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cardioalert_dispatch_duration_seconds",
			Help:    "Time spent fanning out one alert.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	StaleClaimsReleased = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cardioalert_stale_dispatch_claims_released_total",
			Help: "Dispatch claims released by the reaper.",
		},
	)

	StaleDispatchesFinalized = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cardioalert_stale_dispatches_finalized_total",
			Help: "Alerts moved to sent by the reaper after their fan-out had started.",
		},
	)
)

// Handler serves the default registry
func Handler() http.Handler {
	return promhttp.Handler()
}
