package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "smartrent_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "smartrent_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "smartrent_rental_request_transitions_total",
		Help: "Count of rental request lifecycle transitions",
	}, []string{"transition"})

	commissionsRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "smartrent_commissions_recorded_total",
		Help: "Count of commissions recorded",
	})

	commissionAmount = promauto.NewCounter(prometheus.CounterOpts{
		Name: "smartrent_commission_amount_total",
		Help: "Sum of recorded commission amounts in the smallest currency unit",
	})

	platformFee = promauto.NewCounter(prometheus.CounterOpts{
		Name: "smartrent_platform_fee_total",
		Help: "Sum of recorded platform fees in the smallest currency unit",
	})
)

// ObserveHTTPRequest records an HTTP request metric
func ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// ObserveRequestTransition counts a rental request lifecycle transition
// (created, connected, completed).
func ObserveRequestTransition(transition string) {
	requestTransitions.WithLabelValues(transition).Inc()
}

// ObserveCommissionRecorded counts a recorded commission and accumulates the
// amount and platform fee.
func ObserveCommissionRecorded(amount, fee int64) {
	commissionsRecorded.Inc()
	commissionAmount.Add(float64(amount))
	platformFee.Add(float64(fee))
}
