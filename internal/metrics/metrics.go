package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "thihashop_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "thihashop_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	TopUpApprovalsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "thihashop_topup_approvals_total",
			Help: "Total number of top-up approval attempts",
		},
		[]string{"status"},
	)

	PurchasesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "thihashop_purchases_total",
			Help: "Total number of purchase attempts",
		},
		[]string{"status"},
	)

	QueueRejectionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "thihashop_queue_rejections_total",
			Help: "Total number of tasks rejected by a full account queue",
		},
	)

	BalanceCacheHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "thihashop_balance_cache_hits_total",
			Help: "Total number of balance cache hits",
		},
	)

	BalanceCacheMissesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "thihashop_balance_cache_misses_total",
			Help: "Total number of balance cache misses",
		},
	)

	NotificationsQueuedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "thihashop_notifications_queued_total",
			Help: "Total number of admin notifications queued",
		},
		[]string{"status"},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordTopUpApproval(status string) {
	TopUpApprovalsTotal.WithLabelValues(status).Inc()
}

func RecordPurchase(status string) {
	PurchasesTotal.WithLabelValues(status).Inc()
}

func RecordQueueRejection() {
	QueueRejectionsTotal.Inc()
}

func RecordBalanceCacheHit() {
	BalanceCacheHitsTotal.Inc()
}

func RecordBalanceCacheMiss() {
	BalanceCacheMissesTotal.Inc()
}

func RecordNotification(status string) {
	NotificationsQueuedTotal.WithLabelValues(status).Inc()
}
