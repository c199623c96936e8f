package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests labeled by method, route and status",
		},
		[]string{"method", "route", "status"},
	)
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	storeRetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_retries_total",
			Help: "Retries of store operations after transient failures",
		},
		[]string{"operation"},
	)
	referralCodesIssued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "referral_codes_issued_total",
			Help: "Referral codes generated and persisted",
		},
	)
	newsletterChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsletter_changes_total",
			Help: "Newsletter subscription changes labeled by action",
		},
		[]string{"action"},
	)
)

// RecordRequest 记录一次 HTTP 请求
func RecordRequest(method, route string, status int, duration time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordStoreRetry 记录一次存储层重试
func RecordStoreRetry(operation string) {
	if operation == "" {
		operation = "unknown"
	}
	storeRetriesTotal.WithLabelValues(operation).Inc()
}

// RecordReferralCodeIssued 推荐码首次分配
func RecordReferralCodeIssued() {
	referralCodesIssued.Inc()
}

// RecordNewsletterChange action 为 subscribe / unsubscribe
func RecordNewsletterChange(action string) {
	newsletterChanges.WithLabelValues(action).Inc()
}
