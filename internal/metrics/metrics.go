package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ReceiptsIssued The total number of rendered receipts (counter)
	ReceiptsIssued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "receipts",
			Name:      "issued_total",
			Help:      "The total number of rendered receipts",
		},
		[]string{"variant"},
	)

	// ReceiptsFailed The total number of requests that produced no receipt (counter)
	ReceiptsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "receipts",
			Name:      "failed_total",
			Help:      "The total number of requests that produced no receipt",
		},
		[]string{"variant", "reason"},
	)

	// EmailsDispatched Email delivery outcomes by result: sent, failed, unconfigured (counter)
	EmailsDispatched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "emails",
			Name:      "dispatched_total",
			Help:      "Email delivery outcomes",
		},
		[]string{"variant", "result"},
	)

	// EmailDuration Time spent in a single delivery attempt (histogram)
	EmailDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "emails",
			Name:      "dispatch_duration_seconds",
			Help:      "Time spent in a single delivery attempt",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"variant"},
	)
)
