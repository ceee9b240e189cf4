package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Request outcomes recorded by the client.
const (
	outcomeOK          = "ok"
	outcomeRateLimited = "rate_limited"
	outcomeTransport   = "transport"
	outcomeHTTPStatus  = "http_status"
	outcomeDecode      = "decode"
)

var (
	metricRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tripdesk",
		Subsystem: "api",
		Name:      "requests_total",
		Help:      "Backend requests by endpoint and outcome.",
	}, []string{"endpoint", "outcome"})

	metricBusinessFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tripdesk",
		Subsystem: "api",
		Name:      "business_failures_total",
		Help:      "Well-formed backend replies carrying status \"error\".",
	}, []string{"endpoint"})

	metricLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "tripdesk",
		Subsystem: "api",
		Name:      "request_duration_seconds",
		Help:      "Backend request latency.",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
	}, []string{"endpoint"})
)
