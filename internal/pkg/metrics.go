package pkg

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "barriored",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status.",
		},
		[]string{"route", "method", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "barriored",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	ModerationDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "barriored",
			Name:      "moderation_events_total",
			Help:      "Moderation events by kind and type.",
		},
		[]string{"kind", "event"},
	)

	OutboxDelivered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "barriored",
			Name:      "outbox_deliveries_total",
			Help:      "Outbox delivery attempts by result.",
		},
		[]string{"result"},
	)

	OTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "barriored",
			Name:      "otp_requests_total",
			Help:      "WhatsApp OTP operations by step and result.",
		},
		[]string{"step", "result"},
	)
)
