package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// WebhookRequestsTotal counts Stripe webhook requests by event type and status.
	WebhookRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tomaai",
		Subsystem: "billing",
		Name:      "webhook_requests_total",
		Help:      "Total Stripe webhook requests by event type and HTTP status.",
	}, []string{"event_type", "status"})

	// WebhookDuration tracks Stripe webhook processing latency.
	WebhookDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "tomaai",
		Subsystem: "billing",
		Name:      "webhook_duration_seconds",
		Help:      "Stripe webhook processing duration in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"event_type"})

	// GenerationsTotal counts generation requests by outcome
	// (succeeded, fallback, denied, error).
	GenerationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tomaai",
		Subsystem: "images",
		Name:      "generations_total",
		Help:      "Image generation requests by outcome.",
	}, []string{"outcome"})

	GenerationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "tomaai",
		Subsystem: "images",
		Name:      "provider_duration_seconds",
		Help:      "Image provider call duration in seconds.",
		Buckets:   []float64{1, 2.5, 5, 10, 20, 30, 60, 120},
	})

	// EntitlementDenials counts denied entitlement checks by reason.
	EntitlementDenials = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tomaai",
		Subsystem: "entitlement",
		Name:      "denials_total",
		Help:      "Denied entitlement checks by reason.",
	}, []string{"reason"})

	ProcessedEventsPruned = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "tomaai",
		Subsystem: "billing",
		Name:      "processed_events_pruned_total",
		Help:      "Processed webhook event ids removed by the retention job.",
	})
)
