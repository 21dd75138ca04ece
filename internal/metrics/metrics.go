// Package metrics declares the prometheus collectors for the billing engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	LimitDenials = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kumoney_limit_denials_total",
			Help: "Total number of mutations denied by subscription limits",
		},
		[]string{"kind"},
	)

	WebhookNotifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kumoney_webhook_notifications_total",
			Help: "Total number of payment notifications by outcome",
		},
		[]string{"status", "outcome"},
	)

	EntitlementGrantFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "kumoney_entitlement_grant_failures_total",
			Help: "Paid orders whose entitlement update failed and need manual reconciliation",
		},
	)

	SweeperEmails = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kumoney_sweeper_emails_total",
			Help: "Expiry notifications handled by the sweeper",
		},
		[]string{"pass", "outcome"},
	)

	GatewayRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kumoney_gateway_request_duration_seconds",
			Help:    "Duration of payment gateway requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "outcome"},
	)
)
