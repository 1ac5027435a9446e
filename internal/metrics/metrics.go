// Plexfilter - Plex Webhook Notification Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plexfilter

// Package metrics defines Prometheus metrics for Plexfilter.
// All metrics are registered on the default registry via promauto and
// exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// WebhooksReceived counts inbound Plex webhooks by event name and
	// processing outcome (processed, ignored, malformed, invalid_request).
	WebhooksReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plexfilter_webhooks_received_total",
			Help: "Total Plex webhooks received by event name and outcome",
		},
		[]string{"event", "outcome"},
	)

	// TMDBLookups counts metadata lookups by search kind (movie, tv) and
	// outcome (match, no_match, error, rejected).
	TMDBLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plexfilter_tmdb_lookups_total",
			Help: "Total TMDB search requests by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	// TMDBLookupDuration observes TMDB search latency in seconds.
	TMDBLookupDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "plexfilter_tmdb_lookup_duration_seconds",
			Help:    "TMDB search request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// DiscordDeliveries counts outbound Discord webhook deliveries by the
	// HTTP status code returned (or "error" for transport failures).
	DiscordDeliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plexfilter_discord_deliveries_total",
			Help: "Total Discord webhook deliveries by response status",
		},
		[]string{"status"},
	)

	// HTTPRequestDuration observes inbound request latency by route, method
	// and response status code.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "plexfilter_http_request_duration_seconds",
			Help:    "Inbound HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method", "status"},
	)

	// CircuitBreakerState tracks breaker state per breaker name
	// (0 = closed, 1 = half-open, 2 = open).
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "plexfilter_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	// CircuitBreakerTransitions counts state transitions per breaker.
	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plexfilter_circuit_breaker_transitions_total",
			Help: "Total circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// CircuitBreakerRequests counts requests through each breaker by result
	// (success, failure, rejected).
	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plexfilter_circuit_breaker_requests_total",
			Help: "Total requests through circuit breakers by result",
		},
		[]string{"name", "result"},
	)
)
