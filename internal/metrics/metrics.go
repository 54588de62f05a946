// Package metrics defines the Prometheus collectors exported at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Submission outcome labels
const (
	OutcomeCorrect       = "correct"
	OutcomeIncorrect     = "incorrect"
	OutcomeAlreadySolved = "already_solved"
)

var (
	// SubmissionsTotal counts flag submissions by outcome
	SubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ctf_submissions_total",
			Help: "Number of flag submissions by outcome",
		},
		[]string{"outcome"},
	)

	// LoginsTotal counts login attempts by kind and outcome
	LoginsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ctf_logins_total",
			Help: "Number of login attempts by kind (team, admin) and outcome (success, failure)",
		},
		[]string{"kind", "outcome"},
	)

	// RateLimitRejections counts requests rejected by a rate limiter
	RateLimitRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ctf_rate_limit_rejections_total",
			Help: "Number of requests rejected by rate limiting, by limiter",
		},
		[]string{"limiter"},
	)

	// HTTPRequestDuration observes request latency by method, path and status
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ctf_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// FeedClients tracks currently connected live feed clients
	FeedClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ctf_feed_clients",
			Help: "Number of connected solve feed WebSocket clients",
		},
	)
)
