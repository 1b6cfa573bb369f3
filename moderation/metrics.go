package moderation

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomePassed  = "passed"
	outcomeFlagged = "flagged"
	outcomeSkipped = "skipped"
	outcomeError   = "error"
)

var (
	checksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hub",
			Subsystem: "automod",
			Name:      "checks_total",
			Help:      "Number of moderation checks by outcome",
		},
		[]string{"outcome"},
	)

	checkDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "hub",
			Subsystem: "automod",
			Name:      "check_duration_seconds",
			Help:      "Latency of moderation service calls",
			Buckets:   prometheus.DefBuckets,
		},
	)
)
