package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// EventsEmitted counts governance events published by the emitter
	EventsEmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "governance_events_emitted_total",
			Help: "Total number of governance events published",
		},
		[]string{"dao", "event_type"},
	)

	// EventsApplied counts events applied by the aggregation engine
	EventsApplied = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "governance_events_applied_total",
			Help: "Total number of governance events applied to aggregates",
		},
		[]string{"dao", "event_type"},
	)

	// EventsSkipped counts events already recorded, typically redeliveries
	EventsSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "governance_events_skipped_total",
			Help: "Total number of governance events skipped as already applied",
		},
		[]string{"dao", "event_type"},
	)

	// ApplyErrors counts events that failed to apply
	ApplyErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "governance_apply_errors_total",
			Help: "Total number of governance events that failed to apply",
		},
		[]string{"dao", "event_type"},
	)

	// ApplyDuration tracks event application time
	ApplyDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "governance_apply_duration_seconds",
			Help:    "Event application duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"dao"},
	)

	// LastBlock tracks the last block handled per DAO and stage
	LastBlock = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "governance_last_block",
			Help: "Last block number handled",
		},
		[]string{"dao", "stage"},
	)

	// HTTPRequests counts API requests by route and status
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "governance_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"route", "status"},
	)
)

const (
	StageEmitter    = "emitter"
	StageAggregator = "aggregator"
)
