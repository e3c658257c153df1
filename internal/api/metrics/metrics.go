// Package metrics defines and registers the custom Prometheus metrics of the
// resource API. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics are registered with the default registry on import through
// promauto; HTTP request metrics come from the echoprometheus middleware.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "resource_api"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// AuthAttemptsTotal counts register and login attempts.
// Labels:
//   - op: "register" or "login"
//   - result: "success", "invalid_input", "conflict", "invalid_credentials", "throttled" or "error"
var AuthAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Total number of register and login attempts, by outcome.",
	},
	[]string{"op", "result"},
)

// AuthGateRejectionsTotal counts requests refused by the authentication gate.
// Label:
//   - reason: "missing_credential", "invalid_credential" or "unknown_subject"
var AuthGateRejectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_gate_rejections_total",
		Help:      "Total number of requests rejected by the authentication gate.",
	},
	[]string{"reason"},
)

// ── Resource metrics ──────────────────────────────────────────────────────────

// OwnershipDenialsTotal counts mutations refused because the caller is
// neither the owner nor an admin.
var OwnershipDenialsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ownership_denials_total",
		Help:      "Total number of requests rejected by the ownership gate.",
	},
	[]string{"kind"},
)

// ResourceMutationsTotal counts successful creates, updates and deletes.
var ResourceMutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "resources_mutations_total",
		Help:      "Total number of successful resource mutations.",
	},
	[]string{"kind", "action"},
)

// ── Activity metrics ──────────────────────────────────────────────────────────

// ActivityQueueDepth tracks the events waiting in each dispatcher worker channel.
var ActivityQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "activity_events_queue_depth",
		Help:      "Current number of activity events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// ActivityEventsTotal counts activity events by outcome.
// Label:
//   - result: "recorded", "failed" or "dropped" (worker channel full)
var ActivityEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "activity_events_total",
		Help:      "Total number of activity events, by outcome.",
	},
	[]string{"result"},
)

// ActivityRecordDuration measures how long persisting one event takes.
var ActivityRecordDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "activity_events_record_duration_seconds",
		Help:      "Duration of activity event persistence from dequeue to store.",
		Buckets:   prometheus.DefBuckets,
	},
)
