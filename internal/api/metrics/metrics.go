// Package metrics defines and registers all custom Prometheus metrics for the
// chat service. It is the single source of truth for metric names, labels,
// and help strings.
//
// All metrics use promauto so they register with the default registry at
// package init, before the HTTP server starts.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "chat"

// ── Session metrics ───────────────────────────────────────────────────────────

// LoginsTotal counts login attempts by outcome.
// Label:
//   - result: "success", "invalid_credentials"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// TokenFailuresTotal counts session cookies that did not yield a principal.
// Label:
//   - reason: "malformed", "authentication", "expired", "unknown_subject"
var TokenFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_failures_total",
		Help:      "Total number of session tokens rejected during resolution, by reason.",
	},
	[]string{"reason"},
)

// ── Authorization metrics ─────────────────────────────────────────────────────

// AuthzDenialsTotal counts denied operations.
// Labels:
//   - operation: the attempted operation (e.g. "delete_chat", "edit_message")
//   - reason: why it was denied (e.g. "not_a_member", "insufficient_role")
var AuthzDenialsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "authz_denials_total",
		Help:      "Total number of operations denied by the role matrix.",
	},
	[]string{"operation", "reason"},
)

// ── Message metrics ───────────────────────────────────────────────────────────

// MessagesPostedTotal counts successfully persisted messages.
var MessagesPostedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "messages_posted_total",
		Help:      "Total number of messages persisted.",
	},
)

// MessagesDedupTotal counts idempotency decisions for client message IDs.
// Label:
//   - result: "hit" (replay, no insert) or "miss" (new message)
var MessagesDedupTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "messages_dedup_total",
		Help:      "Total number of client message ID checks, labelled by result (hit/miss).",
	},
	[]string{"result"},
)

// ── Activity pipeline metrics ─────────────────────────────────────────────────

// ActivityQueueDepth tracks events waiting in each dispatcher worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var ActivityQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "activity_queue_depth",
		Help:      "Current number of activity events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// ActivityProcessingDuration measures how long one activity event takes from
// dequeue to persistence.
// Label:
//   - result: "ok" or "error"
var ActivityProcessingDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "activity_processing_duration_seconds",
		Help:      "Duration of activity event processing from dequeue to persistence.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"result"},
)
