// Package metrics defines all custom Prometheus metrics for the credits
// service. It is the single source of truth for metric names, labels, and
// help strings. Metrics are registered with the default registry via
// promauto at package init.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "credits"

// ── Unlock metrics ────────────────────────────────────────────────────────────

// UnlocksTotal counts unlock attempts by outcome.
// Label:
//   - result: "granted", "already_unlocked", "insufficient_balance", "forbidden"
var UnlocksTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "unlocks_total",
		Help:      "Total number of contact unlock attempts, by outcome.",
	},
	[]string{"result"},
)

// UnlockDuration measures how long a spend-and-unlock attempt takes
// end-to-end, including the store transaction.
var UnlockDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "unlock_duration_seconds",
		Help:      "Duration of unlock attempts from request to persistence.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"result"},
)

// ── Payment intake metrics ────────────────────────────────────────────────────

// PaymentsProcessedTotal counts payment notifications that produced a ledger
// entry.
// Label:
//   - kind: "confirmed" or "refunded"
var PaymentsProcessedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "payments_processed_total",
		Help:      "Total number of payment notifications successfully applied to the ledger.",
	},
	[]string{"kind"},
)

// PaymentsDuplicateTotal counts replayed payment references that were
// absorbed without a ledger write.
var PaymentsDuplicateTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "payments_duplicate_total",
		Help:      "Total number of duplicate payment notifications absorbed.",
	},
)

// IntakeErrorsTotal counts payment notifications that failed processing.
// Label:
//   - kind: "confirmed" or "refunded"
var IntakeErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "intake_errors_total",
		Help:      "Total number of payment notifications that failed processing.",
	},
	[]string{"kind"},
)

// IntakeQueueDepth tracks the current number of notifications waiting in each
// dispatcher worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var IntakeQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "intake_queue_depth",
		Help:      "Current number of payment notifications pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)
