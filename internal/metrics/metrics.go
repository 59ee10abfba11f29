package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ReturnsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "returns_created_total",
		Help: "Total number of return requests successfully created.",
	})

	ReturnTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "returns_transitions_total",
		Help: "Total number of applied status transitions by target status.",
	},
		[]string{"status"},
	)

	PickupsScheduledTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "returns_pickups_scheduled_total",
		Help: "Total number of pickups scheduled, by mode (carrier or manual).",
	},
		[]string{"mode"},
	)

	RefundsSettledTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "returns_refunds_settled_total",
		Help: "Total number of refunds settled, by refund method.",
	},
		[]string{"method"},
	)

	OrderUpdateFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "returns_order_update_failures_total",
		Help: "Total number of settled refunds whose order record could not be updated.",
	})

	OperationErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "returns_operation_errors_total",
		Help: "Total number of errors encountered during specific operations.",
	},
		[]string{"operation", "kind"},
	)

	OutboxPublishedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "returns_outbox_published_total",
		Help: "Outbox tasks processed by the publisher, by outcome.",
	},
		[]string{"outcome"},
	)

	AuditEntriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "returns_audit_entries_total",
		Help: "Audit entries written, by path (batched, inline or direct).",
	},
		[]string{"path"},
	)
)
