// Package metrics holds the Prometheus collectors of the planner.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcomes of one customization batch entry.
const (
	OutcomeSaved     = "saved"
	OutcomeDeleted   = "deleted"
	OutcomeUnchanged = "unchanged"
	OutcomeFailed    = "failed"
)

var (
	CustomizationEntries = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "planner",
		Name:      "customization_entries_total",
		Help:      "Customization batch entries processed, by outcome.",
	}, []string{"outcome"})

	LifecycleTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "planner",
		Name:      "plan_lifecycle_transitions_total",
		Help:      "Plan lifecycle transitions that changed state, by transition.",
	}, []string{"transition"})

	CascadeRows = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "planner",
		Name:      "plan_cascade_rows_total",
		Help:      "Rows touched by lifecycle cleanup cascades, by kind.",
	}, []string{"kind"})

	PlanExports = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "planner",
		Name:      "plan_exports_total",
		Help:      "Plan schedules exported to object storage.",
	})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "planner",
		Name:      "http_requests_total",
		Help:      "HTTP requests handled, by route and status code.",
	}, []string{"method", "route", "status"})
)
