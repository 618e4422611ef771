package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "challenge_app"

var (
	// VotesCast counts cast attempts by outcome: ok, not_found, forbidden,
	// validation_failed, error.
	VotesCast = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "voting",
			Name:      "votes_cast_total",
			Help:      "Total vote cast attempts by outcome",
		},
		[]string{"outcome"},
	)

	SideEffectFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "voting",
			Name:      "side_effect_failures_total",
			Help:      "Post-commit side effects that failed and were swallowed",
		},
		[]string{"effect"},
	)

	QueuesGenerated = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "voting",
			Name:      "queues_generated_total",
			Help:      "Vote queues generated",
		},
	)

	SchedulerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "transitions_total",
			Help:      "Challenge phase transitions applied",
		},
		[]string{"transition"},
	)

	SchedulerTicksSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "ticks_skipped_total",
			Help:      "Ticks skipped because another instance held the lock",
		},
		[]string{"transition"},
	)
)
