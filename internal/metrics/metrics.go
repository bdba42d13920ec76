// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package metrics provides Prometheus metrics for studies and evaluations.
// Labels are bounded: kinds, outcomes and criteria only, never parameters.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Case outcomes.
const (
	OutcomeAcceptable = "acceptable"
	OutcomeRejected   = "rejected"
	OutcomeFailed     = "failed"
)

var (
	// CasesTotal counts processed study cases by kind and outcome.
	CasesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "eosgen_study_cases_total",
		Help: "Total number of processed study cases, by kind and outcome.",
	}, []string{"kind", "outcome"})

	// PointsTotal counts table rows written.
	PointsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "eosgen_table_points_total",
		Help: "Total number of table rows written, by kind and point label.",
	}, []string{"kind", "label"})

	// CriterionFailuresTotal counts failed acceptability criteria.
	CriterionFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "eosgen_criterion_failures_total",
		Help: "Total number of failed acceptability criteria, by kind and criterion.",
	}, []string{"kind", "criterion"})

	// EvaluationsTotal counts ad-hoc evaluations by cache result.
	EvaluationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "eosgen_evaluations_total",
		Help: "Total number of ad-hoc evaluations, by kind and cache result (hit/miss).",
	}, []string{"kind", "cache"})

	// StudyDuration observes wall time of completed studies.
	StudyDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "eosgen_study_duration_seconds",
		Help:    "Study wall time in seconds, by final status.",
		Buckets: prometheus.ExponentialBuckets(0.01, 4, 10),
	}, []string{"status"})

	// StudiesRunning is 1 while a study holds the runner.
	StudiesRunning = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "eosgen_studies_running",
		Help: "Number of studies currently running.",
	})
)

// RecordCase increments the case counter.
func RecordCase(kind, outcome string) {
	CasesTotal.WithLabelValues(kind, outcome).Inc()
}

// RecordPoints adds the labelled row counts of one table.
func RecordPoints(kind string, acceptable, rejected int) {
	PointsTotal.WithLabelValues(kind, "1").Add(float64(acceptable))
	PointsTotal.WithLabelValues(kind, "0").Add(float64(rejected))
}

// RecordCriterionFailure increments the failure counter of a criterion.
func RecordCriterionFailure(kind, criterion string) {
	CriterionFailuresTotal.WithLabelValues(kind, criterion).Inc()
}

// RecordEvaluation increments the evaluation counter.
func RecordEvaluation(kind string, cached bool) {
	result := "miss"
	if cached {
		result = "hit"
	}
	EvaluationsTotal.WithLabelValues(kind, result).Inc()
}

// ObserveStudy records the duration of a finished study.
func ObserveStudy(status string, d time.Duration) {
	StudyDuration.WithLabelValues(status).Observe(d.Seconds())
}

// GetStudiesRunning returns the current value of the running gauge.
func GetStudiesRunning() float64 {
	var m dto.Metric
	if err := StudiesRunning.Write(&m); err != nil {
		return 0
	}
	return m.GetGauge().GetValue()
}

var (
	// BreakerState is 1 for the current state of each circuit breaker.
	BreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "eosgen_circuit_breaker_state",
		Help: "Circuit breaker state (1 for the active state), by breaker and state.",
	}, []string{"breaker", "state"})

	// BreakerTripsTotal counts transitions into the open state.
	BreakerTripsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "eosgen_circuit_breaker_trips_total",
		Help: "Total number of circuit breaker trips, by breaker and reason.",
	}, []string{"breaker", "reason"})
)

var breakerStates = []string{"closed", "open", "half-open"}

// SetCircuitBreakerState marks state as the active state of breaker.
func SetCircuitBreakerState(breaker, state string) {
	for _, s := range breakerStates {
		v := 0.0
		if s == state {
			v = 1
		}
		BreakerState.WithLabelValues(breaker, s).Set(v)
	}
}

// RecordCircuitBreakerTrip counts a trip of breaker.
func RecordCircuitBreakerTrip(breaker, reason string) {
	BreakerTripsTotal.WithLabelValues(breaker, reason).Inc()
}
