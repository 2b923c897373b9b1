// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	// EligibilityOutcomes counts results by the constraint that set the
	// loan amount, or by compliance for readiness checks.
	EligibilityOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eligibility_outcomes_total",
			Help: "Eligibility results by task type and outcome",
		},
		[]string{"task_type", "outcome"},
	)

	InputValidationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eligibility_input_validation_failures_total",
			Help: "Scenarios rejected before calculation, by offending field",
		},
		[]string{"task_type", "field"},
	)

	ResultCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eligibility_result_cache_lookups_total",
			Help: "Result cache lookups by outcome (hit, miss, error)",
		},
		[]string{"task_type", "result"},
	)
)
