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

	AssignmentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assignments_total",
			Help: "Total number of successful assignments by match method",
		},
		[]string{"method"},
	)

	AssignmentsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assignments_failed_total",
			Help: "Total number of failed assignment attempts by error code",
		},
		[]string{"error_code"},
	)

	GeocodeRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geocode_requests_total",
			Help: "Total number of coordinate resolutions by source",
		},
		[]string{"source"},
	)

	TerritoriesSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "territories_skipped_total",
			Help: "Total number of representatives skipped for invalid territory definitions",
		},
	)
)
